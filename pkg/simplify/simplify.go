package simplify

import (
	"context"
	"math"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	// Base of the lossy threshold schedule.
	thresholdBase = 1e-9
	// Threshold used while only lossless collapses are allowed.
	losslessThreshold = 2.220446049250313e-16
	// Passes between full refreshes in the lossy phase.
	refreshInterval = 5
)

// Options controls a simplification run.
type Options struct {
	// TargetFraction is the fraction of triangles to keep, in (0, 1]. The
	// target is counted after triangles repeating a vertex are dropped.
	TargetFraction float64
	// TargetCount overrides TargetFraction when positive.
	TargetCount int
	// Aggressiveness is the exponent of the threshold schedule. Higher values
	// converge in fewer passes at lower quality.
	Aggressiveness float64
	// FinishLossless continues with zero-cost collapses once the target is met.
	FinishLossless bool
	// Logger receives per-pass progress at debug level and a summary at info
	// level. Nil disables logging.
	Logger *zap.Logger
}

// DefaultOptions returns the standard settings: keep half the triangles,
// aggressiveness 7, no lossless finish.
func DefaultOptions() Options {
	return Options{
		TargetFraction: 0.5,
		Aggressiveness: 7,
	}
}

// Stats describes what a run did.
type Stats struct {
	InputVertices   int
	InputTriangles  int
	OutputVertices  int
	OutputTriangles int
	// Degenerate counts input triangles dropped for repeating a vertex.
	Degenerate int
	Iterations int
}

// Result holds the simplified mesh as flat buffers.
type Result struct {
	Vertices  []float32
	Triangles []uint32
	Stats     Stats
}

// Simplify reduces the mesh described by vertices (xyz triples) and indices
// (triangle corner triples). The input buffers are not modified.
func Simplify(vertices []float32, indices []uint32, opts Options) (*Result, error) {
	return SimplifyContext(context.Background(), vertices, indices, opts)
}

// SimplifyContext is Simplify with cancellation. Cancellation abandons the
// whole run; no partial result is returned.
func SimplifyContext(ctx context.Context, vertices []float32, indices []uint32, opts Options) (*Result, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	m, err := newMesh(vertices, indices)
	if err != nil {
		return nil, err
	}

	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	s := &simplifier{
		mesh:   m,
		opts:   opts,
		log:    log,
		target: targetCount(len(m.triangles), opts),
	}
	if err := s.run(ctx); err != nil {
		return nil, err
	}

	vs, ts := m.compact()
	res := &Result{
		Vertices:  vs,
		Triangles: ts,
		Stats: Stats{
			InputVertices:   len(vertices) / 3,
			InputTriangles:  len(indices) / 3,
			OutputVertices:  len(vs) / 3,
			OutputTriangles: len(ts) / 3,
			Degenerate:      m.degenerate,
			Iterations:      s.iterations,
		},
	}
	if res.Stats.InputTriangles > 0 {
		log.Info("simplified mesh",
			zap.Int("vertices", res.Stats.OutputVertices),
			zap.Int("triangles", res.Stats.OutputTriangles),
			zap.Int("percent", int(math.Round(100*float64(res.Stats.OutputTriangles)/float64(res.Stats.InputTriangles)))),
		)
	}
	return res, nil
}

func (o Options) validate() error {
	if o.TargetCount < 0 {
		return errors.Wrapf(ErrInvalidInput, "target count %d is negative", o.TargetCount)
	}
	if o.TargetCount == 0 && !(o.TargetFraction > 0 && o.TargetFraction <= 1) {
		return errors.Wrapf(ErrInvalidInput, "target fraction %v is outside (0, 1]", o.TargetFraction)
	}
	if math.IsNaN(o.Aggressiveness) || math.IsInf(o.Aggressiveness, 0) {
		return errors.Wrapf(ErrInvalidInput, "aggressiveness %v is not finite", o.Aggressiveness)
	}
	return nil
}

func targetCount(triangles int, opts Options) int {
	if opts.TargetCount > 0 {
		return opts.TargetCount
	}
	return int(math.Ceil(float64(triangles) * opts.TargetFraction))
}

// phase is the state of the decimation driver.
type phase int

const (
	// phaseLossy accepts collapses under a growing error threshold until the
	// target count is reached.
	phaseLossy phase = iota
	// phaseLossless accepts only collapses of negligible cost.
	phaseLossless
)

func (p phase) String() string {
	switch p {
	case phaseLossy:
		return "lossy"
	case phaseLossless:
		return "lossless"
	default:
		return "unknown"
	}
}

type simplifier struct {
	*mesh
	opts   Options
	log    *zap.Logger
	target int

	total      int // triangle count before simplification
	removed    int // triangles deleted so far
	iterations int
}

func (s *simplifier) live() int {
	return s.total - s.removed
}

// run drives passes over the triangles until the target is reached, a pass
// makes no progress, or the pass budget is spent.
func (s *simplifier) run(ctx context.Context) error {
	s.total = len(s.triangles)
	if s.total == 0 {
		return nil
	}

	state := phaseLossy
	maxIter := 100
	if s.opts.Aggressiveness <= 5 {
		maxIter = 500
	}
	if s.target >= s.total {
		state = phaseLossless
		maxIter = 1000
	}
	threshold := losslessThreshold
	passStart := 0

	for iteration := 0; iteration < maxIter; iteration++ {
		if err := ctx.Err(); err != nil {
			return errors.Wrap(err, "simplification abandoned")
		}

		if state == phaseLossy && s.live() <= s.target {
			if !s.opts.FinishLossless {
				break
			}
			state = phaseLossless
			threshold = losslessThreshold
			maxIter = 1000
		}

		switch state {
		case phaseLossy:
			if iteration%refreshInterval == 0 {
				s.refresh(iteration)
			}
			threshold = thresholdBase * math.Pow(float64(iteration+3), s.opts.Aggressiveness)
		case phaseLossless:
			if passStart == s.live() {
				return nil
			}
			s.refresh(iteration)
		}
		passStart = s.live()
		s.iterations = iteration + 1

		if iteration%refreshInterval == 0 {
			s.log.Debug("simplify pass",
				zap.Int("iteration", iteration),
				zap.Stringer("phase", state),
				zap.Int("triangles", s.live()),
				zap.Float64("threshold", threshold),
			)
		}

		s.pass(state, threshold)
	}
	return nil
}

// pass visits triangles in index order and collapses the first acceptable
// edge of each one below threshold.
func (s *simplifier) pass(state phase, threshold float64) {
	for i := range s.triangles {
		s.triangles[i].dirty = false
	}

	for i := range s.triangles {
		t := &s.triangles[i]
		if t.err[3] > threshold || t.deleted || t.dirty {
			continue
		}
		for j := 0; j < 3; j++ {
			if t.err[j] >= threshold {
				continue
			}
			i0, i1 := t.v[j], t.v[(j+1)%3]
			if s.vertices[i0].border != s.vertices[i1].border {
				continue
			}
			_, p := s.contraction(i0, i1)
			removed, ok := s.collapse(i0, i1, p)
			if !ok {
				continue
			}
			s.removed += removed
			break
		}
		if state == phaseLossy && s.live() <= s.target {
			return
		}
	}
}
