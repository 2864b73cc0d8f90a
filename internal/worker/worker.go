// Package worker runs simplification requests, one isolated run per request,
// and fans batches of mesh files out over a bounded pool.
package worker

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/neurolabusc/simplifyjs/pkg/simplify"
)

// Request carries one mesh and its decimation parameters.
type Request struct {
	Vertices       []float32
	Indices        []uint32
	Fraction       float64
	TargetCount    int
	Aggressiveness float64
	FinishLossless bool
}

// Response carries the simplified mesh and how long the run took.
type Response struct {
	Vertices  []float32
	Triangles []uint32
	Stats     simplify.Stats
	Took      time.Duration
}

// Handler turns requests into responses. It holds no state between calls,
// so one Handler may serve any number of goroutines.
type Handler struct {
	Logger *zap.Logger
}

// NewHandler returns a Handler logging to log. A nil log disables logging.
func NewHandler(log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{Logger: log}
}

// Handle runs one simplification. A context that is already done, or that
// ends mid-run, abandons the request without a partial result.
func (h *Handler) Handle(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "request not started")
	}

	opts := simplify.Options{
		TargetFraction: req.Fraction,
		TargetCount:    req.TargetCount,
		Aggressiveness: req.Aggressiveness,
		FinishLossless: req.FinishLossless,
		Logger:         h.Logger,
	}

	start := time.Now()
	res, err := simplify.SimplifyContext(ctx, req.Vertices, req.Indices, opts)
	if err != nil {
		return nil, err
	}
	took := time.Since(start)

	h.Logger.Debug("request handled",
		zap.Int("triangles_in", res.Stats.InputTriangles),
		zap.Int("triangles_out", res.Stats.OutputTriangles),
		zap.Duration("took", took),
	)
	return &Response{
		Vertices:  res.Vertices,
		Triangles: res.Triangles,
		Stats:     res.Stats,
		Took:      took,
	}, nil
}
