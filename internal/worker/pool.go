package worker

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/neurolabusc/simplifyjs/pkg/meshio"
	"github.com/neurolabusc/simplifyjs/pkg/simplify"
)

// Job is one mesh file to simplify into Output.
type Job struct {
	Input  string
	Output string
}

// JobResult reports the outcome of one Job.
type JobResult struct {
	Job   Job
	Stats simplify.Stats
	Took  time.Duration
	Err   error
}

// Pool simplifies mesh files with at most Workers running at once.
type Pool struct {
	Workers int
	Options simplify.Options
	Handler *Handler
	Logger  *zap.Logger
}

// NewPool returns a pool applying opts to every job.
func NewPool(workers int, opts simplify.Options, log *zap.Logger) *Pool {
	if workers < 1 {
		workers = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Pool{
		Workers: workers,
		Options: opts,
		Handler: NewHandler(log.Named("handler")),
		Logger:  log,
	}
}

// Run processes jobs and returns one result per job, in job order. A failed
// job does not stop the others; the returned error combines every job error.
// Once ctx is done no new job starts.
func (p *Pool) Run(ctx context.Context, jobs []Job) ([]JobResult, error) {
	results := make([]JobResult, len(jobs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.Workers)
	for i, job := range jobs {
		results[i].Job = job
		if ctx.Err() != nil {
			results[i].Err = errors.Wrap(ctx.Err(), "job not started")
			continue
		}
		g.Go(func() error {
			results[i] = p.runJob(ctx, job)
			return nil
		})
	}
	// Jobs report failures through results, never through the group.
	_ = g.Wait()

	var err error
	for _, r := range results {
		if r.Err != nil {
			err = multierr.Append(err, errors.Wrap(r.Err, r.Job.Input))
		}
	}
	return results, err
}

func (p *Pool) runJob(ctx context.Context, job Job) JobResult {
	res := JobResult{Job: job}
	log := p.Logger.With(zap.String("input", job.Input))

	m, err := meshio.Load(job.Input)
	if err != nil {
		res.Err = err
		log.Warn("load failed", zap.Error(err))
		return res
	}

	resp, err := p.Handler.Handle(ctx, Request{
		Vertices:       m.Vertices,
		Indices:        m.Indices,
		Fraction:       p.Options.TargetFraction,
		TargetCount:    p.Options.TargetCount,
		Aggressiveness: p.Options.Aggressiveness,
		FinishLossless: p.Options.FinishLossless,
	})
	if err != nil {
		res.Err = err
		log.Warn("simplify failed", zap.Error(err))
		return res
	}
	res.Stats = resp.Stats
	res.Took = resp.Took

	out := &meshio.Mesh{Vertices: resp.Vertices, Indices: resp.Triangles}
	if err := meshio.Save(job.Output, out); err != nil {
		res.Err = err
		log.Warn("save failed", zap.Error(err))
		return res
	}

	log.Info("simplified",
		zap.String("output", job.Output),
		zap.Int("triangles_in", resp.Stats.InputTriangles),
		zap.Int("triangles_out", resp.Stats.OutputTriangles),
		zap.Duration("took", resp.Took),
	)
	return res
}

// OutputPath places input's base name in dir, replacing its extension with
// format when format is non-empty.
func OutputPath(dir, input, format string) string {
	base := filepath.Base(input)
	if format != "" {
		base = strings.TrimSuffix(base, filepath.Ext(base)) + "." + format
	}
	return filepath.Join(dir, base)
}
