// meshsimplify is a CLI utility for reducing the triangle count of meshes.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/neurolabusc/simplifyjs/internal/config"
	"github.com/neurolabusc/simplifyjs/internal/logger"
	"github.com/neurolabusc/simplifyjs/internal/worker"
	"github.com/neurolabusc/simplifyjs/pkg/meshio"
)

func main() {
	config.ParseFlags()
	args := config.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	logger.Sugar.Debugf("Config: %+v", cfg)

	command, args := args[0], args[1:]
	switch command {
	case "simplify", "s":
		err = cmdSimplify(cfg, args)
	case "info":
		err = cmdInfo(args)
	case "batch", "b":
		err = cmdBatch(cfg, args)
	case "config":
		err = cmdConfig(cfg, args)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		logger.Fatal("command failed", zap.String("command", command), zap.Error(err))
	}
}

func printUsage() {
	fmt.Println(`meshsimplify - quadric edge-collapse mesh decimation

Usage:
  meshsimplify <command> [flags] [args]

Commands:
  simplify <in> <out>            Simplify one mesh (.obj or .stl)
  info <file>                    Show mesh statistics
  batch <outdir> <files...>      Simplify many meshes concurrently
  config [path]                  Write the effective settings as YAML

Examples:
  meshsimplify simplify bunny.obj bunny_half.obj
  meshsimplify simplify -f 0.1 -a 5 scan.stl scan_small.stl
  meshsimplify batch -j 8 --format obj out/ meshes/*.stl
  meshsimplify config -a 5 --lossless

Flags:`)
	config.Usage()
}

func cmdSimplify(cfg *config.Config, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: meshsimplify simplify <in> <out>")
	}
	ctx, cancel := batchContext(cfg)
	defer cancel()

	pool := worker.NewPool(1, cfg.SimplifyOptions(), logger.Named("simplify"))
	results, err := pool.Run(ctx, []worker.Job{{Input: args[0], Output: args[1]}})
	if err != nil {
		return err
	}

	r := results[0]
	fmt.Printf("Input:   %d vertices, %d triangles\n", r.Stats.InputVertices, r.Stats.InputTriangles)
	fmt.Printf("Output:  %d vertices, %d triangles (%.1f%%)\n",
		r.Stats.OutputVertices, r.Stats.OutputTriangles, percent(r.Stats.OutputTriangles, r.Stats.InputTriangles))
	fmt.Printf("Passes:  %d\n", r.Stats.Iterations)
	fmt.Printf("Time:    %v\n", r.Took)
	return nil
}

func cmdInfo(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: meshsimplify info <file>")
	}
	m, err := meshio.Load(args[0])
	if err != nil {
		return err
	}

	border, nonManifold := m.EdgeStats()
	fmt.Printf("File:         %s\n", args[0])
	fmt.Printf("Vertices:     %d\n", m.VertexCount())
	fmt.Printf("Triangles:    %d\n", m.TriangleCount())
	fmt.Printf("Border edges: %d\n", border)
	fmt.Printf("Non-manifold: %d\n", nonManifold)
	if b := m.Bounds(); !b.Empty() {
		fmt.Printf("Bounds:       (%.4g, %.4g, %.4g) - (%.4g, %.4g, %.4g)\n",
			b.Min[0], b.Min[1], b.Min[2], b.Max[0], b.Max[1], b.Max[2])
		c := b.Center()
		fmt.Printf("Center:       (%.4g, %.4g, %.4g)\n", c[0], c[1], c[2])
		fmt.Printf("Diagonal:     %.4g\n", b.Diagonal())
	}
	return nil
}

func cmdBatch(cfg *config.Config, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: meshsimplify batch <outdir> <files...>")
	}
	outDir, inputs := args[0], args[1:]

	jobs := make([]worker.Job, 0, len(inputs))
	for _, in := range inputs {
		jobs = append(jobs, worker.Job{Input: in, Output: worker.OutputPath(outDir, in, cfg.Output.Format)})
	}

	ctx, cancel := batchContext(cfg)
	defer cancel()

	pool := worker.NewPool(cfg.Batch.Workers, cfg.SimplifyOptions(), logger.Named("batch"))
	results, err := pool.Run(ctx, jobs)

	ok := 0
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(os.Stderr, "FAIL %s: %v\n", r.Job.Input, r.Err)
			continue
		}
		ok++
		fmt.Printf("%s -> %s: %d -> %d triangles in %v\n",
			r.Job.Input, r.Job.Output, r.Stats.InputTriangles, r.Stats.OutputTriangles, r.Took)
	}
	fmt.Fprintf(os.Stderr, "\n(%d of %d meshes simplified)\n", ok, len(jobs))
	return err
}

// cmdConfig saves the merged defaults, config file and flags so later runs
// pick them up without repeating the flags.
func cmdConfig(cfg *config.Config, args []string) error {
	path := filepath.Join(config.ConfigDir(), "config.yaml")
	if len(args) > 0 {
		path = args[0]
	}
	if err := cfg.SaveTo(path); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}

// batchContext is cancelled by an interrupt or the configured timeout.
// Cancellation abandons in-flight meshes; nothing partial is written.
func batchContext(cfg *config.Config) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	if cfg.Batch.Timeout <= 0 {
		return ctx, stop
	}
	ctx, cancel := context.WithTimeout(ctx, cfg.Batch.Timeout)
	return ctx, func() {
		cancel()
		stop()
	}
}

func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return 100 * float64(part) / float64(whole)
}
