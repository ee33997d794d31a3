package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/icexg/internal/demo"
	"github.com/okian/icexg/pkg/logger"
)

func main() {
	var (
		baseURL   = flag.String("url", "", "Base URL of a running server to verify against (empty scores locally only)")
		file      = flag.String("scenarios", "", "YAML scenario file (default: built-in reference shots)")
		random    = flag.Int("random", 0, "Number of random shots to append")
		seed      = flag.Uint64("seed", 1, "Seed for random shots")
		batchSize = flag.Int("batch", demo.DefaultBatchSize, "Shots per batch request")
		rps       = flag.Float64("rps", 0, "Maximum batch requests per second (0 is unlimited)")
		timeout   = flag.Duration("timeout", demo.DefaultTimeout, "HTTP request timeout")
		verbose   = flag.Bool("verbose", false, "Print every shot and debug logs")
	)
	flag.Parse()

	if err := logger.Init(logger.WithWriter(os.Stderr)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	if *verbose {
		_ = logger.SetLevelString("debug")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := &demo.Config{
		BaseURL:      *baseURL,
		ScenarioFile: *file,
		Random:       *random,
		Seed:         *seed,
		BatchSize:    *batchSize,
		RPS:          *rps,
		Timeout:      *timeout,
		Verbose:      *verbose,
	}
	if err := demo.Run(ctx, cfg, os.Stdout); err != nil {
		logger.Get().Error(ctx, "demo failed", logger.Error(err))
		stop()
		os.Exit(1)
	}
}
