// Package demo replays named shots through the scoring engine and, when a
// server URL is given, verifies the server returns the same results.
package demo

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/okian/icexg/internal/domain/scoring"
	"github.com/okian/icexg/internal/domain/shot"
	"github.com/okian/icexg/pkg/logger"
)

// Default run configuration constants.
const (
	DefaultBatchSize = 500
	DefaultTimeout   = 10 * time.Second
	DefaultTolerance = 1e-9
	maxTableRows     = 20
)

// Run scores the configured scenarios locally, prints them to out and, if
// cfg.BaseURL is set, checks the server agrees.
func Run(ctx context.Context, cfg *Config, out io.Writer) error {
	log := logger.Get().Named("demo")

	scenarios := DefaultScenarios()
	if cfg.ScenarioFile != "" {
		loaded, err := LoadScenarios(cfg.ScenarioFile)
		if err != nil {
			return err
		}
		scenarios = loaded
	}
	if cfg.Random > 0 {
		scenarios = append(scenarios, RandomScenarios(cfg.Random, cfg.Seed)...)
	}

	log.Info(ctx, "scoring scenarios locally", logger.Int("count", len(scenarios)))
	local := ScoreLocal(scoring.NewEngine(), scenarios)
	if err := PrintTable(out, scenarios, local, cfg.Verbose); err != nil {
		return err
	}

	if cfg.BaseURL == "" {
		return nil
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	tolerance := cfg.Tolerance
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}

	client := NewHTTPClient(cfg.BaseURL, timeout, cfg.RPS)
	if err := client.Health(ctx); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	start := time.Now()
	remote, err := client.ScoreBatch(ctx, scenarios, batchSize)
	if err != nil {
		return fmt.Errorf("remote scoring failed: %w", err)
	}
	if err := Verify(scenarios, local, remote, tolerance); err != nil {
		return err
	}

	log.Info(ctx, "server results match local engine",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("shots", len(scenarios)),
		logger.String("duration", time.Since(start).String()),
	)
	_, err = fmt.Fprintf(out, "\nverified %d shots against %s\n", len(scenarios), cfg.BaseURL)
	return err
}

// ScoreLocal scores every scenario with scorer, preserving order.
func ScoreLocal(scorer scoring.Scorer, scenarios []Scenario) []scoring.Assessment {
	evs := make([]shot.Event, len(scenarios))
	for i, sc := range scenarios {
		evs[i] = sc.Event()
	}
	return scorer.ScoreBatch(evs)
}

// PrintTable writes one row per scenario. Unless verbose, only the first
// rows are printed.
func PrintTable(out io.Writer, scenarios []Scenario, results []scoring.Assessment, verbose bool) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SHOT\tLOCATION\tTYPE\txG\tQUALITY\tDANGER\tFACTORS")

	rows := len(scenarios)
	if !verbose {
		rows = min(rows, maxTableRows)
	}
	for i := 0; i < rows; i++ {
		sc, a := scenarios[i], results[i]
		fmt.Fprintf(tw, "%s\t(%.1f, %.1f)\t%s\t%.3f\t%s\t%s\t%s\n",
			sc.Name, sc.X, sc.Y, sc.Event().Type, a.ExpectedGoals, a.Quality, a.Danger, strings.Join(a.Factors, ","))
	}
	if rows < len(scenarios) {
		fmt.Fprintf(tw, "... %d more\n", len(scenarios)-rows)
	}
	return tw.Flush()
}
