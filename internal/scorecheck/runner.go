package scorecheck

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/okian/gage/pkg/logger"
)

// Report summarizes one harness run.
type Report struct {
	RunID        string
	Generated    int
	ServerLoaded int
	Skipped      int
	Probed       int
	Mismatches   []Mismatch
	Took         time.Duration
}

// OK reports whether the run found no disagreements.
func (r Report) OK() bool {
	return len(r.Mismatches) == 0 && r.ServerLoaded == r.Generated
}

// Run executes one full harness cycle: generate a synthetic dataset at
// the server's source path, trigger a reload, probe a sample of client
// ids, and verify every served score against a local recomputation.
func Run(ctx context.Context, cfg Config) (Report, error) {
	cfg = cfg.withDefaults()
	if cfg.DatasetPath == "" {
		return Report{}, fmt.Errorf("dataset path is required")
	}
	log := logger.Get().Named("scorecheck")
	start := time.Now()

	runID, rows, err := Generate(cfg)
	if err != nil {
		return Report{}, err
	}
	log.Info(ctx, "dataset generated",
		logger.String("runID", runID),
		logger.String("path", cfg.DatasetPath),
		logger.Int("rows", len(rows)),
		logger.Int("badRows", cfg.BadRows),
	)

	client := NewClient(cfg)
	if err := client.Health(ctx); err != nil {
		return Report{}, err
	}

	ack, err := client.Reload(ctx)
	if err != nil {
		return Report{}, err
	}
	log.Info(ctx, "server reloaded",
		logger.Int("records", ack.RecordCount),
		logger.Int("skipped", ack.SkippedCount),
	)

	verifier, err := NewVerifier(ctx, cfg.DatasetPath)
	if err != nil {
		return Report{}, err
	}

	report := Report{
		RunID:        runID,
		Generated:    len(rows),
		ServerLoaded: ack.RecordCount,
		Skipped:      ack.SkippedCount,
		Took:         0,
	}

	probes := cfg.Probes
	if probes > len(rows) {
		probes = len(rows)
	}
	rng := rand.New(rand.NewSource(cfg.Seed))
	for _, idx := range rng.Perm(len(rows))[:probes] {
		id := rows[idx].ID
		served, err := client.Score(ctx, id)
		if err != nil {
			return report, err
		}
		mismatch, err := verifier.Check(ctx, served)
		if err != nil {
			return report, err
		}
		report.Probed++
		if mismatch != nil {
			report.Mismatches = append(report.Mismatches, *mismatch)
			log.Warn(ctx, "score mismatch", logger.String("detail", mismatch.String()))
		} else if cfg.Verbose {
			log.Debug(ctx, "score verified",
				logger.Int64("clientID", id),
				logger.Float64("score", served.Score),
			)
		}
	}

	report.Took = time.Since(start)
	log.Info(ctx, "score check finished",
		logger.Int("probed", report.Probed),
		logger.Int("mismatches", len(report.Mismatches)),
		logger.Duration("took", report.Took),
		logger.Bool("ok", report.OK()),
	)
	return report, nil
}
