package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/okian/gage/internal/scorecheck"
	"github.com/okian/gage/pkg/logger"
)

// runTimeout bounds a whole harness run.
const runTimeout = 10 * time.Minute

func main() {
	var (
		baseURL = flag.String("url", scorecheck.DefaultBaseURL, "Base URL of the service")
		dataset = flag.String("dataset", "", "Path the server loads its dataset from (required)")
		rows    = flag.Int("rows", scorecheck.DefaultRows, "Number of synthetic rows to generate")
		badRows = flag.Int("bad", 0, "Number of unparseable rows to mix in")
		probes  = flag.Int("probes", scorecheck.DefaultProbes, "Number of client ids to score and verify")
		seed    = flag.Int64("seed", scorecheck.DefaultSeed, "Seed for generation and probe selection")
		timeout = flag.Duration("timeout", scorecheck.DefaultTimeout, "HTTP request timeout")
		verbose = flag.Bool("verbose", false, "Log each verified probe")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	if *verbose {
		_ = logger.SetLevelString("debug")
	}
	if *dataset == "" {
		os.Stderr.WriteString("-dataset is required: it must match the server's dataset_path\n")
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	report, err := scorecheck.Run(ctx, scorecheck.Config{
		BaseURL:     *baseURL,
		DatasetPath: *dataset,
		Rows:        *rows,
		BadRows:     *badRows,
		Probes:      *probes,
		Seed:        *seed,
		Timeout:     *timeout,
		Verbose:     *verbose,
	})
	if err != nil {
		os.Stderr.WriteString("score check failed: " + err.Error() + "\n")
		os.Exit(1)
	}
	if !report.OK() {
		os.Exit(1)
	}
}
