// Package scorecheck is a dev harness that generates a synthetic
// application dataset, drives a running GAGE server over HTTP, and
// verifies served scores against locally recomputed ones.
package scorecheck

import (
	"time"
)

// Default harness configuration constants.
const (
	DefaultBaseURL = "http://localhost:9080"
	DefaultRows    = 10_000
	DefaultProbes  = 200
	DefaultSeed    = 42
	DefaultTimeout = 30 * time.Second
)

// Config controls one harness run.
type Config struct {
	// BaseURL of the server under test.
	BaseURL string

	// DatasetPath is where the synthetic CSV is written. It must be the
	// path the server is configured to load from.
	DatasetPath string

	// Rows is the number of synthetic records to generate.
	Rows int

	// BadRows is the number of deliberately unparseable rows mixed in, to
	// verify the server's skip accounting.
	BadRows int

	// Probes is the number of client ids to score and verify.
	Probes int

	// Seed makes generation and probe selection reproducible.
	Seed int64

	// Timeout bounds each HTTP request.
	Timeout time.Duration

	// Verbose enables per-probe logging.
	Verbose bool
}

// withDefaults fills unset fields.
func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Rows <= 0 {
		c.Rows = DefaultRows
	}
	if c.Probes <= 0 {
		c.Probes = DefaultProbes
	}
	if c.Seed == 0 {
		c.Seed = DefaultSeed
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}
