package main

import (
	"context"
	"testing"
	"time"
)

func TestUpdateSystemMetrics(t *testing.T) {
	// Exercises the MemStats plumbing; values land in the custom registry.
	updateSystemMetrics()
}

func TestSystemMetricsUpdaterStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		defer close(done)
		startSystemMetricsUpdater(ctx)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("system metrics updater did not stop after context cancellation")
	}
}
