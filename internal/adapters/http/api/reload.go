// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/okian/gage/internal/adapters/dataset"
)

// defaultReloadCooldown spaces out reload requests when no cooldown is
// configured. Loads are expensive; hammering the endpoint must not be.
const defaultReloadCooldown = 10 * time.Second

// ReloadDependencies defines the interface for dataset reloads.
type ReloadDependencies interface {
	Reload(ctx context.Context) (dataset.LoadStats, error)
}

// ReloadHandler handles dataset reload requests.
type ReloadHandler struct {
	deps    ReloadDependencies
	limiter *rate.Limiter
}

// NewReloadHandler creates a new reload handler. One reload per cooldown
// period is admitted, with a burst of one.
func NewReloadHandler(deps ReloadDependencies, cooldown time.Duration) *ReloadHandler {
	if cooldown <= 0 {
		cooldown = defaultReloadCooldown
	}
	return &ReloadHandler{
		deps:    deps,
		limiter: rate.NewLimiter(rate.Every(cooldown), 1),
	}
}

// reloadAck mirrors the load result reported to the reload caller.
type reloadAck struct {
	Status       string `json:"status"`
	RecordCount  int    `json:"record_count"`
	SkippedCount int    `json:"skipped_count"`
}

// HandlePostReload handles POST /api/reload requests. A reload arriving
// while another is in flight is rejected with 409; the in-flight load's
// outcome is reported to its own caller only.
func (h *ReloadHandler) HandlePostReload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	if !h.limiter.Allow() {
		writeError(w, http.StatusTooManyRequests, "rate_limited", ErrRateLimited)
		return
	}

	stats, err := h.deps.Reload(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reloadAck{
		Status:       "reloaded",
		RecordCount:  stats.RecordCount,
		SkippedCount: stats.SkippedCount,
	})
}
