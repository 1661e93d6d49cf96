// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/okian/gage/internal/adapters/archive"
)

// defaultHistoryLimit bounds the listing when no limit is given.
const defaultHistoryLimit = 50

// HistoryDependencies defines the interface for archived analysis listings.
type HistoryDependencies interface {
	History(ctx context.Context, clientID int64, limit int) ([]archive.Entry, error)
}

// HistoryHandler handles analysis history requests.
type HistoryHandler struct {
	deps HistoryDependencies
}

// NewHistoryHandler creates a new history handler.
func NewHistoryHandler(deps HistoryDependencies) *HistoryHandler {
	return &HistoryHandler{deps: deps}
}

type historyResponse struct {
	Analyses []archive.Entry `json:"analyses"`
}

// HandleGetHistory handles GET /api/history requests. Optional query
// parameters: client_id to restrict to one client, limit to bound the
// listing.
func (h *HistoryHandler) HandleGetHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	q := r.URL.Query()

	var clientID int64
	if raw := q.Get("client_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
			return
		}
		clientID = id
	}

	limit := defaultHistoryLimit
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
			return
		}
		limit = n
	}

	entries, err := h.deps.History(r.Context(), clientID, limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if entries == nil {
		entries = []archive.Entry{}
	}
	writeJSON(w, http.StatusOK, historyResponse{Analyses: entries})
}
