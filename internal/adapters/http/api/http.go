// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/okian/gage/internal/adapters/archive"
	"github.com/okian/gage/internal/adapters/dataset"
	"github.com/okian/gage/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	GetRecord(ctx context.Context, id int64) (model.Record, error)
	ComputeScore(ctx context.Context, id int64) (model.ScoreResult, error)
	Summary(ctx context.Context, f dataset.Filter) (dataset.SummaryResult, error)
	SeriesSample(ctx context.Context, f dataset.Filter, limit int) (dataset.Series, error)
	Reload(ctx context.Context) (dataset.LoadStats, error)
	ArchiveAnalysis(ctx context.Context, res model.ScoreResult) bool
	History(ctx context.Context, clientID int64, limit int) ([]archive.Entry, error)
	DatasetState() dataset.State
	RecordCount(ctx context.Context) int
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	recordHandler  *RecordHandler
	scoreHandler   *ScoreHandler
	summaryHandler *SummaryHandler
	datavizHandler *DatavizHandler
	reloadHandler  *ReloadHandler
	historyHandler *HistoryHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, reloadCooldown time.Duration) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(deps),
		statsHandler:   NewStatsHandler(statsProvider),
		recordHandler:  NewRecordHandler(deps),
		scoreHandler:   NewScoreHandler(deps),
		summaryHandler: NewSummaryHandler(deps),
		datavizHandler: NewDatavizHandler(deps),
		reloadHandler:  NewReloadHandler(deps, reloadCooldown),
		historyHandler: NewHistoryHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/api/record/", MetricsMiddleware(s.recordHandler.HandleGetRecord, "record"))
	mux.HandleFunc("/api/score/", MetricsMiddleware(s.scoreHandler.HandleGetScore, "score"))
	mux.HandleFunc("/api/summary", MetricsMiddleware(s.summaryHandler.HandleGetSummary, "summary"))
	mux.HandleFunc("/api/dataviz", MetricsMiddleware(s.datavizHandler.HandleGetDataviz, "dataviz"))
	mux.HandleFunc("/api/reload", MetricsMiddleware(s.reloadHandler.HandlePostReload, "reload"))
	mux.HandleFunc("/api/history", MetricsMiddleware(s.historyHandler.HandleGetHistory, "history"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeDomainError translates typed errors from the core into HTTP
// responses. Anything unrecognized is a 500.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, dataset.ErrRecordNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, dataset.ErrSourceNotFound):
		writeError(w, http.StatusNotFound, "source_not_found", err)
	case errors.Is(err, dataset.ErrReloadInProgress):
		writeError(w, http.StatusConflict, "reload_in_progress", err)
	case errors.Is(err, dataset.ErrMalformedSource):
		writeError(w, http.StatusUnprocessableEntity, "malformed_source", err)
	case errors.Is(err, dataset.ErrNotLoaded):
		writeError(w, http.StatusServiceUnavailable, "dataset_unavailable", err)
	case errors.Is(err, archive.ErrDisabled):
		writeError(w, http.StatusNotFound, "archive_disabled", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}

// clientIDFromPath extracts the trailing integer id from paths like
// /api/score/{id}.
func clientIDFromPath(path, prefix string) (int64, error) {
	rest := path[len(prefix):]
	if rest == "" {
		return 0, ErrBadRequest
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		return 0, ErrBadRequest
	}
	return id, nil
}

// filterFromQuery builds a dataset filter from the shared query
// parameters of /api/summary and /api/dataviz.
func filterFromQuery(r *http.Request) (dataset.Filter, error) {
	q := r.URL.Query()
	f := dataset.Filter{
		FamilyStatus: q.Get("family_status"),
		IncomeType:   q.Get("income_type"),
		Education:    q.Get("education"),
		HousingType:  q.Get("housing"),
	}

	bounds := []struct {
		key  string
		dest **float64
	}{
		{"min_income", &f.MinIncome},
		{"max_income", &f.MaxIncome},
		{"min_credit", &f.MinCredit},
		{"max_credit", &f.MaxCredit},
	}
	for _, b := range bounds {
		raw := q.Get(b.key)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return dataset.Filter{}, ErrBadRequest
		}
		*b.dest = &v
	}
	return f, nil
}
