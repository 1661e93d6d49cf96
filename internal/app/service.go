// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/okian/gage/internal/adapters/archive"
	"github.com/okian/gage/internal/adapters/dataset"
	"github.com/okian/gage/internal/domain/model"
	"github.com/okian/gage/internal/domain/scoring"
	"github.com/okian/gage/pkg/logger"
	"github.com/okian/gage/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultMaxSeriesPoints  = 5000
	defaultArchiveQueueSize = 1024
	defaultReloadDebounce   = 2 * time.Second
)

// Service composes the dataset manager, the scoring engine and the
// optional analysis archive behind the interfaces the HTTP API consumes.
type Service struct {
	mu sync.RWMutex

	// Core components
	manager *dataset.Manager
	archive *archive.Archive
	watcher *dataset.Watcher

	// Configuration
	datasetPath      string
	watchDataset     bool
	reloadDebounce   time.Duration
	maxSeriesPoints  int
	archivePath      string
	archiveQueueSize int
	loadFunc         dataset.LoadFunc

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithDatasetPath sets the CSV source the dataset manager loads from.
func WithDatasetPath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.datasetPath = path
		}
	}
}

// WithWatchDataset enables reloading when the dataset file changes.
func WithWatchDataset(watch bool) Option {
	return func(s *Service) {
		s.watchDataset = watch
	}
}

// WithReloadDebounce sets the watcher's quiet period after a file change.
func WithReloadDebounce(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.reloadDebounce = d
		}
	}
}

// WithMaxSeriesPoints caps the dataviz scatter sample size.
func WithMaxSeriesPoints(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxSeriesPoints = n
		}
	}
}

// WithArchivePath enables the SQLite analysis archive at the given path.
func WithArchivePath(path string) Option {
	return func(s *Service) {
		s.archivePath = path
	}
}

// WithArchiveQueueSize bounds the archive write queue.
func WithArchiveQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.archiveQueueSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}

// WithLoadFunc substitutes the dataset loader; intended for tests.
func WithLoadFunc(load dataset.LoadFunc) Option {
	return func(s *Service) {
		if load != nil {
			s.loadFunc = load
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		datasetPath:      "application_train.csv",
		reloadDebounce:   defaultReloadDebounce,
		maxSeriesPoints:  defaultMaxSeriesPoints,
		archiveQueueSize: defaultArchiveQueueSize,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start loads the dataset and brings up the optional watcher and archive.
// A failed first load does not abort startup: the manager stays in its
// failed state, reads surface the typed error, and a reload can retry.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting risk scoring service",
		logger.String("dataset", s.datasetPath),
		logger.Bool("watch", s.watchDataset),
	)

	var managerOpts []dataset.Option
	if s.loadFunc != nil {
		managerOpts = append(managerOpts, dataset.WithLoadFunc(s.loadFunc))
	}
	s.manager = dataset.NewManager(s.datasetPath, managerOpts...)

	if stats, err := s.manager.Reload(ctx); err != nil {
		s.logger.Warn(ctx, "initial dataset load failed; serving reload retries only", logger.Error(err))
	} else {
		s.logger.Info(ctx, "dataset loaded",
			logger.Int("records", stats.RecordCount),
			logger.Int("skipped", stats.SkippedCount),
			logger.Duration("took", stats.Duration),
		)
	}

	if s.watchDataset {
		w, err := dataset.NewWatcher(s.manager, s.datasetPath, dataset.WithDebounce(s.reloadDebounce))
		if err == nil {
			err = w.Start(ctx)
		}
		if err != nil {
			s.logger.Warn(ctx, "dataset watcher unavailable", logger.Error(err))
		} else {
			s.watcher = w
		}
	}

	if s.archivePath != "" {
		a, err := archive.New(s.archivePath,
			archive.WithQueueSize(s.archiveQueueSize),
			archive.WithLogger(s.logger.Named("archive")),
		)
		if err != nil {
			s.logger.Warn(ctx, "analysis archive unavailable", logger.Error(err))
		} else {
			a.Start(ctx)
			s.archive = a
		}
	}

	s.started = true
	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping risk scoring service")

	if s.watcher != nil {
		if err := s.watcher.Close(); err != nil {
			s.logger.Warn(ctx, "closing dataset watcher failed", logger.Error(err))
		}
		s.watcher = nil
	}
	if s.archive != nil {
		if err := s.archive.Close(); err != nil {
			s.logger.Warn(ctx, "closing analysis archive failed", logger.Error(err))
		}
		s.archive = nil
	}

	s.started = false
	s.logger.Info(ctx, "risk scoring service stopped")
}

// GetRecord returns the record for one client id from the current snapshot.
func (s *Service) GetRecord(ctx context.Context, id int64) (model.Record, error) {
	metrics.RecordLookup()
	snap, err := s.manager.Current(ctx)
	if err != nil {
		return model.Record{}, err
	}
	rec, err := snap.Lookup(ctx, id)
	if err != nil {
		metrics.RecordLookupMiss()
		return model.Record{}, err
	}
	return rec, nil
}

// ComputeScore scores one client against the current snapshot. Record and
// percentiles come from the same snapshot, so the result is internally
// consistent even if a reload lands mid-request.
func (s *Service) ComputeScore(ctx context.Context, id int64) (model.ScoreResult, error) {
	start := time.Now()
	metrics.RecordScoreRequest()

	snap, err := s.manager.Current(ctx)
	if err != nil {
		metrics.RecordScoreError()
		return model.ScoreResult{}, err
	}
	rec, err := snap.Lookup(ctx, id)
	if err != nil {
		metrics.RecordScoreError()
		return model.ScoreResult{}, err
	}

	res := scoring.Score(rec, snap)
	metrics.RecordScoreLatency(float64(time.Since(start).Milliseconds()))
	return res, nil
}

// Summary aggregates the records matching the filter.
func (s *Service) Summary(ctx context.Context, f dataset.Filter) (dataset.SummaryResult, error) {
	snap, err := s.manager.Current(ctx)
	if err != nil {
		return dataset.SummaryResult{}, err
	}
	return snap.Summary(f), nil
}

// SeriesSample returns the chart-ready scatter series for the filter,
// sampled to at most limit points (capped by the configured maximum).
func (s *Service) SeriesSample(ctx context.Context, f dataset.Filter, limit int) (dataset.Series, error) {
	snap, err := s.manager.Current(ctx)
	if err != nil {
		return dataset.Series{}, err
	}
	if limit <= 0 || limit > s.maxSeriesPoints {
		limit = s.maxSeriesPoints
	}
	return snap.SeriesSample(f, limit), nil
}

// Reload replaces the current snapshot from the source path. A reload
// arriving while another is in flight is rejected with
// dataset.ErrReloadInProgress rather than queued.
func (s *Service) Reload(ctx context.Context) (dataset.LoadStats, error) {
	return s.manager.TryReload(ctx)
}

// ArchiveAnalysis enqueues a computed score for the history archive.
// Returns false when the archive is disabled or its queue is full; the
// request path treats both as non-events.
func (s *Service) ArchiveAnalysis(ctx context.Context, res model.ScoreResult) bool {
	a := s.currentArchive()
	if a == nil {
		return false
	}
	return a.Record(ctx, archive.Entry{
		ClientID: res.ClientID,
		Score:    res.Score,
		Tier:     string(res.Tier),
		Decision: string(res.Decision),
	})
}

// History lists recent archived analyses, optionally for one client.
func (s *Service) History(ctx context.Context, clientID int64, limit int) ([]archive.Entry, error) {
	a := s.currentArchive()
	if a == nil {
		return nil, archive.ErrDisabled
	}
	return a.Recent(ctx, clientID, limit)
}

func (s *Service) currentArchive() *archive.Archive {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.archive
}

// DatasetState returns the dataset manager's lifecycle state.
func (s *Service) DatasetState() dataset.State {
	return s.manager.State()
}

// RecordCount returns the record count of the current snapshot, 0 when
// nothing is loaded yet.
func (s *Service) RecordCount(ctx context.Context) int {
	snap := s.currentSnapshot(ctx)
	if snap == nil {
		return 0
	}
	return snap.Count()
}

func (s *Service) currentSnapshot(ctx context.Context) *dataset.Snapshot {
	ctx, cancel := context.WithTimeout(ctx, time.Millisecond)
	defer cancel()
	snap, err := s.manager.Current(ctx)
	if err != nil {
		return nil
	}
	return snap
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	started := s.started
	archiveEnabled := s.archive != nil
	watching := s.watcher != nil
	s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":         started,
		"goroutines":      runtime.NumGoroutine(),
		"archive_enabled": archiveEnabled,
		"watching":        watching,
	}

	if s.manager != nil {
		last := s.manager.LastStats()
		stats["dataset_state"] = string(s.manager.State())
		stats["dataset_source"] = s.manager.Source()
		stats["record_count"] = last.RecordCount
		stats["skipped_count"] = last.SkippedCount
		if !last.LoadedAt.IsZero() {
			stats["loaded_at"] = last.LoadedAt
		}
	}

	return stats
}
