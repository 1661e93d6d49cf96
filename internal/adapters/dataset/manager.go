package dataset

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/okian/gage/pkg/metrics"
)

// State describes where the manager is in its snapshot lifecycle.
type State string

// Manager lifecycle states. Loading and Reloading both move to Failed on
// a load error; a retry re-enters the loading states.
const (
	StateEmpty     State = "empty"
	StateLoading   State = "loading"
	StateReady     State = "ready"
	StateReloading State = "reloading"
	StateFailed    State = "failed"
)

// LoadFunc builds a snapshot from a source path. It exists so tests can
// substitute the CSV loader.
type LoadFunc func(ctx context.Context, source string) (*Snapshot, LoadStats, error)

// Manager owns the lifecycle of the current Snapshot: it loads from a
// source path, hands the snapshot to concurrent readers, and swaps in a
// replacement on demand without ever exposing a half-loaded state.
//
// Readers take the current pointer with a single atomic load; a reload
// never blocks them and never invalidates a snapshot they already hold.
type Manager struct {
	source string
	load   LoadFunc

	current atomic.Pointer[Snapshot]

	// flight coalesces concurrent reloads of the same source; inFlight
	// backs the reject-instead-of-join path used by TryReload.
	flight   singleflight.Group
	inFlight atomic.Bool

	// ready is closed after the first load attempt settles, success or
	// not, releasing callers blocked in Current.
	ready     chan struct{}
	readyOnce sync.Once

	mu        sync.RWMutex
	state     State
	lastStats LoadStats
	lastErr   error
}

// NewManager creates a manager for the dataset at source. No load happens
// until Reload is called.
func NewManager(source string, opts ...Option) *Manager {
	m := &Manager{
		source: source,
		load:   Load,
		state:  StateEmpty,
		ready:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Source returns the source path the manager loads from.
func (m *Manager) Source() string {
	return m.source
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// LastStats returns the stats of the last successful load.
func (m *Manager) LastStats() LoadStats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastStats
}

// Current returns the current snapshot. It blocks only while the very
// first load is still in flight; once any load has settled it returns
// immediately, with the snapshot or with the typed error of a first load
// that failed.
func (m *Manager) Current(ctx context.Context) (*Snapshot, error) {
	if snap := m.current.Load(); snap != nil {
		return snap, nil
	}

	select {
	case <-m.ready:
	case <-ctx.Done():
		return nil, fmt.Errorf("awaiting first load: %w", ctx.Err())
	}

	if snap := m.current.Load(); snap != nil {
		return snap, nil
	}
	m.mu.RLock()
	err := m.lastErr
	m.mu.RUnlock()
	if err == nil {
		err = ErrNotLoaded
	}
	return nil, err
}

// Reload loads a fresh snapshot and atomically swaps it in on success.
// Concurrent callers join the in-flight load and share its result. On
// failure the previous snapshot, if any, keeps serving reads untouched.
func (m *Manager) Reload(ctx context.Context) (LoadStats, error) {
	v, err, _ := m.flight.Do(m.source, func() (interface{}, error) {
		return m.runLoad(ctx)
	})
	if err != nil {
		return LoadStats{}, err
	}
	stats, ok := v.(LoadStats)
	if !ok {
		return LoadStats{}, fmt.Errorf("unexpected load result type %T", v)
	}
	return stats, nil
}

// TryReload is the non-blocking variant used by the file watcher and the
// reload endpoint: instead of joining an in-flight load it fails fast
// with ErrReloadInProgress.
func (m *Manager) TryReload(ctx context.Context) (LoadStats, error) {
	if m.inFlight.Load() {
		metrics.RecordReloadRejected()
		return LoadStats{}, ErrReloadInProgress
	}
	return m.Reload(ctx)
}

func (m *Manager) runLoad(ctx context.Context) (interface{}, error) {
	m.inFlight.Store(true)
	defer m.inFlight.Store(false)
	defer m.readyOnce.Do(func() { close(m.ready) })

	m.mu.Lock()
	if m.current.Load() == nil {
		m.state = StateLoading
	} else {
		m.state = StateReloading
	}
	m.mu.Unlock()

	snap, stats, err := m.load(ctx, m.source)
	if err != nil {
		m.mu.Lock()
		m.state = StateFailed
		m.lastErr = err
		m.mu.Unlock()
		metrics.RecordReloadFailure()
		return nil, err
	}

	// Swap first, then publish state: a reader can never observe Ready
	// without a snapshot behind it.
	m.current.Store(snap)
	m.mu.Lock()
	m.state = StateReady
	m.lastErr = nil
	m.lastStats = stats
	m.mu.Unlock()

	metrics.RecordReload()
	metrics.RecordReloadDuration(float64(stats.Duration.Milliseconds()))
	metrics.UpdateDatasetRecords(stats.RecordCount)
	metrics.UpdateDatasetSkipped(stats.SkippedCount)
	metrics.UpdateSnapshotLoadedAt(stats.LoadedAt)
	return stats, nil
}
