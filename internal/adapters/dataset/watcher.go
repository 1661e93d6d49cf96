package dataset

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/okian/gage/pkg/logger"
)

// defaultDebounce spaces out reload triggers while a writer is still
// replacing the dataset file.
const defaultDebounce = 2 * time.Second

// reloader is the slice of the Manager the watcher needs.
type reloader interface {
	TryReload(ctx context.Context) (LoadStats, error)
}

// Watcher implements the reload-if-source-changed freshness policy: it
// watches the dataset file and triggers a reload once writes settle.
// Bursts of write events collapse into a single trigger, and a trigger
// that lands while a reload is already in flight is skipped.
type Watcher struct {
	target   reloader
	path     string
	debounce time.Duration
	log      logger.Logger

	fsw  *fsnotify.Watcher
	done chan struct{}
}

// WatcherOption applies a configuration option to the Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets the quiet period between the last file event and the
// reload trigger.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithWatcherLogger sets a custom logger for the watcher.
func WithWatcherLogger(log logger.Logger) WatcherOption {
	return func(w *Watcher) {
		if log != nil {
			w.log = log
		}
	}
}

// NewWatcher creates a watcher that triggers target.TryReload when the
// file at path changes.
func NewWatcher(target reloader, path string, opts ...WatcherOption) (*Watcher, error) {
	if target == nil {
		return nil, errors.New("watcher target is nil")
	}
	w := &Watcher{
		target:   target,
		path:     path,
		debounce: defaultDebounce,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start begins watching. Watching the parent directory instead of the
// file itself survives editors and pipelines that replace the file by
// rename.
func (w *Watcher) Start(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		_ = fsw.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}
	w.fsw = fsw
	if w.log == nil {
		w.log = logger.Get().Named("watcher")
	}

	go w.run(ctx)
	return nil
}

// Close stops the watcher and releases the underlying file watch.
func (w *Watcher) Close() error {
	select {
	case <-w.done:
	default:
		close(w.done)
	}
	if w.fsw != nil {
		return w.fsw.Close()
	}
	return nil
}

func (w *Watcher) run(ctx context.Context) {
	var pending *time.Timer
	defer func() {
		if pending != nil {
			pending.Stop()
		}
	}()

	// A nil channel blocks forever; fire stays nil until the first event.
	var fire <-chan time.Time

	base := filepath.Base(w.path)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != base {
				continue
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Rename) {
				continue
			}
			if pending == nil {
				pending = time.NewTimer(w.debounce)
				fire = pending.C
			} else {
				if !pending.Stop() {
					select {
					case <-pending.C:
					default:
					}
				}
				pending.Reset(w.debounce)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn(ctx, "dataset watch error", logger.Error(err))
		case <-fire:
			w.trigger(ctx)
		}
	}
}

func (w *Watcher) trigger(ctx context.Context) {
	stats, err := w.target.TryReload(ctx)
	switch {
	case errors.Is(err, ErrReloadInProgress):
		w.log.Debug(ctx, "dataset changed but a reload is already in flight; skipping")
	case err != nil:
		w.log.Warn(ctx, "dataset reload after file change failed", logger.Error(err))
	default:
		w.log.Info(ctx, "dataset reloaded after file change",
			logger.Int("records", stats.RecordCount),
			logger.Int("skipped", stats.SkippedCount),
		)
	}
}
