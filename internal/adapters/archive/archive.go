// Package archive persists a history of computed analyses to SQLite.
//
// Writes flow through a bounded in-memory queue drained by a single
// writer goroutine, so the request path never blocks on disk. When the
// queue is full the write is dropped and counted; the archive is an
// optional convenience, never an input to scoring.
package archive

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver

	"github.com/okian/gage/pkg/logger"
	"github.com/okian/gage/pkg/metrics"
)

// Default archive configuration constants.
const (
	defaultQueueSize = 1024
	driverName       = "sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS analyses (
	analysis_id TEXT PRIMARY KEY,
	client_id   INTEGER NOT NULL,
	score       REAL NOT NULL,
	tier        TEXT NOT NULL,
	decision    TEXT NOT NULL,
	created_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS analyses_client_idx ON analyses (client_id, created_at DESC);
`

// Entry is one archived analysis.
type Entry struct {
	AnalysisID string    `json:"analysis_id"`
	ClientID   int64     `json:"client_id"`
	Score      float64   `json:"score"`
	Tier       string    `json:"tier"`
	Decision   string    `json:"decision"`
	CreatedAt  time.Time `json:"created_at"`
}

// Archive owns the SQLite history database and its write queue.
type Archive struct {
	db        *sql.DB
	queue     chan Entry
	queueSize int
	log       logger.Logger

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// New opens (creating if needed) the archive database at path.
func New(path string, opts ...Option) (*Archive, error) {
	a := &Archive{
		queueSize: defaultQueueSize,
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(a)
	}

	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", path, err)
	}
	// The writer goroutine is the only writer; a second connection would
	// just contend on SQLite's file lock.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init archive schema: %w", err)
	}

	a.db = db
	a.queue = make(chan Entry, a.queueSize)
	metrics.UpdateArchiveQueueCapacity(a.queueSize)
	metrics.UpdateArchiveQueueSize(0)
	return a, nil
}

// Start launches the writer goroutine draining the queue into SQLite.
func (a *Archive) Start(ctx context.Context) {
	if a.log == nil {
		a.log = logger.Get().Named("archive")
	}
	a.wg.Add(1)
	go a.drain(ctx)
}

// Record enqueues one analysis for archiving. It never blocks: when the
// queue is full the entry is dropped, counted, and false is returned.
func (a *Archive) Record(_ context.Context, e Entry) bool {
	if e.AnalysisID == "" {
		e.AnalysisID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	select {
	case <-a.done:
		metrics.RecordArchiveDrop()
		return false
	default:
	}

	select {
	case a.queue <- e:
		metrics.UpdateArchiveQueueSize(len(a.queue))
		return true
	default:
		metrics.RecordArchiveDrop()
		return false
	}
}

// Recent returns up to limit archived analyses, newest first. A positive
// clientID restricts the listing to that client.
func (a *Archive) Recent(ctx context.Context, clientID int64, limit int) ([]Entry, error) {
	select {
	case <-a.done:
		return nil, ErrClosed
	default:
	}
	if limit <= 0 {
		limit = defaultQueueSize
	}

	query := `SELECT analysis_id, client_id, score, tier, decision, created_at
		FROM analyses ORDER BY created_at DESC, analysis_id LIMIT ?`
	args := []any{limit}
	if clientID > 0 {
		query = `SELECT analysis_id, client_id, score, tier, decision, created_at
			FROM analyses WHERE client_id = ? ORDER BY created_at DESC, analysis_id LIMIT ?`
		args = []any{clientID, limit}
	}

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query archive: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var createdMs int64
		if err := rows.Scan(&e.AnalysisID, &e.ClientID, &e.Score, &e.Tier, &e.Decision, &createdMs); err != nil {
			return nil, fmt.Errorf("scan archive row: %w", err)
		}
		e.CreatedAt = time.UnixMilli(createdMs).UTC()
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate archive rows: %w", err)
	}
	return entries, nil
}

// Close stops accepting writes, drains what is already queued, and closes
// the database.
func (a *Archive) Close() error {
	a.closeOnce.Do(func() { close(a.done) })
	a.wg.Wait()
	return a.db.Close()
}

func (a *Archive) drain(ctx context.Context) {
	defer a.wg.Done()
	for {
		select {
		case e := <-a.queue:
			a.write(ctx, e)
			metrics.UpdateArchiveQueueSize(len(a.queue))
		case <-a.done:
			a.flush(ctx)
			return
		case <-ctx.Done():
			a.flush(context.Background())
			return
		}
	}
}

// flush writes whatever is still queued at shutdown.
func (a *Archive) flush(ctx context.Context) {
	for {
		select {
		case e := <-a.queue:
			a.write(ctx, e)
		default:
			metrics.UpdateArchiveQueueSize(0)
			return
		}
	}
}

func (a *Archive) write(ctx context.Context, e Entry) {
	_, err := a.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO analyses (analysis_id, client_id, score, tier, decision, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.AnalysisID, e.ClientID, e.Score, e.Tier, e.Decision, e.CreatedAt.UnixMilli(),
	)
	if err != nil {
		metrics.RecordArchiveError()
		a.log.Error(ctx, "archive write failed",
			logger.String("analysisID", e.AnalysisID),
			logger.Error(err),
		)
		return
	}
	metrics.RecordArchiveWrite()
}
