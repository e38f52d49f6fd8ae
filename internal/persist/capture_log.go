package persist

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// CaptureEntry is one controller change.
type CaptureEntry struct {
	MatchID int64
	Kind    string // "captured" or "lost"
	ZoneID  int
	X       int32
	Y       int32
	Team    int
	Player  string
	At      time.Duration // virtual match time
}

// CaptureLog buffers controller changes and writes them in batches, one
// transaction per flush. The buffer is bounded; when the database is down
// for long the oldest entries are dropped.
type CaptureLog struct {
	db    *DB
	log   *zap.Logger
	limit int

	mu      sync.Mutex
	buf     []CaptureEntry
	dropped int
}

func NewCaptureLog(db *DB, limit int, log *zap.Logger) *CaptureLog {
	if limit <= 0 {
		limit = 10000
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &CaptureLog{db: db, log: log, limit: limit, buf: make([]CaptureEntry, 0, 64)}
}

// Append buffers an entry. Safe from any goroutine.
func (l *CaptureLog) Append(e CaptureEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.buf) >= l.limit {
		over := len(l.buf) - l.limit + 1
		l.buf = append(l.buf[:0], l.buf[over:]...)
		l.dropped += over
	}
	l.buf = append(l.buf, e)
}

func (l *CaptureLog) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buf)
}

// Dropped returns how many entries were discarded by the buffer bound.
func (l *CaptureLog) Dropped() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.dropped
}

func (l *CaptureLog) take() []CaptureEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	batch := l.buf
	l.buf = make([]CaptureEntry, 0, cap(batch))
	return batch
}

// requeue puts a failed batch back in front of anything appended since.
func (l *CaptureLog) requeue(batch []CaptureEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	merged := append(batch, l.buf...)
	if over := len(merged) - l.limit; over > 0 {
		merged = merged[over:]
		l.dropped += over
		l.log.Warn("capture log full, dropping oldest entries",
			zap.Int("dropped", over),
			zap.Int("limit", l.limit),
		)
	}
	l.buf = merged
}

// Flush writes every buffered entry as one batch in a single transaction and
// returns how many were written. On failure the entries stay buffered.
func (l *CaptureLog) Flush(ctx context.Context) (int, error) {
	batch := l.take()
	if len(batch) == 0 {
		return 0, nil
	}
	if err := l.write(ctx, batch); err != nil {
		l.requeue(batch)
		return 0, err
	}
	return len(batch), nil
}

func (l *CaptureLog) write(ctx context.Context, entries []CaptureEntry) error {
	tx, err := l.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("capture log begin: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(
			`INSERT INTO capture_log (match_id, kind, zone_id, zone_x, zone_y, team, player, at_ms)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			e.MatchID, e.Kind, e.ZoneID, e.X, e.Y, e.Team, e.Player, e.At.Milliseconds(),
		)
	}
	br := tx.SendBatch(ctx, batch)
	for range entries {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("capture log insert: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("capture log batch: %w", err)
	}
	return tx.Commit(ctx)
}

// ForMatch returns the capture log of a match in time order.
func (l *CaptureLog) ForMatch(ctx context.Context, matchID int64) ([]CaptureEntry, error) {
	rows, err := l.db.Pool.Query(ctx,
		`SELECT match_id, kind, zone_id, zone_x, zone_y, team, player, at_ms
		 FROM capture_log WHERE match_id = $1 ORDER BY at_ms, id`, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CaptureEntry
	for rows.Next() {
		var e CaptureEntry
		var ms int64
		if err := rows.Scan(&e.MatchID, &e.Kind, &e.ZoneID, &e.X, &e.Y, &e.Team, &e.Player, &ms); err != nil {
			return nil, err
		}
		e.At = time.Duration(ms) * time.Millisecond
		out = append(out, e)
	}
	return out, rows.Err()
}
