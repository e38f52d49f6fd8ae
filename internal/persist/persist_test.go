package persist

import (
	"context"
	"os"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/hexedgo/server/internal/config"
)

// openTestDB connects to HEXED_TEST_DSN and applies migrations, skipping
// the test when no database is configured.
func openTestDB(t *testing.T) *DB {
	t.Helper()
	dsn := os.Getenv("HEXED_TEST_DSN")
	if dsn == "" {
		t.Skip("HEXED_TEST_DSN not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := NewDB(ctx, config.DatabaseConfig{DSN: dsn, MaxOpenConns: 4}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(db.Close)
	if err := RunMigrations(ctx, db.Pool, zaptest.NewLogger(t)); err != nil {
		t.Fatalf("RunMigrations: %v", err)
	}
	return db
}

func TestRunMigrationsLogsThroughZap(t *testing.T) {
	db := openTestDB(t)
	core, logs := observer.New(zapcore.InfoLevel)
	if err := RunMigrations(context.Background(), db.Pool, zap.New(core)); err != nil {
		t.Fatalf("RunMigrations: %v", err)
	}
	for _, e := range logs.All() {
		if e.LoggerName == "migrate" {
			return
		}
	}
	t.Fatalf("no migration output logged: %+v", logs.All())
}

func TestGooseLoggerTrimsNewline(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	gooseLogger{s: zap.New(core).Sugar()}.Printf("OK   %s\n", "00001_init.sql")
	if logs.FilterMessage("OK   00001_init.sql").Len() != 1 {
		t.Fatalf("logged %+v", logs.All())
	}
}

func TestMatchRepoRoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewMatchRepo(db)

	id, err := repo.Begin(ctx, "anuke", 56)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	standings := []Standing{{Team: 2, Zones: 30, Winner: true}, {Team: 5, Zones: 4}}
	if err := repo.SaveResult(ctx, id, "domination", 42*time.Minute, standings); err != nil {
		t.Fatalf("SaveResult: %v", err)
	}
	if err := repo.SaveResult(ctx, id, "timeout", time.Minute, nil); err == nil {
		t.Fatal("second SaveResult should fail")
	}

	recent, err := repo.Recent(ctx, 5)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) == 0 || recent[0].ID != id {
		t.Fatalf("newest match should be %d, got %+v", id, recent)
	}
	m := recent[0]
	if m.Reason != "domination" || m.Elapsed != 42*time.Minute || m.EndedAt == nil {
		t.Fatalf("unexpected row %+v", m)
	}
	if len(m.Standings) != 2 || m.Standings[0].Team != 2 || !m.Standings[0].Winner {
		t.Fatalf("standings = %+v", m.Standings)
	}
}

func TestCaptureLogFlush(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	id, err := NewMatchRepo(db).Begin(ctx, "quad", 4)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	l := NewCaptureLog(db, 100, zaptest.NewLogger(t))
	l.Append(CaptureEntry{MatchID: id, Kind: "captured", ZoneID: 1, X: 37, Y: 37, Team: 3, Player: "p1", At: 2 * time.Second})
	l.Append(CaptureEntry{MatchID: id, Kind: "lost", ZoneID: 1, X: 37, Y: 37, Team: 3, At: 9 * time.Second})

	n, err := l.Flush(ctx)
	if err != nil || n != 2 {
		t.Fatalf("Flush = %d, %v", n, err)
	}
	if l.Pending() != 0 {
		t.Fatalf("pending after flush = %d", l.Pending())
	}

	got, err := l.ForMatch(ctx, id)
	if err != nil {
		t.Fatalf("ForMatch: %v", err)
	}
	if len(got) != 2 || got[0].Kind != "captured" || got[1].At != 9*time.Second {
		t.Fatalf("log = %+v", got)
	}
}

func TestCaptureLogFlushFailureKeepsEntries(t *testing.T) {
	db := openTestDB(t)
	l := NewCaptureLog(db, 100, nil)
	// No such match: the foreign key rejects the batch.
	l.Append(CaptureEntry{MatchID: -1, Kind: "captured", ZoneID: 1})
	if _, err := l.Flush(context.Background()); err == nil {
		t.Fatal("flush should fail")
	}
	if l.Pending() != 1 {
		t.Fatalf("pending = %d, want 1", l.Pending())
	}
}

func TestCaptureLogBatchIsAtomic(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	id, err := NewMatchRepo(db).Begin(ctx, "arena", 2)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	l := NewCaptureLog(db, 100, nil)
	l.Append(CaptureEntry{MatchID: id, Kind: "captured", ZoneID: 1, Team: 2, At: time.Second})
	l.Append(CaptureEntry{MatchID: -1, Kind: "captured", ZoneID: 2, Team: 3, At: 2 * time.Second})
	l.Append(CaptureEntry{MatchID: id, Kind: "lost", ZoneID: 1, Team: 2, At: 3 * time.Second})

	if _, err := l.Flush(ctx); err == nil {
		t.Fatal("flush should fail on the bad row")
	}
	if l.Pending() != 3 {
		t.Fatalf("pending = %d, want 3", l.Pending())
	}
	got, err := l.ForMatch(ctx, id)
	if err != nil {
		t.Fatalf("ForMatch: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("partial batch committed: %+v", got)
	}
}
