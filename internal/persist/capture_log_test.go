package persist

import (
	"context"
	"testing"
	"time"
)

func entry(zoneID int) CaptureEntry {
	return CaptureEntry{MatchID: 1, Kind: "captured", ZoneID: zoneID, Team: 2, At: time.Duration(zoneID) * time.Second}
}

func TestCaptureLogAppendBounded(t *testing.T) {
	l := NewCaptureLog(nil, 3, nil)
	for i := 1; i <= 5; i++ {
		l.Append(entry(i))
	}
	if got := l.Pending(); got != 3 {
		t.Fatalf("pending = %d, want 3", got)
	}
	if got := l.Dropped(); got != 2 {
		t.Fatalf("dropped = %d, want 2", got)
	}
	batch := l.take()
	if batch[0].ZoneID != 3 || batch[2].ZoneID != 5 {
		t.Fatalf("oldest entries should be dropped, got %+v", batch)
	}
	if l.Pending() != 0 {
		t.Fatal("take should empty the buffer")
	}
}

func TestCaptureLogRequeueKeepsOrder(t *testing.T) {
	l := NewCaptureLog(nil, 10, nil)
	l.Append(entry(1))
	l.Append(entry(2))
	batch := l.take()
	l.Append(entry(3))

	l.requeue(batch)
	got := l.take()
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	for i, e := range got {
		if e.ZoneID != i+1 {
			t.Fatalf("entry %d has zone %d", i, e.ZoneID)
		}
	}
}

func TestCaptureLogRequeueRespectsLimit(t *testing.T) {
	l := NewCaptureLog(nil, 2, nil)
	l.Append(entry(1))
	l.Append(entry(2))
	batch := l.take()
	l.Append(entry(3))

	l.requeue(batch)
	if l.Pending() != 2 || l.Dropped() != 1 {
		t.Fatalf("pending=%d dropped=%d", l.Pending(), l.Dropped())
	}
	if got := l.take(); got[0].ZoneID != 2 || got[1].ZoneID != 3 {
		t.Fatalf("got %+v", got)
	}
}

func TestCaptureLogFlushEmpty(t *testing.T) {
	l := NewCaptureLog(nil, 0, nil)
	n, err := l.Flush(context.Background())
	if err != nil || n != 0 {
		t.Fatalf("flush empty = %d, %v", n, err)
	}
}
