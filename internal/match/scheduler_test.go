package match

import (
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestSchedulerRunsInDueOrder(t *testing.T) {
	clock := NewManualClock()
	s := NewScheduler(clock, nil)
	var got []string
	s.After(2*time.Second, "b", func() { got = append(got, "b") })
	s.After(time.Second, "a", func() { got = append(got, "a") })
	s.After(2*time.Second, "c", func() { got = append(got, "c") })

	if n := s.RunDue(); n != 0 {
		t.Fatalf("ran %d tasks early", n)
	}
	clock.Advance(2 * time.Second)
	if n := s.RunDue(); n != 3 {
		t.Fatalf("ran %d", n)
	}
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Fatalf("order = %v", got)
	}
}

func TestSchedulerDefersTasksQueuedWhileDraining(t *testing.T) {
	clock := NewManualClock()
	s := NewScheduler(clock, nil)
	runs := 0
	var again func()
	again = func() {
		runs++
		s.After(0, "again", again)
	}
	s.After(0, "again", again)
	s.RunDue()
	if runs != 1 || s.Len() != 1 {
		t.Fatalf("runs = %d, queued = %d", runs, s.Len())
	}
}

func TestSchedulerRecoversPanics(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	s := NewScheduler(NewManualClock(), zap.New(core))
	ran := false
	s.After(0, "boom", func() { panic("boom") })
	s.After(0, "next", func() { ran = true })
	if n := s.RunDue(); n != 2 || !ran {
		t.Fatalf("n = %d ran = %v", n, ran)
	}
	if logs.FilterMessage("scheduled task panicked").Len() != 1 {
		t.Fatalf("logs = %v", logs.All())
	}
}

func TestMatchClock(t *testing.T) {
	c := NewMatchClock(time.Minute)
	c.Advance(-time.Second)
	c.Advance(30 * time.Second)
	if c.Remaining() != 30*time.Second || c.Expired() {
		t.Fatalf("remaining = %s", c.Remaining())
	}
	c.Set(2 * time.Minute)
	if c.Remaining() != 0 || !c.Expired() {
		t.Fatal("clock should be expired")
	}
	c.Set(-time.Second)
	if c.Elapsed() != 0 {
		t.Fatalf("elapsed = %s", c.Elapsed())
	}
	c.Advance(time.Minute)
	c.Reset()
	if c.Elapsed() != 0 {
		t.Fatal("reset did not clear")
	}
}
