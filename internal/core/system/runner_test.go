package system

import (
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type recorder struct {
	name  string
	phase Phase
	log   *[]string
	panic bool
}

func (r *recorder) Name() string { return r.name }
func (r *recorder) Phase() Phase { return r.phase }
func (r *recorder) Update(time.Duration) {
	*r.log = append(*r.log, r.name)
	if r.panic {
		panic("boom")
	}
}

func TestRunnerPhaseOrder(t *testing.T) {
	var order []string
	r := NewRunner(nil)
	r.Register(&recorder{name: "cleanup", phase: PhaseCleanup, log: &order})
	r.Register(&recorder{name: "input", phase: PhaseInput, log: &order})
	r.Register(&recorder{name: "update-a", phase: PhaseUpdate, log: &order})
	r.Register(&recorder{name: "update-b", phase: PhaseUpdate, log: &order})

	r.Tick(time.Millisecond)

	want := []string{"input", "update-a", "update-b", "cleanup"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestRunnerSurvivesPanickingSystem(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	var order []string
	r := NewRunner(zap.New(core))
	r.Register(&recorder{name: "bad", phase: PhaseUpdate, log: &order, panic: true})
	r.Register(&recorder{name: "after", phase: PhasePostUpdate, log: &order})

	if failed := r.Tick(time.Millisecond); failed != 1 {
		t.Fatalf("failed = %d, want 1", failed)
	}
	if len(order) != 2 || order[1] != "after" {
		t.Fatalf("later system did not run: %v", order)
	}
	if logs.FilterMessage("system panicked").Len() != 1 {
		t.Fatalf("panic not logged")
	}
}
