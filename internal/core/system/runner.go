package system

import (
	"sort"
	"time"

	"go.uber.org/zap"
)

// Runner executes systems in phase order each tick. A panicking system is
// logged and skipped for that tick; the remaining systems still run.
type Runner struct {
	systems []System
	sorted  bool
	log     *zap.Logger
}

func NewRunner(log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{
		systems: make([]System, 0, 16),
		log:     log,
	}
}

func (r *Runner) Register(s System) {
	r.systems = append(r.systems, s)
	r.sorted = false
}

// Tick runs every registered system once and returns how many of them failed.
func (r *Runner) Tick(dt time.Duration) int {
	r.ensureSorted()
	failed := 0
	for _, s := range r.systems {
		if !r.run(s, dt) {
			failed++
		}
	}
	return failed
}

func (r *Runner) run(s System, dt time.Duration) (ok bool) {
	defer func() {
		if p := recover(); p != nil {
			r.log.Error("system panicked",
				zap.String("system", s.Name()),
				zap.Stringer("phase", s.Phase()),
				zap.Any("panic", p),
			)
			ok = false
		}
	}()
	s.Update(dt)
	return true
}

func (r *Runner) ensureSorted() {
	if !r.sorted {
		// Stable so systems of the same phase keep registration order.
		sort.SliceStable(r.systems, func(i, j int) bool {
			return r.systems[i].Phase() < r.systems[j].Phase()
		})
		r.sorted = true
	}
}
