package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseInput      Phase = iota // 0: drain membership inbox
	PhasePreUpdate               // 1: dispatch last tick's events, advance clocks
	PhaseUpdate                  // 2: deferred tasks, zone evaluation
	PhasePostUpdate              // 3: player sweep, leaderboard
	PhasePersist                 // 4: capture log flush
	PhaseCleanup                 // 5: destroy queued entities
)

func (p Phase) String() string {
	switch p {
	case PhaseInput:
		return "input"
	case PhasePreUpdate:
		return "pre-update"
	case PhaseUpdate:
		return "update"
	case PhasePostUpdate:
		return "post-update"
	case PhasePersist:
		return "persist"
	case PhaseCleanup:
		return "cleanup"
	}
	return "unknown"
}

// System is the interface every tick system implements.
type System interface {
	Name() string
	Phase() Phase
	Update(dt time.Duration)
}
