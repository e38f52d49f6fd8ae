package system

import (
	"time"

	"github.com/hexedgo/server/internal/core/event"
	coresys "github.com/hexedgo/server/internal/core/system"
	"github.com/hexedgo/server/internal/match"
	"go.uber.org/zap"
)

// EventDispatchSystem delivers the events emitted during the previous tick.
// Phase 1 (PreUpdate), registered before the clock.
type EventDispatchSystem struct {
	bus *event.Bus
}

func NewEventDispatchSystem(bus *event.Bus) *EventDispatchSystem {
	return &EventDispatchSystem{bus: bus}
}

func (s *EventDispatchSystem) Name() string         { return "event-dispatch" }
func (s *EventDispatchSystem) Phase() coresys.Phase { return coresys.PhasePreUpdate }

func (s *EventDispatchSystem) Update(_ time.Duration) {
	s.bus.SwapBuffers()
	s.bus.DispatchAll()
}

// ClockSystem advances virtual time and the match clock; a match that runs
// out of time is resolved here. Phase 1 (PreUpdate).
type ClockSystem struct {
	host *match.Host
}

func NewClockSystem(host *match.Host) *ClockSystem {
	return &ClockSystem{host: host}
}

func (s *ClockSystem) Name() string         { return "clock" }
func (s *ClockSystem) Phase() coresys.Phase { return coresys.PhasePreUpdate }

func (s *ClockSystem) Update(dt time.Duration) {
	if m := s.host.Current(); m != nil {
		m.Advance(dt)
	}
}

// SchedulerSystem runs due deferred tasks: staggered teardown and dying
// expiry. Phase 2 (Update).
type SchedulerSystem struct {
	host *match.Host
}

func NewSchedulerSystem(host *match.Host) *SchedulerSystem {
	return &SchedulerSystem{host: host}
}

func (s *SchedulerSystem) Name() string         { return "scheduler" }
func (s *SchedulerSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *SchedulerSystem) Update(_ time.Duration) {
	if m := s.host.Current(); m != nil {
		m.RunScheduled()
	}
}

// ZoneEvaluationSystem re-scores every zone each zone_evaluation_interval.
// Phase 2 (Update).
type ZoneEvaluationSystem struct {
	host  *match.Host
	every interval
	log   *zap.Logger
}

func NewZoneEvaluationSystem(host *match.Host, log *zap.Logger) *ZoneEvaluationSystem {
	if log == nil {
		log = zap.NewNop()
	}
	return &ZoneEvaluationSystem{host: host, log: log}
}

func (s *ZoneEvaluationSystem) Name() string         { return "zone-evaluation" }
func (s *ZoneEvaluationSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *ZoneEvaluationSystem) Update(dt time.Duration) {
	m := s.host.Current()
	if m == nil || !m.Active() {
		s.every.reset()
		return
	}
	if !s.every.due(dt, m.Config().ZoneEvaluationInterval) {
		return
	}
	if changed := m.EvaluateZones(); len(changed) > 0 {
		s.log.Debug("zones evaluated", zap.Int("changed", len(changed)))
	}
}

// PlayerSweepSystem eliminates coreless teams each player_sweep_interval.
// Phase 3 (PostUpdate).
type PlayerSweepSystem struct {
	host  *match.Host
	every interval
}

func NewPlayerSweepSystem(host *match.Host) *PlayerSweepSystem {
	return &PlayerSweepSystem{host: host}
}

func (s *PlayerSweepSystem) Name() string         { return "player-sweep" }
func (s *PlayerSweepSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *PlayerSweepSystem) Update(dt time.Duration) {
	m := s.host.Current()
	if m == nil || !m.Active() {
		s.every.reset()
		return
	}
	if s.every.due(dt, m.Config().PlayerSweepInterval) {
		m.SweepPlayers()
	}
}

// LeaderboardSystem posts the standings each leaderboard_interval.
// Phase 3 (PostUpdate).
type LeaderboardSystem struct {
	host  *match.Host
	every interval
}

func NewLeaderboardSystem(host *match.Host) *LeaderboardSystem {
	return &LeaderboardSystem{host: host}
}

func (s *LeaderboardSystem) Name() string         { return "leaderboard" }
func (s *LeaderboardSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *LeaderboardSystem) Update(dt time.Duration) {
	m := s.host.Current()
	if m == nil || !m.Active() {
		s.every.reset()
		return
	}
	if s.every.due(dt, m.Config().LeaderboardInterval) {
		m.PostLeaderboard()
	}
}

// RotationSystem starts the next match restart_delay after the current one
// concludes. Phase 3 (PostUpdate).
type RotationSystem struct {
	host      *match.Host
	generator string
	delay     time.Duration
	waited    time.Duration
	log       *zap.Logger
}

func NewRotationSystem(host *match.Host, generator string, delay time.Duration, log *zap.Logger) *RotationSystem {
	if log == nil {
		log = zap.NewNop()
	}
	return &RotationSystem{host: host, generator: generator, delay: delay, log: log}
}

func (s *RotationSystem) Name() string         { return "rotation" }
func (s *RotationSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *RotationSystem) Update(dt time.Duration) {
	m := s.host.Current()
	if m != nil && !m.Concluded() {
		s.waited = 0
		return
	}
	s.waited += dt
	if s.waited < s.delay {
		return
	}
	s.waited = 0
	if _, err := s.host.Start(s.generator); err != nil {
		s.log.Error("start next match", zap.String("generator", s.generator), zap.Error(err))
	}
}
