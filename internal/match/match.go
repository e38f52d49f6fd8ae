// Package match drives one hexed match: the territory ledger, the team
// lifecycle, deferred teardown tasks and outcome resolution. A Match is
// owned by the game loop goroutine; only its Ledger is safe to read from
// elsewhere.
package match

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/hexedgo/server/internal/config"
	"github.com/hexedgo/server/internal/core/ecs"
	"github.com/hexedgo/server/internal/core/event"
	"github.com/hexedgo/server/internal/data"
	"github.com/hexedgo/server/internal/territory"
	"github.com/hexedgo/server/internal/zone"
)

// World is the map a match plays on: the snapshot the calculator reads plus
// the tile mutations needed to build and tear down bases.
type World interface {
	territory.Snapshot
	InBounds(p zone.Point) bool
	BlockAt(p zone.Point) (string, bool)
	ClearTile(p zone.Point)
	Place(p zone.Point, pl territory.Placement) error
	StructuresOf(team territory.TeamID) []zone.Point
	CoreCount(team territory.TeamID) int
	Destroy(p zone.Point, team territory.TeamID) (wasCore, ok bool)
	UnitsOf(team territory.TeamID) []ecs.EntityID
	KillTeamUnit(id ecs.EntityID, team territory.TeamID) bool
}

// Setup is everything needed to start a match.
type Setup struct {
	Name   string
	Config config.MatchConfig
	Zones  []zone.Zone
	Base   *data.Schematic
	Blocks *data.BlockCatalog
	World  World
	Bus    *event.Bus
	Clock  *ManualClock // shared virtual clock; a fresh one if nil
	Rand   *rand.Rand   // seeded from Config.Seed if nil
	Log    *zap.Logger
}

type Match struct {
	name    string
	cfg     config.MatchConfig
	world   World
	bus     *event.Bus
	log     *zap.Logger
	rng     *rand.Rand
	clock   *ManualClock
	timer   *MatchClock
	sched   *Scheduler
	ledger  *territory.Ledger
	outcome *Resolver

	base     *data.Schematic
	coreTile data.SchematicTile
	loadout  map[string]int

	players map[string]*Player
	teams   *teamAssigner
	epochs  map[territory.TeamID]uint64
	active  bool
}

// New validates the setup and starts a match. Nothing is created or
// mutated when validation fails.
func New(s Setup) (*Match, error) {
	if err := s.Config.Validate(); err != nil {
		return nil, &ConfigError{Err: err}
	}
	if s.World == nil || s.Base == nil || s.Blocks == nil {
		return nil, &ConfigError{Err: errors.New("world, base schematic and block catalog are required")}
	}
	layout, err := zone.NewLayout(s.Zones)
	if err != nil {
		return nil, &ConfigError{Err: err}
	}
	core, err := s.Base.CoreTile(s.Blocks)
	if err != nil {
		return nil, &ConfigError{Err: err}
	}
	calc, err := territory.NewPressureCalculator(s.Config.CaptureRequirement)
	if err != nil {
		return nil, &ConfigError{Err: err}
	}

	log := s.Log
	if log == nil {
		log = zap.NewNop()
	}
	clock := s.Clock
	if clock == nil {
		clock = NewManualClock()
	}
	rng := s.Rand
	if rng == nil {
		seed := s.Config.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		rng = rand.New(rand.NewSource(seed))
	}
	bus := s.Bus
	if bus == nil {
		bus = event.NewBus()
	}
	name := s.Name
	if name == "" {
		name = "match"
	}

	ledger := territory.NewLedger(layout, calc, s.World, clock, s.Config.SpawnCooldown)
	loadout := make(map[string]int, len(s.Base.Loadout))
	for _, st := range s.Base.Loadout {
		loadout[st.Item] += st.Amount
	}
	m := &Match{
		name:     name,
		cfg:      s.Config,
		world:    s.World,
		bus:      bus,
		log:      log.With(zap.String("match", name)),
		rng:      rng,
		clock:    clock,
		timer:    NewMatchClock(s.Config.MatchDuration),
		sched:    NewScheduler(clock, log),
		ledger:   ledger,
		outcome:  NewResolver(ledger),
		base:     s.Base,
		coreTile: core,
		loadout:  loadout,
		players:  make(map[string]*Player),
		teams:    newTeamAssigner(s.Config.TeamPool, rng),
		epochs:   make(map[territory.TeamID]uint64),
		active:   true,
	}
	m.log.Info("match started",
		zap.Int("zones", layout.Len()),
		zap.String("base", s.Base.Name),
		zap.Float64("capture_requirement", calc.Requirement()),
		zap.Duration("duration", s.Config.MatchDuration),
	)
	event.Emit(bus, MatchStarted{Name: name, Zones: layout.Len(), Duration: s.Config.MatchDuration})
	return m, nil
}

func (m *Match) Name() string               { return m.name }
func (m *Match) Ledger() *territory.Ledger  { return m.ledger }
func (m *Match) World() World               { return m.world }
func (m *Match) Bus() *event.Bus            { return m.bus }
func (m *Match) Clock() *ManualClock        { return m.clock }
func (m *Match) Config() config.MatchConfig { return m.cfg }
func (m *Match) Active() bool               { return m.active }
func (m *Match) Concluded() bool            { return m.outcome.Concluded() }
func (m *Match) Result() (Outcome, bool)    { return m.outcome.Result() }
func (m *Match) Elapsed() time.Duration     { return m.timer.Elapsed() }
func (m *Match) Remaining() time.Duration   { return m.timer.Remaining() }

// Pending returns the number of queued deferred tasks.
func (m *Match) Pending() int { return m.sched.Len() }

// Advance moves virtual time forward. The match clock only runs while the
// match is active; running out of time resolves the match.
func (m *Match) Advance(dt time.Duration) {
	m.clock.Advance(dt)
	if !m.active {
		return
	}
	m.timer.Advance(dt)
	if out, ok := m.outcome.CheckTimeout(m.timer); ok {
		m.conclude(out)
	}
}

// SetElapsed overrides the match clock. Timeout is checked on the next Advance.
func (m *Match) SetElapsed(d time.Duration) {
	m.timer.Set(d)
	m.log.Info("match time set", zap.Duration("elapsed", m.timer.Elapsed()))
}

// RunScheduled drains due deferred tasks.
func (m *Match) RunScheduled() int {
	return m.sched.RunDue()
}

// EvaluateZones re-scores every zone and returns the controller changes.
// It is the periodic pass; domination is checked afterwards.
func (m *Match) EvaluateZones() []territory.Transition {
	var changed []territory.Transition
	for _, z := range m.ledger.Layout().Zones() {
		if tr, ok := m.evaluate(z); ok && tr.Changed() {
			changed = append(changed, tr)
		}
	}
	if m.active {
		if out, ok := m.outcome.CheckDomination(m.timer.Elapsed()); ok {
			m.conclude(out)
		}
	}
	return changed
}

func (m *Match) evaluate(z zone.Zone) (territory.Transition, bool) {
	tr, ok := m.ledger.UpdateProgress(z)
	if !ok || !tr.Changed() {
		return tr, ok
	}
	now := m.clock.Now()
	if tr.From.Playable() {
		event.Emit(m.bus, HexLost{Team: tr.From, Zone: z, At: now})
	}
	if tr.To.Playable() {
		event.Emit(m.bus, HexCaptured{Team: tr.To, Zone: z, Player: m.playerOf(tr.To), At: now})
	}
	m.log.Debug("zone changed hands",
		zap.Int("zone", z.ID()),
		zap.Stringer("from", tr.From),
		zap.Stringer("to", tr.To),
	)
	return tr, true
}

func (m *Match) conclude(out Outcome) {
	m.active = false
	event.Emit(m.bus, MatchOver{Outcome: out})
	m.log.Info("match over",
		zap.String("reason", out.Reason.String()),
		zap.Any("winners", out.Winners),
		zap.Duration("elapsed", out.Elapsed),
	)
}

// Leaderboard returns standings by controlled-zone count.
func (m *Match) Leaderboard() []territory.Standing {
	return m.ledger.Leaderboard()
}

// PostLeaderboard emits the current standings.
func (m *Match) PostLeaderboard() {
	if !m.active {
		return
	}
	event.Emit(m.bus, LeaderboardPosted{Standings: m.ledger.Leaderboard(), Remaining: m.timer.Remaining()})
}

// Controlled returns the zones team controls.
func (m *Match) Controlled(team territory.TeamID) []zone.Zone {
	return m.ledger.Controlled(team)
}

// Status is a player's view of the zone they stand in.
type Status struct {
	Player     *Player
	Zone       zone.Zone // nil outside every zone
	Controller territory.TeamID
	Progress   float64 // percent, see Ledger.Progress
}

// Status reports the zone at the player's position, its controller and the
// player's team progress there.
func (m *Match) Status(playerID string, at zone.Point) (Status, error) {
	p, ok := m.players[playerID]
	if !ok {
		return Status{}, fmt.Errorf("status %s: %w", playerID, ErrPlayerNotFound)
	}
	cp := *p
	st := Status{Player: &cp}
	z, ok := m.ledger.Layout().Locate(at.X, at.Y)
	if !ok {
		return st, nil
	}
	st.Zone = z
	st.Controller, _ = m.ledger.Controller(z)
	st.Progress, _ = m.ledger.Progress(z, p.Team)
	return st, nil
}

// Player returns a copy of the player record.
func (m *Match) Player(id string) (Player, bool) {
	p, ok := m.players[id]
	if !ok {
		return Player{}, false
	}
	return *p, true
}

// Players returns the player ids in sorted order.
func (m *Match) Players() []string {
	ids := make([]string, 0, len(m.players))
	for id := range m.players {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (m *Match) playerOf(team territory.TeamID) string {
	for _, id := range m.Players() {
		if p := m.players[id]; p.State == Assigned && p.Team == team {
			return id
		}
	}
	return ""
}
