package match

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hexedgo/server/internal/core/event"
	"github.com/hexedgo/server/internal/territory"
	"github.com/hexedgo/server/internal/zone"
)

// Join assigns the player a team and builds its starting base in a random
// vacant zone. real is false for a rejoin after spectating. When no team or
// zone is free the player becomes a spectator and ErrNoSpace is returned.
// Availability is read without reserving anything, so two joins in the same
// tick may pick the same zone; the second base is built over the first.
func (m *Match) Join(id, name string, real bool) (zone.Zone, error) {
	if !m.active {
		return nil, ErrInactive
	}
	p, ok := m.players[id]
	if !ok {
		p = &Player{ID: id, Name: name}
		m.players[id] = p
	}
	if name != "" {
		p.Name = name
	}
	if p.State == Assigned {
		return p.Spawn, ErrAlreadyPlaying
	}

	team, ok := m.teams.next(m.teamFree)
	if !ok {
		return nil, m.noSpace(p, "no free team")
	}
	vacant := m.ledger.Vacant()
	if len(vacant) == 0 {
		return nil, m.noSpace(p, "no vacant zone")
	}
	z := vacant[m.rng.Intn(len(vacant))]

	placed := m.placeBase(z.Center(), team)
	p.Team = team
	p.State = Assigned
	p.Spawn = z
	m.evaluate(z)

	event.Emit(m.bus, PlayerAssigned{Player: id, Name: p.Name, Team: team, Zone: z})
	m.log.Info("player joined",
		zap.String("player", id),
		zap.Bool("real", real),
		zap.Stringer("team", team),
		zap.Int("zone", z.ID()),
		zap.Int("tiles", placed),
	)
	return z, nil
}

// teamFree reports whether a team can be handed to a joining player: no
// player holds it, it is not being torn down and it owns nothing.
func (m *Match) teamFree(team territory.TeamID) bool {
	for _, p := range m.players {
		if p.State == Assigned && p.Team == team {
			return false
		}
	}
	return !m.ledger.IsDying(team) && len(m.world.StructuresOf(team)) == 0
}

func (m *Match) noSpace(p *Player, why string) error {
	p.Team = territory.Derelict
	p.State = Spectator
	p.Spawn = nil
	err := fmt.Errorf("join %s: %w", p.ID, ErrNoSpace)
	event.Emit(m.bus, SpectatorAssigned{Player: p.ID, Cause: err})
	m.log.Info("player spectating", zap.String("player", p.ID), zap.String("cause", why))
	return err
}

// placeBase builds the base schematic for team with its core tile on
// center. Occupied tiles are cleared first; tiles off the map are skipped.
// It returns the number of blocks placed.
func (m *Match) placeBase(center zone.Point, team territory.TeamID) int {
	placed := 0
	for _, t := range m.base.Tiles {
		at := zone.Point{
			X: center.X + t.X - m.coreTile.X,
			Y: center.Y + t.Y - m.coreTile.Y,
		}
		if !m.world.InBounds(at) {
			m.log.Debug("base tile out of bounds", zap.String("block", t.Block), zap.Stringer("at", at))
			continue
		}
		if _, taken := m.world.BlockAt(at); taken {
			m.world.ClearTile(at)
		}
		pl := territory.Placement{
			Block:    t.Block,
			Team:     team,
			Rotation: uint8(t.Rotation),
			Config:   t.Config,
		}
		if t.X == m.coreTile.X && t.Y == m.coreTile.Y {
			pl.Items = m.loadout
		}
		if err := m.world.Place(at, pl); err != nil {
			m.log.Warn("place base tile", zap.Error(err))
			continue
		}
		placed++
	}
	return placed
}

// Leave moves the player to spectator. While the match is active the
// player's team is torn down first.
func (m *Match) Leave(id string, reason LeaveReason) error {
	p, ok := m.players[id]
	if !ok {
		return fmt.Errorf("leave %s: %w", id, ErrPlayerNotFound)
	}
	if p.State == Assigned {
		team := p.Team
		if m.active {
			m.eliminate(team)
		}
		p.Team = territory.Derelict
		p.State = Spectator
		p.Spawn = nil
		event.Emit(m.bus, PlayerEliminated{Player: id, Team: team, Reason: reason})
		m.log.Info("player left", zap.String("player", id), zap.Stringer("team", team), zap.Stringer("reason", reason))
	}
	if reason == LeaveDisconnect {
		delete(m.players, id)
	}
	return nil
}

// Spectate is the forced leave of a playing player.
func (m *Match) Spectate(id string) error {
	p, ok := m.players[id]
	if !ok {
		return fmt.Errorf("spectate %s: %w", id, ErrPlayerNotFound)
	}
	if p.State == Spectator {
		return ErrAlreadySpectating
	}
	return m.Leave(id, LeaveSpectate)
}

// Rejoin puts a spectating player back into the match.
func (m *Match) Rejoin(id string) (zone.Zone, error) {
	p, ok := m.players[id]
	if !ok {
		return nil, fmt.Errorf("rejoin %s: %w", id, ErrPlayerNotFound)
	}
	if p.State == Assigned {
		return p.Spawn, ErrAlreadyPlaying
	}
	return m.Join(id, p.Name, false)
}

// eliminate starts the teardown of a team: it joins the dying set, each of
// its structures and units is destroyed after a random stagger, and after the
// teardown delay it leaves the dying set. Calling it again while dying
// queues destruction only for what is still standing and pushes the
// deadline out. Zones the team holds are not reassigned here; they change
// hands when their core is gone and the zone is evaluated.
func (m *Match) eliminate(team territory.TeamID) {
	m.ledger.SetDying(team, true)
	m.epochs[team]++
	epoch := m.epochs[team]

	structures := m.world.StructuresOf(team)
	for _, at := range structures {
		m.sched.After(m.stagger(), "teardown", func() {
			wasCore, ok := m.world.Destroy(at, team)
			if !ok {
				return
			}
			if wasCore {
				m.coreDestroyed(at)
			}
		})
	}
	units := m.world.UnitsOf(team)
	for _, id := range units {
		m.sched.After(m.stagger(), "teardown-unit", func() {
			m.world.KillTeamUnit(id, team)
		})
	}
	m.sched.After(m.cfg.TeardownDelay, "undying", func() {
		if m.epochs[team] != epoch {
			return
		}
		m.ledger.SetDying(team, false)
		m.log.Debug("team teardown finished", zap.Stringer("team", team))
	})
	m.log.Info("team eliminated",
		zap.Stringer("team", team),
		zap.Int("structures", len(structures)),
		zap.Int("units", len(units)),
	)
}

func (m *Match) stagger() time.Duration {
	if m.cfg.TeardownStagger <= 0 {
		return 0
	}
	return time.Duration(m.rng.Int63n(int64(m.cfg.TeardownStagger) + 1))
}

// StructureDestroyed is the notification that a structure was removed
// from the world. Losing the core on a zone's center restarts that zone's
// spawn cooldown and re-scores it right away.
func (m *Match) StructureDestroyed(at zone.Point, wasCore bool) {
	if !m.active || !wasCore {
		return
	}
	m.coreDestroyed(at)
}

func (m *Match) coreDestroyed(at zone.Point) {
	z, ok := m.ledger.Layout().At(at.X, at.Y)
	if !ok {
		return
	}
	m.ledger.ResetSpawnTimer(z)
	m.evaluate(z)
}

// SweepPlayers forces out every playing player whose team has no core left,
// then checks for domination.
func (m *Match) SweepPlayers() int {
	if !m.active {
		return 0
	}
	n := 0
	for _, id := range m.Players() {
		p := m.players[id]
		if p.State != Assigned || m.world.CoreCount(p.Team) > 0 {
			continue
		}
		if err := m.Leave(id, LeaveEliminated); err == nil {
			n++
		}
	}
	if out, ok := m.outcome.CheckDomination(m.timer.Elapsed()); ok {
		m.conclude(out)
	}
	return n
}
