package territory

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/hexedgo/server/internal/zone"
)

// ErrZoneNotFound is returned by lookups against untracked zones.
var ErrZoneNotFound = errors.New("zone not found")

// Clock reports virtual time since engine start.
type Clock interface {
	Now() time.Duration
}

// Transition is the outcome of one zone evaluation. Derelict means no controller.
type Transition struct {
	Zone zone.Zone
	From TeamID
	To   TeamID
}

func (t Transition) Changed() bool { return t.From != t.To }

// Standing is one leaderboard row.
type Standing struct {
	Team  TeamID
	Zones int
}

type zoneState struct {
	zone       zone.Zone
	controller TeamID
	progress   Progress
	resetAt    time.Duration
	wasReset   bool
}

// Ledger is the system of record for zone ownership: controller, progress
// and spawn timer per zone, plus the dying set. Every mutation of a zone is
// committed under one lock so readers never see a half-updated zone.
type Ledger struct {
	mu       sync.RWMutex
	layout   *zone.Layout
	calc     Calculator
	snap     Snapshot
	clock    Clock
	cooldown time.Duration
	states   map[uint64]*zoneState
	dying    map[TeamID]struct{}
}

func NewLedger(layout *zone.Layout, calc Calculator, snap Snapshot, clock Clock, cooldown time.Duration) *Ledger {
	l := &Ledger{
		layout:   layout,
		calc:     calc,
		snap:     snap,
		clock:    clock,
		cooldown: cooldown,
		states:   make(map[uint64]*zoneState, layout.Len()),
		dying:    make(map[TeamID]struct{}),
	}
	for _, z := range layout.Zones() {
		l.states[z.Center().Pack()] = &zoneState{zone: z, progress: make(Progress, 4)}
	}
	return l
}

func (l *Ledger) Layout() *zone.Layout { return l.layout }

// Requirement is the capture requirement R in raw pressure units.
func (l *Ledger) Requirement() float64 { return l.calc.Requirement() }

func (l *Ledger) state(z zone.Zone) (*zoneState, bool) {
	if z == nil {
		return nil, false
	}
	st, ok := l.states[z.Center().Pack()]
	if !ok || st.zone != z {
		return nil, false
	}
	return st, true
}

// UpdateProgress recomputes the zone's progress from the snapshot and
// commits the resulting controller. It reports false for untracked zones.
func (l *Ledger) UpdateProgress(z zone.Zone) (Transition, bool) {
	l.mu.RLock()
	_, ok := l.state(z)
	l.mu.RUnlock()
	if !ok {
		return Transition{Zone: z}, false
	}

	fresh := make(Progress, 4)
	l.calc.Calculate(z, l.snap, fresh)

	l.mu.Lock()
	defer l.mu.Unlock()
	st, _ := l.state(z)
	from := st.controller
	st.progress = fresh
	st.controller = l.elect(from, fresh)
	return Transition{Zone: z, From: from, To: st.controller}, true
}

// elect picks the controller from normalized progress in a single pass,
// tracking the maximum and every team tied at it. Dying teams may only keep
// a zone they already hold. The incumbent keeps the zone on a tie; otherwise
// the lowest TeamID among the tied teams wins. Nobody controls the zone
// unless the maximum reaches the requirement.
func (l *Ledger) elect(incumbent TeamID, progress Progress) TeamID {
	best := -1.0
	tied := make([]TeamID, 0, 2)
	for team, p := range progress {
		if !team.Playable() {
			continue
		}
		if _, dying := l.dying[team]; dying && team != incumbent {
			continue
		}
		switch {
		case p > best:
			best = p
			tied = append(tied[:0], team)
		case p == best:
			tied = append(tied, team)
		}
	}
	if len(tied) == 0 || best < 1 {
		return Derelict
	}
	winner := tied[0]
	for _, t := range tied {
		if t == incumbent {
			return incumbent
		}
		if t < winner {
			winner = t
		}
	}
	return winner
}

// Controller returns the zone's controller, Derelict when it has none.
// ok is false for untracked zones.
func (l *Ledger) Controller(z zone.Zone) (TeamID, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	st, ok := l.state(z)
	if !ok {
		return Derelict, false
	}
	return st.controller, true
}

// Progress returns the team's progress as a percentage. For the controller,
// or when nobody controls the zone, it is the team's own normalized progress.
// For a challenger it is relative to the controller: raw(team)/raw(controller)*100.
func (l *Ledger) Progress(z zone.Zone, team TeamID) (float64, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	st, ok := l.state(z)
	if !ok {
		return 0, false
	}
	own := st.progress[team]
	if c := st.controller; c.Playable() && c != team {
		if cp := st.progress[c]; cp > 0 {
			return own / cp * 100, true
		}
	}
	return own * 100, true
}

// Raw returns the team's raw pressure in the zone.
func (l *Ledger) Raw(z zone.Zone, team TeamID) (float64, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	st, ok := l.state(z)
	if !ok {
		return 0, false
	}
	return st.progress[team] * l.calc.Requirement(), true
}

// Normalized returns a copy of the zone's normalized progress table.
func (l *Ledger) Normalized(z zone.Zone) (Progress, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	st, ok := l.state(z)
	if !ok {
		return nil, false
	}
	out := make(Progress, len(st.progress))
	for k, v := range st.progress {
		out[k] = v
	}
	return out, true
}

// IsAvailable reports whether the zone has no controller and its spawn
// cooldown has elapsed since the last reset.
func (l *Ledger) IsAvailable(z zone.Zone) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	st, ok := l.state(z)
	if !ok || st.controller.Playable() {
		return false
	}
	return !st.wasReset || l.sinceReset(st) >= l.cooldown
}

func (l *Ledger) sinceReset(st *zoneState) time.Duration {
	d := l.clock.Now() - st.resetAt
	if d < 0 {
		return 0
	}
	return d
}

// ResetSpawnTimer restarts the zone's spawn cooldown.
func (l *Ledger) ResetSpawnTimer(z zone.Zone) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	st, ok := l.state(z)
	if !ok {
		return false
	}
	st.resetAt = l.clock.Now()
	st.wasReset = true
	return true
}

// SpawnTimer returns how long the zone has been vacant-eligible since its
// last reset, and whether it was ever reset.
func (l *Ledger) SpawnTimer(z zone.Zone) (elapsed time.Duration, reset bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	st, ok := l.state(z)
	if !ok || !st.wasReset {
		return 0, false
	}
	return l.sinceReset(st), true
}

// ZoneAt resolves a zone from its exact center coordinate.
func (l *Ledger) ZoneAt(x, y int32) (zone.Zone, bool) {
	return l.layout.At(x, y)
}

// Vacant returns, in layout order, the zones that have no controller and
// are available for spawning. The result is a snapshot; nothing is reserved.
func (l *Ledger) Vacant() []zone.Zone {
	var out []zone.Zone
	for _, z := range l.layout.Zones() {
		if l.IsAvailable(z) {
			out = append(out, z)
		}
	}
	return out
}

// Controlled returns the zones controlled by team in layout order.
func (l *Ledger) Controlled(team TeamID) []zone.Zone {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []zone.Zone
	if !team.Playable() {
		return out
	}
	for _, z := range l.layout.Zones() {
		if l.states[z.Center().Pack()].controller == team {
			out = append(out, z)
		}
	}
	return out
}

// Counts returns controlled-zone counts for every team holding at least one zone.
func (l *Ledger) Counts() map[TeamID]int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	counts := make(map[TeamID]int)
	for _, st := range l.states {
		if st.controller.Playable() {
			counts[st.controller]++
		}
	}
	return counts
}

// Leaderboard returns standings ordered by zone count descending, then TeamID ascending.
func (l *Ledger) Leaderboard() []Standing {
	counts := l.Counts()
	out := make([]Standing, 0, len(counts))
	for team, n := range counts {
		out = append(out, Standing{Team: team, Zones: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Zones != out[j].Zones {
			return out[i].Zones > out[j].Zones
		}
		return out[i].Team < out[j].Team
	})
	return out
}

// SetDying adds or removes a team from the dying set. Adding twice is a no-op.
func (l *Ledger) SetDying(team TeamID, dying bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if dying {
		l.dying[team] = struct{}{}
	} else {
		delete(l.dying, team)
	}
}

func (l *Ledger) IsDying(team TeamID) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.dying[team]
	return ok
}
