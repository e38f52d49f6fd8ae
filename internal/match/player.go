package match

import (
	"math/rand"

	"github.com/hexedgo/server/internal/territory"
	"github.com/hexedgo/server/internal/zone"
)

type PlayerState uint8

const (
	Spectator PlayerState = iota
	Assigned
)

func (s PlayerState) String() string {
	if s == Assigned {
		return "assigned"
	}
	return "spectator"
}

// LeaveReason says why a player left their team.
type LeaveReason uint8

const (
	LeaveDisconnect LeaveReason = iota // voluntary
	LeaveSpectate                      // forced by command
	LeaveEliminated                    // forced by the sweep
)

func (r LeaveReason) Forced() bool { return r != LeaveDisconnect }

func (r LeaveReason) String() string {
	switch r {
	case LeaveDisconnect:
		return "disconnect"
	case LeaveSpectate:
		return "spectate"
	case LeaveEliminated:
		return "eliminated"
	}
	return "unknown"
}

type Player struct {
	ID    string
	Name  string
	Team  territory.TeamID
	State PlayerState
	Spawn zone.Zone // zone the base was placed in, nil while spectating
}

// teamAssigner hands out playable teams from a pool shuffled once per match.
type teamAssigner struct {
	pool []territory.TeamID
}

func newTeamAssigner(size int, rng *rand.Rand) *teamAssigner {
	pool := make([]territory.TeamID, size)
	for i := range pool {
		pool[i] = territory.TeamID(i + 1)
	}
	rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	return &teamAssigner{pool: pool}
}

// next returns the first team in pool order that free accepts.
func (a *teamAssigner) next(free func(territory.TeamID) bool) (territory.TeamID, bool) {
	for _, t := range a.pool {
		if free(t) {
			return t, true
		}
	}
	return territory.Derelict, false
}
