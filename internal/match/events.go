package match

import (
	"time"

	"github.com/hexedgo/server/internal/territory"
	"github.com/hexedgo/server/internal/zone"
)

// Events are emitted on the match's event bus and delivered on the next tick.

type HexCaptured struct {
	Team   territory.TeamID
	Zone   zone.Zone
	Player string // player of the capturing team, empty if none
	At     time.Duration
}

type HexLost struct {
	Team territory.TeamID
	Zone zone.Zone
	At   time.Duration
}

// MatchStarted is the first event of every match.
type MatchStarted struct {
	Name     string
	Zones    int
	Duration time.Duration
}

type MatchOver struct {
	Outcome
}

type PlayerAssigned struct {
	Player string
	Name   string
	Team   territory.TeamID
	Zone   zone.Zone
}

type PlayerEliminated struct {
	Player string
	Team   territory.TeamID
	Reason LeaveReason
}

// SpectatorAssigned is sent when a joining player could not be placed.
type SpectatorAssigned struct {
	Player string
	Cause  error
}

type LeaderboardPosted struct {
	Standings []territory.Standing
	Remaining time.Duration
}
