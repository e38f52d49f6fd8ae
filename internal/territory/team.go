// Package territory scores capture pressure and keeps the per-zone
// ownership ledger of a hexed match.
package territory

import "strconv"

// TeamID identifies a team. Derelict is the sentinel for spectators and
// unowned content; it never controls a zone.
type TeamID uint8

const Derelict TeamID = 0

// Playable reports whether the team can own zones.
func (t TeamID) Playable() bool { return t != Derelict }

func (t TeamID) String() string {
	if t == Derelict {
		return "derelict"
	}
	return "team-" + strconv.Itoa(int(t))
}
