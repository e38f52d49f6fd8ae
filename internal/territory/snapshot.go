package territory

import "github.com/hexedgo/server/internal/zone"

// ItemStack is one line of a build-cost manifest.
type ItemStack struct {
	Item   string
	Amount int
	Cost   float64 // per-unit cost weight of the item
}

// Unit is a live mobile unit as seen by a world snapshot.
type Unit struct {
	Team   TeamID
	Pos    zone.Point
	Health float64
	Player bool // controlled by a player; player units exert no pressure
}

// Structure is a player-built static structure as seen by a world snapshot.
type Structure struct {
	Team         TeamID
	Pos          zone.Point
	Block        string
	Core         bool
	Requirements []ItemStack
}

// Value is the build-cost weighted worth of the structure.
func (s Structure) Value() float64 {
	var v float64
	for _, st := range s.Requirements {
		v += float64(st.Amount) * st.Cost
	}
	return v
}

// Snapshot is read-only access to the world for one evaluation. Both
// queries take an inclusive bounding box and may return content outside the
// zone footprint; callers filter with Zone.Contains.
type Snapshot interface {
	UnitsIn(min, max zone.Point) []Unit
	StructuresIn(min, max zone.Point) []Structure
}

// Placement is one block to build for a team.
type Placement struct {
	Block    string
	Team     TeamID
	Rotation uint8 // quarter turns
	Config   any
	Items    map[string]int // initial storage; the core loadout goes here
}
