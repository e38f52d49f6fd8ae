package territory

import (
	"time"

	"github.com/hexedgo/server/internal/zone"
)

type fakeSnapshot struct {
	units      []Unit
	structures []Structure
}

func (f *fakeSnapshot) UnitsIn(min, max zone.Point) []Unit {
	var out []Unit
	for _, u := range f.units {
		if inBox(u.Pos, min, max) {
			out = append(out, u)
		}
	}
	return out
}

func (f *fakeSnapshot) StructuresIn(min, max zone.Point) []Structure {
	var out []Structure
	for _, s := range f.structures {
		if inBox(s.Pos, min, max) {
			out = append(out, s)
		}
	}
	return out
}

func inBox(p, min, max zone.Point) bool {
	return p.X >= min.X && p.X <= max.X && p.Y >= min.Y && p.Y <= max.Y
}

type fakeClock struct{ now time.Duration }

func (c *fakeClock) Now() time.Duration { return c.now }

// fixedCalculator returns preset raw pressure per zone id.
type fixedCalculator struct {
	requirement float64
	raw         map[int]map[TeamID]float64
}

func (f *fixedCalculator) Requirement() float64 { return f.requirement }

func (f *fixedCalculator) Calculate(z zone.Zone, _ Snapshot, into Progress) {
	clear(into)
	for team, raw := range f.raw[z.ID()] {
		into[team] = raw / f.requirement
	}
}

// wall is a structure worth exactly v with a single cost-1 item.
func wall(team TeamID, x, y int32, v int) Structure {
	return Structure{
		Team:         team,
		Pos:          zone.Point{X: x, Y: y},
		Block:        "wall",
		Requirements: []ItemStack{{Item: "scrap", Amount: v, Cost: 1}},
	}
}
