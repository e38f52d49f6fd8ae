package territory

import (
	"fmt"

	"github.com/hexedgo/server/internal/zone"
)

// Progress maps teams to capture pressure normalized against the capture
// requirement: 1.0 means the team meets the requirement.
type Progress map[TeamID]float64

// Calculator scores one zone. Calculate clears into and refills it; it does
// not touch controller state.
type Calculator interface {
	Calculate(z zone.Zone, snap Snapshot, into Progress)
	Requirement() float64
}

// PressureCalculator implements the hexed accounting rule:
//   - non-player units inside the zone add health/10 to their team;
//   - player-built structures inside the zone add their build-cost value;
//   - a core sitting on the zone center adds the full requirement instead.
type PressureCalculator struct {
	requirement float64
}

func NewPressureCalculator(requirement float64) (*PressureCalculator, error) {
	if requirement <= 0 {
		return nil, fmt.Errorf("capture requirement must be positive, got %v", requirement)
	}
	return &PressureCalculator{requirement: requirement}, nil
}

func (c *PressureCalculator) Requirement() float64 { return c.requirement }

func (c *PressureCalculator) Calculate(z zone.Zone, snap Snapshot, into Progress) {
	clear(into)
	min, max := z.Bounds()
	center := z.Center()

	for _, u := range snap.UnitsIn(min, max) {
		if u.Player || !z.Contains(u.Pos.X, u.Pos.Y) {
			continue
		}
		into[u.Team] += u.Health / 10
	}

	for _, s := range snap.StructuresIn(min, max) {
		if !z.Contains(s.Pos.X, s.Pos.Y) {
			continue
		}
		if s.Core && s.Pos == center {
			into[s.Team] += c.requirement
			continue
		}
		into[s.Team] += s.Value()
	}

	for team, raw := range into {
		into[team] = raw / c.requirement
	}
}
