package zone

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyLayout is returned when a layout has no zones.
	ErrEmptyLayout = errors.New("zone layout is empty")
	// ErrDuplicateZone is returned when two zones share a center coordinate.
	ErrDuplicateZone = errors.New("duplicate zone coordinates")
)

// Layout is the ordered, validated set of zones for one match.
type Layout struct {
	zones    []Zone
	byCenter map[uint64]Zone
	byID     map[int]Zone
}

// NewLayout validates zones and builds the coordinate index. Zone order is
// preserved; it is the iteration order of every sweep.
func NewLayout(zones []Zone) (*Layout, error) {
	if len(zones) == 0 {
		return nil, ErrEmptyLayout
	}
	l := &Layout{
		zones:    make([]Zone, 0, len(zones)),
		byCenter: make(map[uint64]Zone, len(zones)),
		byID:     make(map[int]Zone, len(zones)),
	}
	for _, z := range zones {
		key := z.Center().Pack()
		if prev, ok := l.byCenter[key]; ok {
			return nil, fmt.Errorf("%w: zone %d and zone %d at %s", ErrDuplicateZone, prev.ID(), z.ID(), z.Center())
		}
		l.byCenter[key] = z
		if _, ok := l.byID[z.ID()]; !ok {
			l.byID[z.ID()] = z
		}
		l.zones = append(l.zones, z)
	}
	return l, nil
}

// Zones returns the zones in layout order. The slice must not be modified.
func (l *Layout) Zones() []Zone { return l.zones }

func (l *Layout) Len() int { return len(l.zones) }

// At returns the zone centered exactly on (x, y).
func (l *Layout) At(x, y int32) (Zone, bool) {
	z, ok := l.byCenter[Point{X: x, Y: y}.Pack()]
	return z, ok
}

// ByID returns the first zone carrying id.
func (l *Layout) ByID(id int) (Zone, bool) {
	z, ok := l.byID[id]
	return z, ok
}

// Locate returns the zone whose footprint contains (x, y). When footprints
// overlap the zone with the nearest center wins.
func (l *Layout) Locate(x, y int32) (Zone, bool) {
	var (
		best  Zone
		bestD int64
	)
	for _, z := range l.zones {
		if !z.Contains(x, y) {
			continue
		}
		if d := Distance2(z, x, y); best == nil || d < bestD {
			best, bestD = z, d
		}
	}
	return best, best != nil
}
