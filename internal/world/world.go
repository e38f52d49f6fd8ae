// Package world is the in-memory block and unit map a hexed match plays on.
// It is backed by the ECS: buildings and units are entities whose
// destruction is deferred to the cleanup phase. Accessed only from the game
// loop goroutine, so nothing here locks.
package world

import (
	"errors"
	"fmt"
	"sort"

	"github.com/hexedgo/server/internal/core/ecs"
	"github.com/hexedgo/server/internal/data"
	"github.com/hexedgo/server/internal/territory"
	"github.com/hexedgo/server/internal/zone"
)

var (
	ErrOutOfBounds  = errors.New("tile out of bounds")
	ErrOccupied     = errors.New("tile occupied")
	ErrUnknownBlock = errors.New("unknown block")
)

type World struct {
	width  int32
	height int32
	blocks *data.BlockCatalog

	ecs       *ecs.World
	owners    *ecs.Store[Owner]
	positions *ecs.Store[Position]
	buildings *ecs.Store[Building]
	mobiles   *ecs.Store[Mobile]

	tiles   map[uint64]ecs.EntityID // tile -> building
	terrain map[uint64]string       // environment blocks nobody owns
	units   *Grid
}

func New(width, height int32, blocks *data.BlockCatalog) *World {
	w := &World{
		width:     width,
		height:    height,
		blocks:    blocks,
		ecs:       ecs.NewWorld(),
		owners:    ecs.NewStore[Owner](),
		positions: ecs.NewStore[Position](),
		buildings: ecs.NewStore[Building](),
		mobiles:   ecs.NewStore[Mobile](),
		tiles:     make(map[uint64]ecs.EntityID, 1024),
		terrain:   make(map[uint64]string),
		units:     NewGrid(),
	}
	w.ecs.Register(w.owners)
	w.ecs.Register(w.positions)
	w.ecs.Register(w.buildings)
	w.ecs.Register(w.mobiles)
	return w
}

// FromLayout builds a world sized to the layout with its walls in place.
// Walls outside the map are skipped.
func FromLayout(l *data.Layout, blocks *data.BlockCatalog) *World {
	w := New(l.Width, l.Height, blocks)
	for _, wall := range l.Walls {
		w.SetTerrain(zone.Point{X: wall.X, Y: wall.Y}, wall.Block)
	}
	return w
}

// ECS exposes the entity world so the cleanup system can flush it.
func (w *World) ECS() *ecs.World { return w.ecs }

func (w *World) Width() int32  { return w.width }
func (w *World) Height() int32 { return w.height }

func (w *World) InBounds(p zone.Point) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < w.width && p.Y < w.height
}

func (w *World) building(p zone.Point) (ecs.EntityID, *Building, bool) {
	id, ok := w.tiles[p.Pack()]
	if !ok || !w.ecs.Alive(id) {
		return 0, nil, false
	}
	b, ok := w.buildings.Get(id)
	return id, b, ok
}

// BlockAt returns the name of the building or terrain on a tile. ok is
// false for empty (air) tiles.
func (w *World) BlockAt(p zone.Point) (string, bool) {
	if _, b, ok := w.building(p); ok {
		return b.Block, true
	}
	name, ok := w.terrain[p.Pack()]
	return name, ok
}

// SetTerrain places an ownerless environment block. An empty name clears it.
func (w *World) SetTerrain(p zone.Point, block string) bool {
	if !w.InBounds(p) {
		return false
	}
	if block == "" {
		delete(w.terrain, p.Pack())
	} else {
		w.terrain[p.Pack()] = block
	}
	return true
}

// ClearTile removes whatever occupies the tile, building or terrain.
func (w *World) ClearTile(p zone.Point) {
	w.removeBuilding(p)
	delete(w.terrain, p.Pack())
}

func (w *World) removeBuilding(p zone.Point) {
	if id, ok := w.tiles[p.Pack()]; ok {
		w.ecs.MarkForDestruction(id)
		delete(w.tiles, p.Pack())
	}
}

// Place builds a block for a team on an empty tile.
func (w *World) Place(p zone.Point, pl territory.Placement) error {
	if !w.InBounds(p) {
		return fmt.Errorf("place %s at %s: %w", pl.Block, p, ErrOutOfBounds)
	}
	def := w.blocks.Get(pl.Block)
	if def == nil {
		return fmt.Errorf("place %s at %s: %w", pl.Block, p, ErrUnknownBlock)
	}
	if name, taken := w.BlockAt(p); taken {
		return fmt.Errorf("place %s at %s: %w by %s", pl.Block, p, ErrOccupied, name)
	}

	id := w.ecs.CreateEntity()
	b := &Building{
		Block:        def.Name,
		Rotation:     pl.Rotation % 4,
		Config:       pl.Config,
		Core:         def.Core,
		Requirements: w.blocks.Requirements(def.Name),
		Storage:      NewStorage(),
	}
	for item, n := range pl.Items {
		b.Storage.Add(item, n)
	}
	w.owners.Set(id, &Owner{Team: pl.Team})
	w.positions.Set(id, &Position{Point: p})
	w.buildings.Set(id, b)
	w.tiles[p.Pack()] = id
	return nil
}

// Building returns the live building on a tile.
func (w *World) Building(p zone.Point) (*Building, territory.TeamID, bool) {
	id, b, ok := w.building(p)
	if !ok {
		return nil, territory.Derelict, false
	}
	o, _ := w.owners.Get(id)
	return b, o.Team, true
}

// Destroy removes the building at p if team still owns it. wasCore reports
// whether it was a core; ok is false when the tile no longer holds a
// building of that team.
func (w *World) Destroy(p zone.Point, team territory.TeamID) (wasCore, ok bool) {
	id, b, live := w.building(p)
	if !live {
		return false, false
	}
	if o, _ := w.owners.Get(id); o == nil || o.Team != team {
		return false, false
	}
	w.removeBuilding(p)
	return b.Core, true
}

// StructuresOf returns the tiles of every building owned by team, ordered
// by entity id.
func (w *World) StructuresOf(team territory.TeamID) []zone.Point {
	ids := make([]ecs.EntityID, 0, 16)
	ecs.Join(w.owners, w.buildings, func(id ecs.EntityID, o *Owner, _ *Building) {
		if o.Team == team && w.ecs.Alive(id) {
			ids = append(ids, id)
		}
	})
	sortIDs(ids)
	out := make([]zone.Point, 0, len(ids))
	for _, id := range ids {
		pos, _ := w.positions.Get(id)
		out = append(out, pos.Point)
	}
	return out
}

// CoreCount returns how many live cores team owns.
func (w *World) CoreCount(team territory.TeamID) int {
	n := 0
	ecs.Join(w.owners, w.buildings, func(id ecs.EntityID, o *Owner, b *Building) {
		if b.Core && o.Team == team && w.ecs.Alive(id) {
			n++
		}
	})
	return n
}

// SpawnUnit creates a unit. playerID is empty for non-player units.
func (w *World) SpawnUnit(team territory.TeamID, p zone.Point, health float64, playerID string) ecs.EntityID {
	id := w.ecs.CreateEntity()
	w.owners.Set(id, &Owner{Team: team})
	w.positions.Set(id, &Position{Point: p})
	w.mobiles.Set(id, &Mobile{Health: health, PlayerID: playerID})
	w.units.Add(id, p.X, p.Y)
	return id
}

// MoveUnit relocates a live unit.
func (w *World) MoveUnit(id ecs.EntityID, to zone.Point) bool {
	pos, ok := w.positions.Get(id)
	if !ok || !w.mobiles.Has(id) || !w.ecs.Alive(id) {
		return false
	}
	w.units.Move(id, pos.X, pos.Y, to.X, to.Y)
	pos.Point = to
	return true
}

// KillUnit queues a unit for destruction and drops it from spatial queries.
func (w *World) KillUnit(id ecs.EntityID) bool {
	pos, ok := w.positions.Get(id)
	if !ok || !w.mobiles.Has(id) || !w.ecs.Alive(id) {
		return false
	}
	w.units.Remove(id, pos.X, pos.Y)
	w.ecs.MarkForDestruction(id)
	return true
}

// UnitsOf returns the live units of team in entity id order.
func (w *World) UnitsOf(team territory.TeamID) []ecs.EntityID {
	ids := make([]ecs.EntityID, 0, 8)
	w.mobiles.Each(func(id ecs.EntityID, _ *Mobile) {
		if o, ok := w.owners.Get(id); ok && o.Team == team && w.ecs.Alive(id) {
			ids = append(ids, id)
		}
	})
	sortIDs(ids)
	return ids
}

// KillTeamUnit kills id only while it is alive and still owned by team.
func (w *World) KillTeamUnit(id ecs.EntityID, team territory.TeamID) bool {
	o, ok := w.owners.Get(id)
	if !ok || o.Team != team {
		return false
	}
	return w.KillUnit(id)
}

// UnitsIn implements territory.Snapshot. Results are ordered by entity id
// so repeated evaluations sum in the same order.
func (w *World) UnitsIn(min, max zone.Point) []territory.Unit {
	ids := w.units.Within(min.X, min.Y, max.X, max.Y)
	sortIDs(ids)
	out := make([]territory.Unit, 0, len(ids))
	for _, id := range ids {
		if !w.ecs.Alive(id) {
			continue
		}
		pos, _ := w.positions.Get(id)
		if pos.X < min.X || pos.X > max.X || pos.Y < min.Y || pos.Y > max.Y {
			continue
		}
		m, _ := w.mobiles.Get(id)
		o, _ := w.owners.Get(id)
		out = append(out, territory.Unit{
			Team:   o.Team,
			Pos:    pos.Point,
			Health: m.Health,
			Player: m.IsPlayer(),
		})
	}
	return out
}

// StructuresIn implements territory.Snapshot, walking the box row by row.
func (w *World) StructuresIn(min, max zone.Point) []territory.Structure {
	var out []territory.Structure
	for y := max32(min.Y, 0); y <= min32(max.Y, w.height-1); y++ {
		for x := max32(min.X, 0); x <= min32(max.X, w.width-1); x++ {
			p := zone.Point{X: x, Y: y}
			id, b, ok := w.building(p)
			if !ok {
				continue
			}
			o, _ := w.owners.Get(id)
			out = append(out, territory.Structure{
				Team:         o.Team,
				Pos:          p,
				Block:        b.Block,
				Core:         b.Core,
				Requirements: b.Requirements,
			})
		}
	}
	return out
}

// Buildings returns the number of live buildings.
func (w *World) Buildings() int {
	return len(w.tiles)
}

func sortIDs(ids []ecs.EntityID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}

func min32(a, b int32) int32 {
	if a < b {
		return a
	}
	return b
}

func max32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}
