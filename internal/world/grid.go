package world

import "github.com/hexedgo/server/internal/core/ecs"

const cellSize = 16

type cellKey struct {
	cx int32
	cy int32
}

func toCellCoord(v int32) int32 {
	if v < 0 {
		return (v - cellSize + 1) / cellSize
	}
	return v / cellSize
}

// Grid buckets unit entities into square cells so box queries touch only
// the cells overlapping the box. Accessed only from the game loop goroutine.
type Grid struct {
	cells map[cellKey]map[ecs.EntityID]struct{}
}

func NewGrid() *Grid {
	return &Grid{cells: make(map[cellKey]map[ecs.EntityID]struct{})}
}

func (g *Grid) key(x, y int32) cellKey {
	return cellKey{cx: toCellCoord(x), cy: toCellCoord(y)}
}

func (g *Grid) Add(id ecs.EntityID, x, y int32) {
	k := g.key(x, y)
	cell := g.cells[k]
	if cell == nil {
		cell = make(map[ecs.EntityID]struct{})
		g.cells[k] = cell
	}
	cell[id] = struct{}{}
}

func (g *Grid) Remove(id ecs.EntityID, x, y int32) {
	k := g.key(x, y)
	if cell := g.cells[k]; cell != nil {
		delete(cell, id)
		if len(cell) == 0 {
			delete(g.cells, k)
		}
	}
}

// Move rebuckets an entity when its position changes cell.
func (g *Grid) Move(id ecs.EntityID, oldX, oldY, newX, newY int32) {
	if g.key(oldX, oldY) == g.key(newX, newY) {
		return
	}
	g.Remove(id, oldX, oldY)
	g.Add(id, newX, newY)
}

// Within returns every entity in a cell overlapping the inclusive box. The
// caller filters by exact position.
func (g *Grid) Within(minX, minY, maxX, maxY int32) []ecs.EntityID {
	var out []ecs.EntityID
	for cx := toCellCoord(minX); cx <= toCellCoord(maxX); cx++ {
		for cy := toCellCoord(minY); cy <= toCellCoord(maxY); cy++ {
			for id := range g.cells[cellKey{cx: cx, cy: cy}] {
				out = append(out, id)
			}
		}
	}
	return out
}
