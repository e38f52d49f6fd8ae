package world

import (
	"errors"
	"testing"

	"github.com/hexedgo/server/internal/data"
	"github.com/hexedgo/server/internal/territory"
	"github.com/hexedgo/server/internal/zone"
)

const testBlocks = `
items: {copper: 1, lead: 2}
blocks:
  - name: core-shard
    core: true
    requirements: [{item: copper, amount: 100}]
  - name: copper-wall
    requirements: [{item: copper, amount: 6}]
  - name: duo
    requirements: [{item: copper, amount: 10}, {item: lead, amount: 5}]
`

func newTestWorld(t *testing.T) *World {
	t.Helper()
	blocks, err := data.ParseBlockCatalog([]byte(testBlocks))
	if err != nil {
		t.Fatalf("blocks: %v", err)
	}
	return New(100, 100, blocks)
}

func pt(x, y int32) zone.Point { return zone.Point{X: x, Y: y} }

func TestPlaceAndBlockAt(t *testing.T) {
	w := newTestWorld(t)
	if err := w.Place(pt(5, 5), territory.Placement{Block: "duo", Team: 2, Rotation: 5}); err != nil {
		t.Fatalf("place: %v", err)
	}
	if name, ok := w.BlockAt(pt(5, 5)); !ok || name != "duo" {
		t.Fatalf("BlockAt = %q %v", name, ok)
	}
	b, team, ok := w.Building(pt(5, 5))
	if !ok || team != 2 || b.Rotation != 1 {
		t.Fatalf("building = %+v team %v", b, team)
	}

	cases := []struct {
		p    zone.Point
		pl   territory.Placement
		want error
	}{
		{pt(5, 5), territory.Placement{Block: "duo", Team: 3}, ErrOccupied},
		{pt(-1, 5), territory.Placement{Block: "duo", Team: 3}, ErrOutOfBounds},
		{pt(100, 5), territory.Placement{Block: "duo", Team: 3}, ErrOutOfBounds},
		{pt(6, 6), territory.Placement{Block: "silo", Team: 3}, ErrUnknownBlock},
	}
	for _, c := range cases {
		if err := w.Place(c.p, c.pl); !errors.Is(err, c.want) {
			t.Errorf("place %s at %s: err = %v, want %v", c.pl.Block, c.p, err, c.want)
		}
	}
}

func TestTerrainBlocksPlacementUntilCleared(t *testing.T) {
	w := newTestWorld(t)
	w.SetTerrain(pt(1, 1), "stone-wall")
	if err := w.Place(pt(1, 1), territory.Placement{Block: "copper-wall", Team: 1}); !errors.Is(err, ErrOccupied) {
		t.Fatalf("err = %v", err)
	}
	w.ClearTile(pt(1, 1))
	if _, ok := w.BlockAt(pt(1, 1)); ok {
		t.Fatal("tile should be air")
	}
	if err := w.Place(pt(1, 1), territory.Placement{Block: "copper-wall", Team: 1}); err != nil {
		t.Fatalf("place after clear: %v", err)
	}
}

func TestDestroyRevalidatesOwner(t *testing.T) {
	w := newTestWorld(t)
	w.Place(pt(10, 10), territory.Placement{Block: "core-shard", Team: 1, Items: map[string]int{"copper": 300}})
	b, _, _ := w.Building(pt(10, 10))
	if b.Storage.Count("copper") != 300 {
		t.Fatalf("loadout copper = %d", b.Storage.Count("copper"))
	}
	if _, ok := w.Destroy(pt(10, 10), 2); ok {
		t.Fatal("wrong team destroyed the core")
	}
	if w.CoreCount(1) != 1 {
		t.Fatalf("core count = %d", w.CoreCount(1))
	}
	wasCore, ok := w.Destroy(pt(10, 10), 1)
	if !ok || !wasCore {
		t.Fatalf("destroy = %v %v", wasCore, ok)
	}
	if w.CoreCount(1) != 0 || w.Buildings() != 0 {
		t.Fatal("core still counted after destroy")
	}
	if _, ok := w.Destroy(pt(10, 10), 1); ok {
		t.Fatal("second destroy should be a no-op")
	}
	if w.ECS().Pending() != 1 {
		t.Fatalf("pending = %d", w.ECS().Pending())
	}
	w.ECS().FlushDestroyQueue()
	if w.ECS().Pending() != 0 {
		t.Fatal("queue not flushed")
	}
}

func TestStructuresOfAndSnapshot(t *testing.T) {
	w := newTestWorld(t)
	w.Place(pt(3, 3), territory.Placement{Block: "copper-wall", Team: 1})
	w.Place(pt(1, 2), territory.Placement{Block: "duo", Team: 1})
	w.Place(pt(2, 2), territory.Placement{Block: "duo", Team: 2})

	got := w.StructuresOf(1)
	if len(got) != 2 || got[0] != pt(3, 3) || got[1] != pt(1, 2) {
		t.Fatalf("StructuresOf = %v", got)
	}

	ss := w.StructuresIn(pt(0, 0), pt(2, 2))
	if len(ss) != 2 || ss[0].Pos != pt(1, 2) || ss[1].Team != 2 {
		t.Fatalf("StructuresIn = %+v", ss)
	}
	if v := ss[0].Value(); v != 20 {
		t.Fatalf("duo value = %v, want 20", v)
	}
}

func TestUnitsInFiltersAndOrders(t *testing.T) {
	w := newTestWorld(t)
	a := w.SpawnUnit(1, pt(40, 40), 100, "")
	w.SpawnUnit(2, pt(41, 40), 50, "p1")
	far := w.SpawnUnit(3, pt(90, 90), 10, "")

	units := w.UnitsIn(pt(30, 30), pt(50, 50))
	if len(units) != 2 || units[0].Team != 1 || !units[1].Player {
		t.Fatalf("units = %+v", units)
	}

	if !w.MoveUnit(far, pt(35, 35)) {
		t.Fatal("move failed")
	}
	if n := len(w.UnitsIn(pt(30, 30), pt(50, 50))); n != 3 {
		t.Fatalf("after move: %d units", n)
	}

	w.KillUnit(a)
	if w.KillUnit(a) {
		t.Fatal("killing twice should fail")
	}
	if n := len(w.UnitsIn(pt(30, 30), pt(50, 50))); n != 2 {
		t.Fatalf("after kill: %d units", n)
	}
}

func TestUnitsOfAndKillTeamUnit(t *testing.T) {
	w := newTestWorld(t)
	a := w.SpawnUnit(4, pt(10, 10), 100, "")
	w.SpawnUnit(5, pt(11, 10), 100, "")
	b := w.SpawnUnit(4, pt(60, 60), 100, "p1")

	if got := w.UnitsOf(4); len(got) != 2 || got[0] != a || got[1] != b {
		t.Fatalf("units of team 4 = %v", got)
	}
	if w.KillTeamUnit(a, 5) {
		t.Fatal("killed a unit of another team")
	}
	if !w.KillTeamUnit(a, 4) || w.KillTeamUnit(a, 4) {
		t.Fatal("kill should succeed exactly once")
	}
	if got := w.UnitsOf(4); len(got) != 1 || got[0] != b {
		t.Fatalf("after kill: %v", got)
	}
}

func TestGridNegativeCells(t *testing.T) {
	g := NewGrid()
	g.Add(1, -1, -1)
	g.Add(2, 15, 15)
	if got := g.Within(-1, -1, -1, -1); len(got) != 1 || got[0] != 1 {
		t.Fatalf("within = %v", got)
	}
	g.Remove(1, -1, -1)
	if len(g.Within(-20, -20, 0, 0)) != 1 {
		t.Fatal("remove did not clear the cell")
	}
}

func TestStorage(t *testing.T) {
	s := NewStorage()
	s.Add("lead", 5)
	s.Add("copper", 3)
	s.Add("copper", -1)
	if got := s.Remove("copper", 10); got != 3 {
		t.Fatalf("removed %d", got)
	}
	if s.Size() != 1 || s.Items()[0] != "lead" {
		t.Fatalf("items = %v", s.Items())
	}
}

func TestFromLayoutSkipsOutOfBoundsWalls(t *testing.T) {
	blocks, _ := data.ParseBlockCatalog([]byte(testBlocks))
	l := &data.Layout{Width: 10, Height: 10, Walls: []data.WallEntry{
		{X: 1, Y: 1, Block: "stone-wall"},
		{X: 20, Y: 1, Block: "stone-wall"},
	}}
	w := FromLayout(l, blocks)
	if name, ok := w.BlockAt(pt(1, 1)); !ok || name != "stone-wall" {
		t.Fatalf("wall = %q %v", name, ok)
	}
	if _, ok := w.BlockAt(pt(20, 1)); ok {
		t.Fatal("out of bounds wall placed")
	}
}
