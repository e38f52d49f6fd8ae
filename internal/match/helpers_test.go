package match

import (
	"math/rand"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/hexedgo/server/internal/config"
	"github.com/hexedgo/server/internal/core/event"
	"github.com/hexedgo/server/internal/data"
	"github.com/hexedgo/server/internal/territory"
	"github.com/hexedgo/server/internal/world"
	"github.com/hexedgo/server/internal/zone"
)

const testBlocks = `
items: {copper: 1}
blocks:
  - name: core-shard
    core: true
    requirements: [{item: copper, amount: 100}]
  - name: copper-wall
    requirements: [{item: copper, amount: 6}]
`

func testBase() *data.Schematic {
	return &data.Schematic{
		Name: "test",
		Tiles: []data.SchematicTile{
			{X: 0, Y: 0, Block: "copper-wall"},
			{X: 1, Y: 1, Block: "core-shard"},
			{X: 2, Y: 2, Block: "copper-wall", Rotation: data.RotLeft},
		},
		Loadout: []data.LoadoutStack{{Item: "copper", Amount: 300}},
	}
}

func testConfig() config.MatchConfig {
	cfg := config.DefaultMatch()
	cfg.TeardownStagger = 2 * time.Second
	cfg.TeardownDelay = 8 * time.Second
	cfg.SpawnCooldown = 6 * time.Second
	return cfg
}

// gridZones lays out n hexagons of diameter 20 in rows of five.
func gridZones(n int) []zone.Zone {
	zones := make([]zone.Zone, n)
	for i := range zones {
		zones[i] = zone.NewHexagon(i, int32(20+40*(i%5)), int32(20+40*(i/5)), 20)
	}
	return zones
}

type recorder struct {
	bus        *event.Bus
	started    []MatchStarted
	captured   []HexCaptured
	lost       []HexLost
	over       []MatchOver
	eliminated []PlayerEliminated
	spectators []SpectatorAssigned
	assigned   []PlayerAssigned
	boards     []LeaderboardPosted
}

func newRecorder(bus *event.Bus) *recorder {
	r := &recorder{bus: bus}
	event.Subscribe(bus, func(e MatchStarted) { r.started = append(r.started, e) })
	event.Subscribe(bus, func(e HexCaptured) { r.captured = append(r.captured, e) })
	event.Subscribe(bus, func(e HexLost) { r.lost = append(r.lost, e) })
	event.Subscribe(bus, func(e MatchOver) { r.over = append(r.over, e) })
	event.Subscribe(bus, func(e PlayerEliminated) { r.eliminated = append(r.eliminated, e) })
	event.Subscribe(bus, func(e SpectatorAssigned) { r.spectators = append(r.spectators, e) })
	event.Subscribe(bus, func(e PlayerAssigned) { r.assigned = append(r.assigned, e) })
	event.Subscribe(bus, func(e LeaderboardPosted) { r.boards = append(r.boards, e) })
	return r
}

func (r *recorder) flush() { r.bus.Flush() }

// countingWorld counts destructions that actually took effect.
type countingWorld struct {
	*world.World
	destroyed int
}

func (c *countingWorld) Destroy(p zone.Point, team territory.TeamID) (bool, bool) {
	wasCore, ok := c.World.Destroy(p, team)
	if ok {
		c.destroyed++
	}
	return wasCore, ok
}

type fixture struct {
	m   *Match
	w   *world.World
	cw  *countingWorld
	rec *recorder
}

func testSetup(t *testing.T, zones int) Setup {
	t.Helper()
	blocks, err := data.ParseBlockCatalog([]byte(testBlocks))
	if err != nil {
		t.Fatalf("blocks: %v", err)
	}
	return Setup{
		Name:   "test",
		Config: testConfig(),
		Zones:  gridZones(zones),
		Base:   testBase(),
		Blocks: blocks,
		World:  &countingWorld{World: world.New(200, 200, blocks)},
		Bus:    event.NewBus(),
		Rand:   rand.New(rand.NewSource(7)),
		Log:    zaptest.NewLogger(t),
	}
}

func newFixture(t *testing.T, zones int, tweak func(*Setup)) *fixture {
	t.Helper()
	s := testSetup(t, zones)
	if tweak != nil {
		tweak(&s)
	}
	m, err := New(s)
	if err != nil {
		t.Fatalf("new match: %v", err)
	}
	cw := s.World.(*countingWorld)
	return &fixture{m: m, w: cw.World, cw: cw, rec: newRecorder(s.Bus)}
}

// advance moves virtual time and drains due tasks, as the tick systems do.
func (f *fixture) advance(d time.Duration) {
	f.m.Advance(d)
	f.m.RunScheduled()
}

// core places a core for team on the zone center.
func (f *fixture) core(t *testing.T, z zone.Zone, team territory.TeamID) {
	t.Helper()
	if err := f.w.Place(z.Center(), territory.Placement{Block: "core-shard", Team: team}); err != nil {
		t.Fatalf("place core: %v", err)
	}
}

func (f *fixture) zone(t *testing.T, id int) zone.Zone {
	t.Helper()
	z, ok := f.m.Ledger().Layout().ByID(id)
	if !ok {
		t.Fatalf("zone %d missing", id)
	}
	return z
}
