package scripting

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/hexedgo/server/internal/zone"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	gen := filepath.Join(dir, "generators")
	if err := os.MkdirAll(gen, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(gen, "test.lua"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestAnukeGenerator(t *testing.T) {
	e, err := NewEngine("../../scripts", zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	defer e.Close()

	l, err := e.Generate("anuke", 42)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if l.Width != 516 || l.Height != 516 {
		t.Fatalf("size = %dx%d", l.Width, l.Height)
	}
	zones, err := l.Zones()
	if err != nil {
		t.Fatalf("zones: %v", err)
	}
	if len(zones) != 56 {
		t.Fatalf("zones = %d, want 56", len(zones))
	}
	first := zones[0]
	if first.Center() != (zone.Point{X: 39, Y: 39}) || first.Shape() != zone.ShapeHexagon {
		t.Fatalf("first zone = %v", first)
	}
	if _, err := zone.NewLayout(zones); err != nil {
		t.Fatalf("layout invalid: %v", err)
	}
	for _, w := range l.Walls {
		if w.X < 0 || w.Y < 0 || w.X >= l.Width || w.Y >= l.Height {
			t.Fatalf("wall out of bounds: %+v", w)
		}
	}
}

func TestGenerateUnknown(t *testing.T) {
	e, err := NewEngine(t.TempDir(), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()
	if len(e.Names()) != 0 {
		t.Fatalf("names = %v", e.Names())
	}
	if _, err := e.Generate("missing", 1); !errors.Is(err, ErrGeneratorNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestGenerateCustomScript(t *testing.T) {
	dir := writeScript(t, `
register_generator("pair", function(seed)
  return {
    width = 100, height = 50,
    zones = {
      { id = 0, x = 25, y = 25, shape = "rect", width = 40, height = 40 },
      { id = 1, x = 75, y = 25, diameter = 30 },
    },
    walls = { { x = 50, y = seed, block = "stone-wall" } },
  }
end)
register_generator("broken", function(seed) error("no map today") end)
register_generator("scalar", function(seed) return 7 end)
`)
	e, err := NewEngine(dir, zaptest.NewLogger(t))
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()

	if got := e.Names(); len(got) != 3 || got[0] != "broken" {
		t.Fatalf("names = %v", got)
	}
	l, err := e.Generate("pair", 9)
	if err != nil {
		t.Fatalf("pair: %v", err)
	}
	if l.Name != "pair" || len(l.Entries) != 2 || l.Entries[0].Shape != "rect" || l.Walls[0].Y != 9 {
		t.Fatalf("layout = %+v", l)
	}
	if _, err := e.Generate("broken", 1); err == nil || !strings.Contains(err.Error(), "no map today") {
		t.Fatalf("broken: %v", err)
	}
	if _, err := e.Generate("scalar", 1); err == nil {
		t.Fatal("scalar result accepted")
	}
}

func TestScriptSyntaxErrorFailsLoad(t *testing.T) {
	dir := writeScript(t, "register_generator(")
	if _, err := NewEngine(dir, nil); err == nil {
		t.Fatal("expected load error")
	}
}
