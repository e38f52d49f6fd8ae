package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/hexedgo/server/internal/data"
	"github.com/hexedgo/server/internal/scripting"
)

func TestRenderRoundTripsThroughLayoutDir(t *testing.T) {
	eng, err := scripting.NewEngine("../../scripts", zaptest.NewLogger(t))
	if err != nil {
		t.Fatal(err)
	}
	defer eng.Close()

	l, err := eng.Generate("anuke", 11)
	if err != nil {
		t.Fatal(err)
	}
	l.Name = "pinned"
	out, err := render(l, "anuke", 11)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(out), "# Layout pinned: generated by anuke with seed 11 (56 zones)\n") {
		t.Fatalf("header = %q", strings.SplitN(string(out), "\n", 2)[0])
	}

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "pinned.yaml"), out, 0o644); err != nil {
		t.Fatal(err)
	}
	table, err := data.LoadLayoutDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	back := table.Get("pinned")
	if back == nil {
		t.Fatal("pinned layout not loaded")
	}
	if back.Width != l.Width || len(back.Entries) != 56 || len(back.Walls) != len(l.Walls) {
		t.Fatalf("round trip lost data: %dx%d, %d zones, %d walls", back.Width, back.Height, len(back.Entries), len(back.Walls))
	}
	for i, e := range back.Entries {
		if e != l.Entries[i] {
			t.Fatalf("zone %d = %+v, want %+v", i, e, l.Entries[i])
		}
	}
}

func TestRenderRejectsBadZone(t *testing.T) {
	l := &data.Layout{Name: "bad", Width: 10, Height: 10, Entries: []data.ZoneEntry{{ID: 1, Shape: "hexagon"}}}
	if _, err := render(l, "x", 1); err == nil {
		t.Fatal("expected error for a zero-diameter hexagon")
	}
}
