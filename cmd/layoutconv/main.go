// layoutconv runs a scripted layout generator and writes the result as a
// static layout file, so a generated map can be pinned and hand edited.
package main

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/hexedgo/server/internal/data"
	"github.com/hexedgo/server/internal/scripting"
)

func main() {
	if len(os.Args) < 5 {
		fmt.Fprintln(os.Stderr, "Usage: layoutconv <scripts dir> <generator> <seed> <output.yaml>")
		os.Exit(1)
	}
	seed, err := strconv.ParseInt(os.Args[3], 10, 64)
	if err != nil {
		fmt.Fprintln(os.Stderr, "seed:", err)
		os.Exit(1)
	}

	eng, err := scripting.NewEngine(os.Args[1], zap.NewNop())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer eng.Close()

	l, err := eng.Generate(os.Args[2], seed)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	out, err := render(l, os.Args[2], seed)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := os.WriteFile(os.Args[4], out, 0o644); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fmt.Printf("Wrote %d zones and %d walls to %s\n", len(l.Entries), len(l.Walls), os.Args[4])
}

// render sorts zones by id and walls row-major, then encodes the layout
// under a provenance header.
func render(l *data.Layout, generator string, seed int64) ([]byte, error) {
	if _, err := l.Zones(); err != nil {
		return nil, err
	}
	sort.SliceStable(l.Entries, func(i, j int) bool {
		return l.Entries[i].ID < l.Entries[j].ID
	})
	sort.SliceStable(l.Walls, func(i, j int) bool {
		if l.Walls[i].Y != l.Walls[j].Y {
			return l.Walls[i].Y < l.Walls[j].Y
		}
		return l.Walls[i].X < l.Walls[j].X
	})

	body, err := yaml.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("encode layout: %w", err)
	}
	header := fmt.Sprintf("# Layout %s: generated by %s with seed %d (%d zones)\n", l.Name, generator, seed, len(l.Entries))
	return append([]byte(header), body...), nil
}
