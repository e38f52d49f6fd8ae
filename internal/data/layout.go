package data

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hexedgo/server/internal/zone"
	"gopkg.in/yaml.v3"
)

// ZoneEntry is one zone of a layout file.
type ZoneEntry struct {
	ID       int    `yaml:"id"`
	X        int32  `yaml:"x"`
	Y        int32  `yaml:"y"`
	Shape    string `yaml:"shape"`
	Diameter int32  `yaml:"diameter,omitempty"`
	Width    int32  `yaml:"width,omitempty"`
	Height   int32  `yaml:"height,omitempty"`
}

// Zone converts the entry into a zone descriptor.
func (e ZoneEntry) Zone() (zone.Zone, error) {
	shape, err := zone.ParseShape(e.Shape)
	if err != nil {
		return nil, fmt.Errorf("zone %d: %w", e.ID, err)
	}
	switch shape {
	case zone.ShapeRect:
		if e.Width <= 0 || e.Height <= 0 {
			return nil, fmt.Errorf("zone %d: rect needs positive width and height", e.ID)
		}
		return zone.NewRect(e.ID, e.X, e.Y, e.Width, e.Height), nil
	default:
		if e.Diameter <= 0 {
			return nil, fmt.Errorf("zone %d: hexagon needs a positive diameter", e.ID)
		}
		return zone.NewHexagon(e.ID, e.X, e.Y, e.Diameter), nil
	}
}

// Layout is a map size plus its zone layout, from a YAML file or a generator.
type Layout struct {
	Name    string      `yaml:"name"`
	Width   int32       `yaml:"width"`
	Height  int32       `yaml:"height"`
	Entries []ZoneEntry `yaml:"zones"`
	Walls   []WallEntry `yaml:"walls,omitempty"`
}

// WallEntry is a static environment block the map starts with.
type WallEntry struct {
	X     int32  `yaml:"x"`
	Y     int32  `yaml:"y"`
	Block string `yaml:"block"`
}

// Zones converts every entry into zone descriptors in file order.
func (l *Layout) Zones() ([]zone.Zone, error) {
	out := make([]zone.Zone, 0, len(l.Entries))
	for _, e := range l.Entries {
		z, err := e.Zone()
		if err != nil {
			return nil, fmt.Errorf("layout %s: %w", l.Name, err)
		}
		out = append(out, z)
	}
	return out, nil
}

// LayoutTable holds the static layouts by name.
type LayoutTable struct {
	layouts map[string]*Layout
}

// LoadLayoutDir loads every *.yaml file in dir. The layout name defaults to
// the file name without extension. A missing directory yields an empty table.
func LoadLayoutDir(dir string) (*LayoutTable, error) {
	t := &LayoutTable{layouts: make(map[string]*Layout)}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return t, nil
		}
		return nil, fmt.Errorf("read layouts dir: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".yaml" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read layout %s: %w", path, err)
		}
		var l Layout
		if err := yaml.Unmarshal(raw, &l); err != nil {
			return nil, fmt.Errorf("parse layout %s: %w", path, err)
		}
		if l.Name == "" {
			l.Name = strings.TrimSuffix(entry.Name(), ".yaml")
		}
		t.layouts[l.Name] = &l
	}
	return t, nil
}

// Get returns the named layout, or nil.
func (t *LayoutTable) Get(name string) *Layout {
	return t.layouts[name]
}

// Names returns the layout names in sorted order.
func (t *LayoutTable) Names() []string {
	out := make([]string, 0, len(t.layouts))
	for n := range t.layouts {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Count returns the number of layouts loaded.
func (t *LayoutTable) Count() int {
	return len(t.layouts)
}
