package data

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrNoCoreTile is returned when a base schematic has no core block.
var ErrNoCoreTile = errors.New("base schematic has no core tile")

// Rotation is a quarter-turn block orientation.
type Rotation uint8

const (
	RotRight Rotation = iota
	RotTop
	RotLeft
	RotBottom
)

var rotationNames = [...]string{"right", "top", "left", "bottom"}

func (r Rotation) String() string { return rotationNames[r%4] }

// UnmarshalYAML accepts either a quarter-turn count or a direction name.
func (r *Rotation) UnmarshalYAML(node *yaml.Node) error {
	var n int
	if err := node.Decode(&n); err == nil {
		*r = Rotation(((n % 4) + 4) % 4)
		return nil
	}
	var s string
	if err := node.Decode(&s); err != nil {
		return fmt.Errorf("rotation: %w", err)
	}
	for i, name := range rotationNames {
		if strings.EqualFold(s, name) {
			*r = Rotation(i)
			return nil
		}
	}
	return fmt.Errorf("rotation: unknown direction %q", s)
}

// SchematicTile is one block of a schematic at an offset from its origin.
type SchematicTile struct {
	X        int32    `yaml:"x"`
	Y        int32    `yaml:"y"`
	Block    string   `yaml:"block"`
	Rotation Rotation `yaml:"rotation"`
	Config   any      `yaml:"config,omitempty"`
}

// LoadoutStack is an item amount placed into the core when the base is built.
type LoadoutStack struct {
	Item   string `yaml:"item"`
	Amount int    `yaml:"amount"`
}

// Schematic is the starting-base template placed for every joining team.
type Schematic struct {
	Name        string          `yaml:"name"`
	Description string          `yaml:"description"`
	Width       int32           `yaml:"width"`
	Height      int32           `yaml:"height"`
	Tiles       []SchematicTile `yaml:"tiles"`
	Loadout     []LoadoutStack  `yaml:"loadout"`
}

// LoadSchematic loads a base schematic YAML file.
func LoadSchematic(path string) (*Schematic, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read base schematic %s: %w", path, err)
	}
	var s Schematic
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("parse base schematic %s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = "unknown"
	}
	return &s, nil
}

// CoreTile returns the first core tile; the base is anchored on it.
func (s *Schematic) CoreTile(blocks *BlockCatalog) (SchematicTile, error) {
	for _, t := range s.Tiles {
		if blocks.IsCore(t.Block) {
			return t, nil
		}
	}
	return SchematicTile{}, fmt.Errorf("%w: %s", ErrNoCoreTile, s.Name)
}
