package data

import (
	"fmt"
	"os"
	"sort"

	"github.com/hexedgo/server/internal/territory"
	"gopkg.in/yaml.v3"
)

// BlockDef describes a buildable block: whether it is a core and what it costs.
type BlockDef struct {
	Name         string        `yaml:"name"`
	Core         bool          `yaml:"core"`
	Requirements []Requirement `yaml:"requirements"`
	stacks       []territory.ItemStack
}

// Requirement is one item line of a block's build cost.
type Requirement struct {
	Item   string `yaml:"item"`
	Amount int    `yaml:"amount"`
}

type blockFile struct {
	Items  map[string]float64 `yaml:"items"` // item name -> cost weight
	Blocks []BlockDef         `yaml:"blocks"`
}

// BlockCatalog resolves block names to build-cost manifests.
type BlockCatalog struct {
	items  map[string]float64
	blocks map[string]*BlockDef
}

// LoadBlockCatalog loads blocks.yaml.
func LoadBlockCatalog(path string) (*BlockCatalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read block catalog: %w", err)
	}
	return ParseBlockCatalog(raw)
}

// ParseBlockCatalog builds a catalog from YAML bytes.
func ParseBlockCatalog(raw []byte) (*BlockCatalog, error) {
	var file blockFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse block catalog: %w", err)
	}
	c := &BlockCatalog{
		items:  file.Items,
		blocks: make(map[string]*BlockDef, len(file.Blocks)),
	}
	if c.items == nil {
		c.items = map[string]float64{}
	}
	for i := range file.Blocks {
		b := &file.Blocks[i]
		if b.Name == "" {
			return nil, fmt.Errorf("parse block catalog: block %d has no name", i)
		}
		if _, dup := c.blocks[b.Name]; dup {
			return nil, fmt.Errorf("parse block catalog: duplicate block %q", b.Name)
		}
		b.stacks = make([]territory.ItemStack, 0, len(b.Requirements))
		for _, r := range b.Requirements {
			cost, ok := c.items[r.Item]
			if !ok {
				return nil, fmt.Errorf("parse block catalog: block %q uses unknown item %q", b.Name, r.Item)
			}
			b.stacks = append(b.stacks, territory.ItemStack{Item: r.Item, Amount: r.Amount, Cost: cost})
		}
		c.blocks[b.Name] = b
	}
	return c, nil
}

// Get returns the block definition, or nil if unknown.
func (c *BlockCatalog) Get(name string) *BlockDef {
	return c.blocks[name]
}

// IsCore reports whether name is a core block.
func (c *BlockCatalog) IsCore(name string) bool {
	b := c.blocks[name]
	return b != nil && b.Core
}

// Requirements returns the cost manifest of a block; unknown blocks cost nothing.
func (c *BlockCatalog) Requirements(name string) []territory.ItemStack {
	if b := c.blocks[name]; b != nil {
		return b.stacks
	}
	return nil
}

// Names returns the block names in sorted order.
func (c *BlockCatalog) Names() []string {
	out := make([]string, 0, len(c.blocks))
	for n := range c.blocks {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Count returns the number of blocks loaded.
func (c *BlockCatalog) Count() int {
	return len(c.blocks)
}
