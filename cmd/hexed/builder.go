package main

import (
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/hexedgo/server/internal/config"
	"github.com/hexedgo/server/internal/core/event"
	"github.com/hexedgo/server/internal/data"
	"github.com/hexedgo/server/internal/match"
	"github.com/hexedgo/server/internal/scripting"
	"github.com/hexedgo/server/internal/world"
)

// generator produces a layout from a name and seed; the Lua engine is one.
type generator interface {
	Generate(name string, seed int64) (*data.Layout, error)
}

// assets are the static tables every match is built from.
type assets struct {
	blocks  *data.BlockCatalog
	base    *data.Schematic
	layouts *data.LayoutTable
	gen     generator // nil when no scripts are loaded
}

func loadAssets(cfg config.DataConfig) (*assets, error) {
	blocks, err := data.LoadBlockCatalog(cfg.Blocks)
	if err != nil {
		return nil, fmt.Errorf("load block catalog: %w", err)
	}
	base, err := data.LoadSchematic(cfg.BaseSchema)
	if err != nil {
		return nil, fmt.Errorf("load base schematic %s: %w", cfg.BaseSchema, err)
	}
	if _, err := base.CoreTile(blocks); err != nil {
		return nil, fmt.Errorf("load base schematic %s: %w", cfg.BaseSchema, err)
	}
	layouts, err := data.LoadLayoutDir(cfg.LayoutsDir)
	if err != nil {
		return nil, fmt.Errorf("load layouts: %w", err)
	}
	return &assets{blocks: blocks, base: base, layouts: layouts}, nil
}

// layout resolves a generator name. Static layouts shadow scripted generators.
func (a *assets) layout(name string, seed int64) (*data.Layout, error) {
	if l := a.layouts.Get(name); l != nil {
		return l, nil
	}
	if a.gen == nil {
		return nil, fmt.Errorf("generate %s: %w", name, scripting.ErrGeneratorNotFound)
	}
	return a.gen.Generate(name, seed)
}

// newBuilder returns the match builder the host uses for every start. Each
// match gets a fresh world from its layout and shares the event bus.
func newBuilder(cfg config.MatchConfig, a *assets, bus *event.Bus, log *zap.Logger) match.Builder {
	return func(name string) (match.Setup, error) {
		seed := cfg.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		l, err := a.layout(name, seed)
		if err != nil {
			return match.Setup{}, err
		}
		zones, err := l.Zones()
		if err != nil {
			return match.Setup{}, err
		}
		return match.Setup{
			Name:   l.Name,
			Config: cfg,
			Zones:  zones,
			Base:   a.base,
			Blocks: a.blocks,
			World:  world.FromLayout(l, a.blocks),
			Bus:    bus,
			Rand:   rand.New(rand.NewSource(seed)),
			Log:    log,
		}, nil
	}
}
