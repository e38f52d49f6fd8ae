package world

import (
	"github.com/hexedgo/server/internal/territory"
	"github.com/hexedgo/server/internal/zone"
)

// Owner marks the team an entity belongs to.
type Owner struct {
	Team territory.TeamID
}

// Position is the tile an entity occupies.
type Position struct {
	zone.Point
}

// Building is a placed block. Every block occupies a single tile.
type Building struct {
	Block        string
	Rotation     uint8
	Config       any
	Core         bool
	Requirements []territory.ItemStack
	Storage      *Storage
}

// Mobile is a unit. Player units carry the controlling player's id.
type Mobile struct {
	Health   float64
	PlayerID string
}

func (m *Mobile) IsPlayer() bool { return m.PlayerID != "" }
