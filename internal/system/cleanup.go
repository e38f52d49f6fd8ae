package system

import (
	"time"

	"github.com/hexedgo/server/internal/core/ecs"
	coresys "github.com/hexedgo/server/internal/core/system"
	"github.com/hexedgo/server/internal/match"
)

// CleanupSystem flushes the deferred entity destruction queue of the
// current match world at tick end. Phase 5 (Cleanup).
type CleanupSystem struct {
	host *match.Host
}

func NewCleanupSystem(host *match.Host) *CleanupSystem {
	return &CleanupSystem{host: host}
}

func (s *CleanupSystem) Name() string         { return "cleanup" }
func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	m := s.host.Current()
	if m == nil {
		return
	}
	if w, ok := m.World().(interface{ ECS() *ecs.World }); ok {
		w.ECS().FlushDestroyQueue()
	}
}
