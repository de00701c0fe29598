package system

import (
	"context"
	"time"

	coresys "github.com/l1jgo/dimension/internal/core/system"
	"github.com/l1jgo/dimension/internal/dimension"
)

// UnloadSystem drains the world unload queue every tick. Phase 3 (Unload).
type UnloadSystem struct {
	worlds *dimension.Manager
}

func NewUnloadSystem(worlds *dimension.Manager) *UnloadSystem {
	return &UnloadSystem{worlds: worlds}
}

func (s *UnloadSystem) Phase() coresys.Phase { return coresys.PhaseUnload }

func (s *UnloadSystem) Update(_ time.Duration) {
	s.worlds.UnloadWorlds(context.Background())
}
