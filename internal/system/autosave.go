package system

import (
	"context"
	"time"

	coresys "github.com/l1jgo/dimension/internal/core/system"
	"github.com/l1jgo/dimension/internal/dimension"
	"github.com/l1jgo/dimension/internal/world"
	"go.uber.org/zap"
)

// AutoSaveSystem periodically saves every loaded world with unsaved chunks.
// Phase 2 (Persist).
type AutoSaveSystem struct {
	worlds    *dimension.Manager
	saver     dimension.Saver
	log       *zap.Logger
	timeout   time.Duration
	tickCount int
	interval  int // auto-save every N ticks
}

// NewAutoSaveSystem creates the system. A nil saver turns every save into a no-op.
func NewAutoSaveSystem(worlds *dimension.Manager, saver dimension.Saver, log *zap.Logger, intervalTicks int, timeout time.Duration) *AutoSaveSystem {
	if log == nil {
		log = zap.NewNop()
	}
	return &AutoSaveSystem{
		worlds:   worlds,
		saver:    saver,
		log:      log,
		timeout:  timeout,
		interval: intervalTicks,
	}
}

func (s *AutoSaveSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *AutoSaveSystem) Update(_ time.Duration) {
	s.tickCount++
	if s.tickCount < s.interval {
		return
	}
	s.tickCount = 0
	s.saveWorlds(true)
}

// SaveAll saves every loaded world immediately, ignoring dirty state.
func (s *AutoSaveSystem) SaveAll() int {
	return s.saveWorlds(false)
}

// saveWorlds returns the number of worlds saved. A failed world is logged and
// retried on the next interval since its chunks stay dirty.
func (s *AutoSaveSystem) saveWorlds(dirtyOnly bool) int {
	if s.saver == nil {
		return 0
	}
	count := 0
	for _, w := range s.worlds.Worlds() {
		if dirtyOnly && !w.Dirty() {
			continue
		}
		if err := s.saveOne(w); err != nil {
			s.log.Error("world auto-save failed", zap.Int32("world_id", w.ID), zap.String("name", w.Name), zap.Error(err))
			continue
		}
		count++
	}
	if count > 0 {
		s.log.Info("world auto-save done", zap.Int("worlds", count))
	}
	return count
}

func (s *AutoSaveSystem) saveOne(w *world.World) error {
	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	return s.saver.SaveAll(ctx, w)
}
