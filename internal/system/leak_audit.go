package system

import (
	"time"

	"github.com/l1jgo/dimension/internal/core/event"
	coresys "github.com/l1jgo/dimension/internal/core/system"
	"github.com/l1jgo/dimension/internal/dimension"
	"go.uber.org/zap"
)

// LeakAuditSystem runs the world leak audit every N ticks through the
// auditing id query. Warnings are re-emitted on the bus. Phase 4 (Audit).
type LeakAuditSystem struct {
	worlds    *dimension.Manager
	log       *zap.Logger
	tickCount int
	interval  int
}

func NewLeakAuditSystem(worlds *dimension.Manager, bus *event.Bus, log *zap.Logger, intervalTicks int) *LeakAuditSystem {
	if intervalTicks < 1 {
		intervalTicks = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	worlds.OnLeak(func(r dimension.LeakReport) {
		event.Emit(bus, event.WorldLeakSuspected{Token: r.Token, Name: r.Name, Count: r.Count})
	})
	return &LeakAuditSystem{
		worlds:   worlds,
		log:      log,
		interval: intervalTicks,
	}
}

func (s *LeakAuditSystem) Phase() coresys.Phase { return coresys.PhaseAudit }

func (s *LeakAuditSystem) Update(_ time.Duration) {
	s.tickCount++
	if s.tickCount < s.interval {
		return
	}
	s.tickCount = 0
	s.Audit()
}

// Audit runs one pass immediately, outside the tick cadence.
func (s *LeakAuditSystem) Audit() {
	ids := s.worlds.AllIDs(true)
	s.log.Debug("leak audit done", zap.Int("loaded", len(ids)), zap.Int("tracked", s.worlds.Tracked()))
}
