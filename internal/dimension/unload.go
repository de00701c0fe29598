package dimension

import (
	"context"
	"fmt"

	"github.com/l1jgo/dimension/internal/world"
	"github.com/rs/xid"
	"go.uber.org/zap"
)

// UnloadState is a step in the life of one queued unload request.
type UnloadState int

const (
	StateQueued UnloadState = iota
	StatePersisting
	StatePersistFailed
	StatePersistSkipped
	StateRemoved
)

func (s UnloadState) String() string {
	switch s {
	case StateQueued:
		return "queued"
	case StatePersisting:
		return "persisting"
	case StatePersistFailed:
		return "persist_failed"
	case StatePersistSkipped:
		return "persist_skipped"
	case StateRemoved:
		return "removed"
	}
	return "unknown"
}

// UnloadResult records what happened to one queued id during a drain.
type UnloadResult struct {
	ID              int32
	Name            string
	AlreadyUnloaded bool  // nothing was registered under ID
	SaveSkipped     bool  // the manager has no saver
	PersistErr      error // non-nil when the save failed; the world was removed anyway
	NotifyErr       error // non-nil when the notifier panicked; the world was removed anyway
}

// Path returns the states the request went through, ending in StateRemoved.
func (r UnloadResult) Path() []UnloadState {
	switch {
	case r.AlreadyUnloaded:
		return []UnloadState{StateQueued, StateRemoved}
	case r.SaveSkipped:
		return []UnloadState{StateQueued, StatePersistSkipped, StateRemoved}
	case r.PersistErr != nil:
		return []UnloadState{StateQueued, StatePersistFailed, StateRemoved}
	}
	return []UnloadState{StateQueued, StatePersisting, StateRemoved}
}

// UnloadWorlds drains the unload queue. Each queued world is saved, announced,
// flushed and removed, in that order. A failed save or a panicking notifier is
// logged and the world is removed regardless; one bad world never holds up the
// rest of the batch.
// Ids queued while the drain runs are left for the next call.
func (m *Manager) UnloadWorlds(ctx context.Context) []UnloadResult {
	batch := m.queue.take()
	if len(batch) == 0 {
		return nil
	}

	log := m.log.With(zap.String("cycle", xid.New().String()))
	results := make([]UnloadResult, 0, len(batch))

	for _, id := range batch {
		w, ok := m.Lookup(id)
		if !ok {
			log.Error("unexpected world unload, already unloaded", zap.Int32("world_id", id))
			results = append(results, UnloadResult{ID: id, AlreadyUnloaded: true})
			continue
		}

		res := UnloadResult{ID: id, Name: w.Name, SaveSkipped: m.saver == nil}
		if err := m.save(ctx, w); err != nil {
			res.PersistErr = err
			log.Warn("world save failed during unload",
				zap.Int32("world_id", id),
				zap.String("name", w.Name),
				zap.Error(err))
		}

		if err := m.release(w); err != nil {
			res.NotifyErr = err
			log.Error("world unload notification failed",
				zap.Int32("world_id", id),
				zap.String("name", w.Name),
				zap.Error(err))
		}

		m.mu.Lock()
		delete(m.worlds, id)
		m.mu.Unlock()

		log.Info("world unloaded", zap.Int32("world_id", id), zap.String("name", w.Name))
		results = append(results, res)
	}
	return results
}

// release announces the unload and flushes w. A panicking notifier is turned
// into an error; the flush still runs.
func (m *Manager) release(w *world.World) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("notifier panic: %v", r)
		}
		w.Flush()
	}()
	m.notifier.WorldUnloaded(w)
	return nil
}

// save runs the saver under the configured timeout. A panicking saver is
// turned into an error so the drain keeps going.
func (m *Manager) save(ctx context.Context, w *world.World) (err error) {
	if m.saver == nil {
		return nil
	}
	if m.saveTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.saveTimeout)
		defer cancel()
	}
	defer func() {
		if r := recover(); r != nil {
			err = &PersistError{ID: w.ID, Name: w.Name, Err: fmt.Errorf("saver panic: %v", r)}
		}
	}()
	if err := m.saver.SaveAll(ctx, w); err != nil {
		return &PersistError{ID: w.ID, Name: w.Name, Err: err}
	}
	return nil
}
