package dimension

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/l1jgo/dimension/internal/config"
	"github.com/l1jgo/dimension/internal/world"
	"go.uber.org/zap"
)

// Manager owns the table of loaded worlds, the pending unload queue and the
// leak auditor. Register, Remove and UnloadWorlds belong to the game loop
// goroutine; QueueUnload, Lookup, AllIDs and AuditLeaks may be called from
// anywhere. OnLeak hooks run on whichever goroutine audits, so they must be
// safe for concurrent use.
type Manager struct {
	mu      sync.RWMutex
	worlds  map[int32]*world.World
	tracker *tracker
	auditor *auditor

	queue *unloadQueue

	leakHooks []func(LeakReport)

	saver       Saver
	notifier    Notifier
	saveTimeout time.Duration
	log         *zap.Logger
}

// NewManager creates an empty manager. A nil saver skips the save step on
// unload; a nil notifier drops notifications.
func NewManager(cfg config.DimensionConfig, saver Saver, notifier Notifier, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &Manager{
		worlds:      make(map[int32]*world.World, 8),
		tracker:     newTracker(),
		auditor:     newAuditor(cfg.LeakThreshold, log),
		queue:       newUnloadQueue(),
		saver:       saver,
		notifier:    notifier,
		saveTimeout: cfg.SaveTimeout,
		log:         log,
	}
}

// Register makes w reachable by id and starts tracking its identity.
func (m *Manager) Register(id int32, w *world.World) error {
	if w == nil {
		return fmt.Errorf("register world %d: %w", id, ErrNilWorld)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.worlds[id]; ok {
		return fmt.Errorf("register world %d: %w", id, ErrDuplicateID)
	}
	m.worlds[id] = w
	tok := m.tracker.track(w)

	m.log.Debug("world registered",
		zap.Int32("world_id", id),
		zap.String("name", w.Name),
		zap.Stringer("token", tok))
	return nil
}

func (m *Manager) Lookup(id int32) (*world.World, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	w, ok := m.worlds[id]
	return w, ok
}

// AllIDs returns the registered ids in ascending order. When audit is true a
// leak audit pass runs first, so periodic callers get leak detection for free.
func (m *Manager) AllIDs(audit bool) []int32 {
	if audit {
		m.AuditLeaks()
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]int32, 0, len(m.worlds))
	for id := range m.worlds {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Remove drops id from the table without saving or notifying. Weak tracking
// is left alone.
func (m *Manager) Remove(id int32) (*world.World, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.worlds[id]
	if ok {
		delete(m.worlds, id)
	}
	return w, ok
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.worlds)
}

// Worlds returns a snapshot of the registered worlds ordered by id.
func (m *Manager) Worlds() []*world.World {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*world.World, 0, len(m.worlds))
	for _, w := range m.worlds {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Tracked returns the number of identities in the weak tracking table,
// including ones no longer registered.
func (m *Manager) Tracked() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tracker.len()
}

// QueueUnload schedules id for the next UnloadWorlds call. Returns false if
// id is already pending.
func (m *Manager) QueueUnload(id int32) bool {
	return m.queue.push(id)
}

func (m *Manager) IsQueued(id int32) bool {
	return m.queue.contains(id)
}

// PendingUnloads returns the queued ids in the order they will be processed.
func (m *Manager) PendingUnloads() []int32 {
	return m.queue.snapshot()
}

// OnLeak registers fn to be called for every report that produced a warning.
// Hooks run on the auditing goroutine after the manager lock is released, and
// may run concurrently when audits do.
func (m *Manager) OnLeak(fn func(LeakReport)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.leakHooks = append(m.leakHooks, fn)
}

// AuditLeaks runs one leak detection pass: every tracked world that is still
// alive but absent from the table gets its counter bumped. It only reports.
func (m *Manager) AuditLeaks() []LeakReport {
	reports, hooks := m.audit()
	for _, r := range reports {
		if !r.Warned {
			continue
		}
		for _, fn := range hooks {
			fn(r)
		}
	}
	return reports
}

func (m *Manager) audit() ([]LeakReport, []func(LeakReport)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.auditor.forget(m.tracker.prune())

	live := make(map[*world.World]struct{}, len(m.worlds))
	for _, w := range m.worlds {
		live[w] = struct{}{}
	}

	var candidates []candidate
	for ref, e := range m.tracker.entries {
		w := ref.Value()
		if w == nil {
			continue
		}
		if _, ok := live[w]; ok {
			continue
		}
		candidates = append(candidates, candidate{token: e.token, name: e.name})
	}
	return m.auditor.observe(candidates), m.leakHooks
}
