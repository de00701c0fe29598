package dimension

import "sync"

// unloadQueue collects world ids pending unload. Any goroutine may push;
// only the owner goroutine takes.
type unloadQueue struct {
	mu      sync.Mutex
	pending []int32
	queued  map[int32]struct{}
}

func newUnloadQueue() *unloadQueue {
	return &unloadQueue{
		pending: make([]int32, 0, 8),
		queued:  make(map[int32]struct{}, 8),
	}
}

// push appends id unless it is already pending. Returns false for a duplicate.
func (q *unloadQueue) push(id int32) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, ok := q.queued[id]; ok {
		return false
	}
	q.queued[id] = struct{}{}
	q.pending = append(q.pending, id)
	return true
}

// take swaps out the current batch. Pushes that arrive afterwards land in
// the next batch.
func (q *unloadQueue) take() []int32 {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return nil
	}
	batch := q.pending
	q.pending = make([]int32, 0, cap(batch))
	clear(q.queued)
	return batch
}

func (q *unloadQueue) contains(id int32) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	_, ok := q.queued[id]
	return ok
}

func (q *unloadQueue) snapshot() []int32 {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]int32, len(q.pending))
	copy(out, q.pending)
	return out
}
