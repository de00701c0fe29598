package dimension

import (
	"weak"

	"github.com/l1jgo/dimension/internal/core/handle"
	"github.com/l1jgo/dimension/internal/world"
)

// tracked is one weak tracking entry. It never holds a strong reference to
// the world, so a world dropped everywhere else can still be collected.
type tracked struct {
	ref   weak.Pointer[world.World]
	token handle.Token
	name  string
}

// tracker maps world identity to a tracking token. Entries outlive the
// resource table entry on purpose: a live entry with no table entry is the
// leak signal the auditor looks for.
type tracker struct {
	pool    *handle.Pool
	entries map[weak.Pointer[world.World]]*tracked
}

func newTracker() *tracker {
	return &tracker{
		pool:    handle.NewPool(),
		entries: make(map[weak.Pointer[world.World]]*tracked, 16),
	}
}

// track creates the entry for w, or refreshes its label if w is already known.
func (t *tracker) track(w *world.World) handle.Token {
	ref := weak.Make(w)
	if e, ok := t.entries[ref]; ok {
		e.name = w.Name
		return e.token
	}
	e := &tracked{ref: ref, token: t.pool.Create(), name: w.Name}
	t.entries[ref] = e
	return e.token
}

// prune drops entries whose world has been collected and returns their tokens.
func (t *tracker) prune() []handle.Token {
	var gone []handle.Token
	for ref, e := range t.entries {
		if ref.Value() != nil {
			continue
		}
		delete(t.entries, ref)
		t.pool.Release(e.token)
		gone = append(gone, e.token)
	}
	return gone
}

// tokenOf returns the token for w without creating one.
func (t *tracker) tokenOf(w *world.World) (handle.Token, bool) {
	e, ok := t.entries[weak.Make(w)]
	if !ok {
		return 0, false
	}
	return e.token, true
}

func (t *tracker) len() int {
	return len(t.entries)
}
