package world

import (
	"errors"
	"sort"
)

// ErrFlushed is returned when writing to a world whose buffers were already flushed.
var ErrFlushed = errors.New("world already flushed")

// ChunkPos addresses one chunk column inside a world.
type ChunkPos struct {
	X int32
	Z int32
}

// World is the in-memory state of one loaded dimension.
// Accessed only from the game loop goroutine, so it carries no locks.
type World struct {
	ID   int32
	Name string

	chunks  map[ChunkPos][]byte
	dirty   map[ChunkPos]struct{}
	flushed bool
}

func New(id int32, name string) *World {
	return &World{
		ID:     id,
		Name:   name,
		chunks: make(map[ChunkPos][]byte, 64),
		dirty:  make(map[ChunkPos]struct{}, 16),
	}
}

// Restore seeds the chunk cache from storage. Restored chunks are clean.
func (w *World) Restore(chunks map[ChunkPos][]byte) {
	for pos, data := range chunks {
		w.chunks[pos] = data
	}
}

// SetChunk replaces a chunk payload and marks it for the next save.
func (w *World) SetChunk(pos ChunkPos, data []byte) error {
	if w.flushed {
		return ErrFlushed
	}
	w.chunks[pos] = data
	w.dirty[pos] = struct{}{}
	return nil
}

func (w *World) Chunk(pos ChunkPos) ([]byte, bool) {
	data, ok := w.chunks[pos]
	return data, ok
}

// ChunkCount returns the number of cached chunks.
func (w *World) ChunkCount() int {
	return len(w.chunks)
}

// Dirty reports whether any chunk changed since the last save.
func (w *World) Dirty() bool {
	return len(w.dirty) > 0
}

// DirtyChunks returns the positions changed since the last save, ordered by X then Z.
func (w *World) DirtyChunks() []ChunkPos {
	out := make([]ChunkPos, 0, len(w.dirty))
	for pos := range w.dirty {
		out = append(out, pos)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].X != out[j].X {
			return out[i].X < out[j].X
		}
		return out[i].Z < out[j].Z
	})
	return out
}

// MarkSaved clears the dirty flag of the given chunks after a successful save.
func (w *World) MarkSaved(saved []ChunkPos) {
	for _, pos := range saved {
		delete(w.dirty, pos)
	}
}

// Flush drops all buffered chunk data. Called once the world is being torn down;
// unsaved changes are discarded.
func (w *World) Flush() {
	w.chunks = make(map[ChunkPos][]byte)
	w.dirty = make(map[ChunkPos]struct{})
	w.flushed = true
}

func (w *World) Flushed() bool {
	return w.flushed
}
