package handle

import "fmt"

// Token encodes a 32-bit slot index in the lower bits and a 32-bit generation
// in the upper bits. Generation increments on release to invalidate stale tokens.
type Token uint64

func NewToken(index uint32, generation uint32) Token {
	return Token(uint64(generation)<<32 | uint64(index))
}

func (t Token) Index() uint32      { return uint32(t) }
func (t Token) Generation() uint32 { return uint32(t >> 32) }

// String renders the token as hex, the form used in diagnostics.
func (t Token) String() string { return fmt.Sprintf("%x", uint64(t)) }

// Pool manages token allocation with generational indices and a free list.
type Pool struct {
	generations []uint32
	freeList    []uint32
	nextIndex   uint32
	live        int
}

func NewPool() *Pool {
	return &Pool{
		generations: make([]uint32, 0, 64),
		freeList:    make([]uint32, 0, 16),
	}
}

func (p *Pool) Create() Token {
	p.live++
	if len(p.freeList) > 0 {
		idx := p.freeList[len(p.freeList)-1]
		p.freeList = p.freeList[:len(p.freeList)-1]
		return NewToken(idx, p.generations[idx])
	}
	idx := p.nextIndex
	p.nextIndex++
	if int(idx) >= len(p.generations) {
		p.generations = append(p.generations, 0)
	}
	return NewToken(idx, p.generations[idx])
}

func (p *Pool) Alive(t Token) bool {
	idx := t.Index()
	if idx >= p.nextIndex {
		return false
	}
	return p.generations[idx] == t.Generation()
}

// Release returns the slot to the free list. Releasing a stale token is a no-op.
func (p *Pool) Release(t Token) {
	if !p.Alive(t) {
		return
	}
	idx := t.Index()
	p.generations[idx]++
	p.freeList = append(p.freeList, idx)
	p.live--
}

// Len returns the number of live tokens.
func (p *Pool) Len() int {
	return p.live
}
