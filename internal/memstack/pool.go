package memstack

import (
	"sync"

	"github.com/loongs-zhang/open-coroutine-go/internal/rtlog"
)

// Pool is a per-size cache of guarded stacks. It tracks two disjoint
// sets: available (free) and using (backing a live coroutine). A given
// *Stack is always in exactly one of the two.
type Pool struct {
	size uintptr

	mu        sync.Mutex
	available []*Stack
	using     map[*Stack]struct{}
}

func newPool(size uintptr) *Pool {
	return &Pool{
		size:  size,
		using: make(map[*Stack]struct{}),
	}
}

// Size returns the (page-rounded) stack size this pool serves.
func (p *Pool) Size() uintptr { return p.size }

// Allocate draws a Stack from the pool: it pops from available, or
// creates a new one if available is empty, then records it in using.
func (p *Pool) Allocate() (*Stack, error) {
	p.mu.Lock()
	if n := len(p.available); n > 0 {
		s := p.available[n-1]
		p.available = p.available[:n-1]
		p.using[s] = struct{}{}
		p.mu.Unlock()
		return s, nil
	}
	p.mu.Unlock()

	s, err := New(p.size)
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	p.using[s] = struct{}{}
	p.mu.Unlock()
	return s, nil
}

// Revert moves a Stack from using back into available, for reuse by a
// future Allocate call on this pool.
func (p *Pool) Revert(s *Stack) {
	p.mu.Lock()
	delete(p.using, s)
	p.available = append(p.available, s)
	p.mu.Unlock()
}

// Drop removes a Stack from using and releases its mapping back to the
// OS; it does not return to available.
func (p *Pool) Drop(s *Stack) error {
	p.mu.Lock()
	delete(p.using, s)
	p.mu.Unlock()
	if err := s.release(); err != nil {
		rtlog.Default().Warning().Err(err).Log("memstack: failed releasing stack mapping")
		return err
	}
	return nil
}

// shrink releases available stacks down to keep entries, oldest-first
// eviction order not guaranteed (LIFO), used by Registry.Shrink.
func (p *Pool) shrink(keep int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for len(p.available) > keep {
		n := len(p.available)
		s := p.available[n-1]
		p.available = p.available[:n-1]
		if err := s.release(); err != nil {
			rtlog.Default().Warning().Err(err).Log("memstack: shrink release failed")
		}
	}
}

// Stats reports the current cardinality of each set, useful for tests
// asserting the round-trip property.
func (p *Pool) Stats() (availableLen, usingLen int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.available), len(p.using)
}
