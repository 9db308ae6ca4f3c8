package memstack

import (
	"sync"
)

// Registry is the process-wide mapping from (page-rounded) stack size
// to Pool. It is created lazily on first allocation of a given size
// and never destroyed during process life.
//
// A sync.RWMutex guards the map, and the common case (pool already
// exists) only ever takes the read lock, avoiding any unbounded retry
// path under contention.
type Registry struct {
	mu    sync.RWMutex
	pools map[uintptr]*Pool
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{pools: make(map[uintptr]*Pool)}
}

var global = NewRegistry()

// Global returns the process-wide Registry.
func Global() *Registry { return global }

// PoolFor returns the Pool keyed by size, after normalising size to a
// page multiple, creating it if this is the first request of that
// size.
func (r *Registry) PoolFor(size uintptr) *Pool {
	size = roundUpToPage(size)
	if size == 0 {
		size = MinSize()
	}

	r.mu.RLock()
	p, ok := r.pools[size]
	r.mu.RUnlock()
	if ok {
		return p
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok = r.pools[size]; ok {
		return p
	}
	p = newPool(size)
	r.pools[size] = p
	return p
}

// Shrink releases excess available stacks across every size-keyed pool
// in the registry, keeping at most keepPerSize idle stacks per size.
// It is the mechanism callers (typically the scheduler, after a large
// finished batch) can invoke to decide when to shrink.
func (r *Registry) Shrink(keepPerSize int) {
	r.mu.RLock()
	pools := make([]*Pool, 0, len(r.pools))
	for _, p := range r.pools {
		pools = append(pools, p)
	}
	r.mu.RUnlock()
	for _, p := range pools {
		p.shrink(keepPerSize)
	}
}
