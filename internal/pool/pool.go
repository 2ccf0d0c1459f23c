// Package pool implements typed object pools and the generational entity
// identity allocator. Pools trade a little bookkeeping for
// zero steady-state allocation on the tick path: entities and messages
// are recycled rather than left for the garbage collector.
package pool

// Resettable is implemented by payload types that carry instance state
// needing to be cleared before a recycled slot is handed out again.
type Resettable interface {
	Reset()
}

// Returning is implemented by payload types that need to react to being
// handed back to the pool (e.g. releasing a strong reference).
type Returning interface {
	OnReturning()
}

type entry[T any] struct {
	value    T
	inUse    bool
	refCount int32
}

// Pool is a typed object pool parameterised over T via a zero-arg
// constructor and an optional initializer that runs on every Allocate,
// for fresh and reused values alike.
type Pool[T any] struct {
	newFn  func() T
	initFn func(*T)
	items  []*entry[T]
	free   []int

	outstanding int
	disposed    bool
}

// New creates a pool. initFn may be nil when newFn alone fully
// initializes a fresh value.
func New[T any](newFn func() T, initFn func(*T)) *Pool[T] {
	return &Pool[T]{newFn: newFn, initFn: initFn}
}

// Handle names a live slot in the pool. The zero Handle is not valid.
type Handle[T any] struct {
	pool  *Pool[T]
	index int
}

// Valid reports whether h refers to a pool (as opposed to the zero Handle).
func (h Handle[T]) Valid() bool {
	return h.pool != nil
}

// Allocate reserves a slot, reusing a freed one when available, and
// returns a handle plus a pointer to the live value. The returned value
// carries an implicit reference owned by the caller of Allocate; that
// reference is released by Free.
func (p *Pool[T]) Allocate() (Handle[T], *T, error) {
	if p.disposed {
		return Handle[T]{}, nil, ErrDisposed
	}

	var idx int
	if n := len(p.free); n > 0 {
		idx = p.free[n-1]
		p.free = p.free[:n-1]
	} else {
		v := p.newFn()
		p.items = append(p.items, &entry[T]{value: v})
		idx = len(p.items) - 1
	}

	e := p.items[idx]
	e.inUse = true
	e.refCount = 1
	if p.initFn != nil {
		p.initFn(&e.value)
	}
	p.outstanding++
	return Handle[T]{pool: p, index: idx}, &e.value, nil
}

// Get returns the live value a handle refers to.
func (p *Pool[T]) Get(h Handle[T]) *T {
	return &p.items[h.index].value
}

// Free releases the implicit reference Allocate created. If no other
// guard holds a reference, the slot is reclaimed immediately.
func (p *Pool[T]) Free(h Handle[T]) error {
	e := p.items[h.index]
	if !e.inUse {
		return ErrDoubleFree
	}
	e.refCount--
	if e.refCount <= 0 {
		p.reclaim(h.index)
	}
	return nil
}

// Guard is a shared-ownership reference returned by AcquireSharedOwnership.
// Dispose releases it; the pool reclaims the slot once every outstanding
// guard (and the original Allocate reference, if not yet Freed) has been
// released.
type Guard[T any] struct {
	pool  *Pool[T]
	index int
}

// AcquireSharedOwnership increments the slot's reference count and
// returns a guard the caller must Dispose exactly once.
func (p *Pool[T]) AcquireSharedOwnership(h Handle[T]) Guard[T] {
	p.items[h.index].refCount++
	return Guard[T]{pool: p, index: h.index}
}

// Dispose releases the shared reference this guard holds.
func (g Guard[T]) Dispose() {
	e := g.pool.items[g.index]
	e.refCount--
	if e.refCount <= 0 {
		g.pool.reclaim(g.index)
	}
}

func (p *Pool[T]) reclaim(idx int) {
	e := p.items[idx]
	if !e.inUse {
		return
	}
	// T may itself be a pointer type (whose hooks attach directly to T)
	// or a value type (whose hooks attach to *T); try both so either
	// convention works without the pool needing to know which one T is.
	if r, ok := any(e.value).(Returning); ok {
		r.OnReturning()
	} else if r, ok := any(&e.value).(Returning); ok {
		r.OnReturning()
	}
	if r, ok := any(e.value).(Resettable); ok {
		r.Reset()
	} else if r, ok := any(&e.value).(Resettable); ok {
		r.Reset()
	}
	e.inUse = false
	p.free = append(p.free, idx)
	p.outstanding--
}

// FreeAll forcibly reclaims every outstanding slot, ignoring reference
// counts. Sessions call this on shutdown; it is not a substitute for
// Free on the happy path.
func (p *Pool[T]) FreeAll() {
	for idx, e := range p.items {
		if e.inUse {
			p.reclaim(idx)
		}
	}
}

// Outstanding returns the number of slots currently in use.
func (p *Pool[T]) Outstanding() int {
	return p.outstanding
}

// Len returns the total number of backing instances the pool has ever
// allocated (in use or free) — tests check this against the peak
// concurrent live count to confirm instances are actually reused.
func (p *Pool[T]) Len() int {
	return len(p.items)
}

// Shutdown marks the pool disposed (further Allocate calls fail) and
// invokes leak for every slot still in use, matching the debug-build
// leak log a shutdown diagnostic needs.
func (p *Pool[T]) Shutdown(leak func(index int)) {
	p.disposed = true
	if leak == nil {
		return
	}
	for idx, e := range p.items {
		if e.inUse {
			leak(idx)
		}
	}
}
