package pool

import "errors"

var (
	// ErrDoubleFree is returned when Free is called on a handle whose
	// item is not currently in use.
	ErrDoubleFree = errors.New("pool: double free")
	// ErrDisposed is returned when Allocate is called on a pool that has
	// already been shut down.
	ErrDisposed = errors.New("pool: allocate on disposed pool")
)
