package pool

import "errors"

// ErrCapacity is returned when an identity allocator has no free slot
// left to hand out.
var ErrCapacity = errors.New("pool: identity allocator at capacity")

// Identity is a networked entity's stable wire identifier: an 8-bit
// generation paired with an 8-bit slot. Slot 0 is reserved for "none" /
// the server-owned player; a zero Identity always compares
// equal to None and never to a live occupant.
type Identity struct {
	Generation uint8
	Slot       uint8
}

// None is the reserved "no entity" identity.
var None = Identity{}

// IsNone reports whether id is the reserved zero identity.
func (id Identity) IsNone() bool {
	return id.Slot == 0
}

// IdentityAllocator hands out Identity values for slots 1..=maxSlots,
// recycling a slot's number with an incremented generation each time it
// is freed. Generation wraps at 256 — the source accepts the resulting
// (tiny) collision probability rather than stalling a slot forever.
type IdentityAllocator struct {
	generation []uint8 // indexed by slot; generation[0] is unused
	inUse      []bool
	free       []uint8
	nextUnused uint8
	maxSlots   int
}

// NewIdentityAllocator creates an allocator over slots 1..=maxSlots.
func NewIdentityAllocator(maxSlots int) *IdentityAllocator {
	return &IdentityAllocator{
		generation: make([]uint8, maxSlots+1),
		inUse:      make([]bool, maxSlots+1),
		nextUnused: 1,
		maxSlots:   maxSlots,
	}
}

// Allocate reserves a slot and returns its current identity, or
// ErrCapacity if every slot 1..=maxSlots is in use.
func (a *IdentityAllocator) Allocate() (Identity, error) {
	var slot uint8
	if n := len(a.free); n > 0 {
		slot = a.free[n-1]
		a.free = a.free[:n-1]
	} else if int(a.nextUnused) <= a.maxSlots {
		slot = a.nextUnused
		a.nextUnused++
	} else {
		return Identity{}, ErrCapacity
	}
	a.inUse[slot] = true
	return Identity{Generation: a.generation[slot], Slot: slot}, nil
}

// Recycle returns id's slot to the free list and bumps its generation,
// so any previously captured Identity for that slot now compares unequal
// to whatever occupies it next. Recycling an identity that isn't the
// slot's current occupant (stale generation, or not in use) is a no-op
// error — the caller asked to free something it no longer owns.
func (a *IdentityAllocator) Recycle(id Identity) error {
	if id.IsNone() || int(id.Slot) > a.maxSlots {
		return errors.New("pool: recycle of invalid identity")
	}
	if !a.inUse[id.Slot] || a.generation[id.Slot] != id.Generation {
		return errors.New("pool: recycle of stale identity")
	}
	a.inUse[id.Slot] = false
	a.generation[id.Slot]++
	a.free = append(a.free, id.Slot)
	return nil
}

// Current returns the identity currently occupying slot, or None if the
// slot isn't in use.
func (a *IdentityAllocator) Current(slot uint8) Identity {
	if int(slot) > a.maxSlots || !a.inUse[slot] {
		return None
	}
	return Identity{Generation: a.generation[slot], Slot: slot}
}
