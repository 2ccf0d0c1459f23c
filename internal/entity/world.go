package entity

import (
	"fmt"

	"github.com/lowlatency/arena/internal/pool"
	"github.com/lowlatency/arena/internal/scene"
	"github.com/lowlatency/arena/internal/vec"
)

// MaxEntities bounds the generational identity range entities draw
// from — larger than MaxPlayers ("or a larger range for
// entities") since projectiles and collectibles churn far faster than
// the player roster.
const MaxEntities = 256

// Rect is an axis-aligned world boundary ("the world is a
// rectangle").
type Rect struct {
	Min, Max vec.Vec2
}

// Contains reports whether p lies within the rectangle.
func (r Rect) Contains(p vec.Vec2) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// Clamp restricts p to the rectangle.
func (r Rect) Clamp(p vec.Vec2) vec.Vec2 {
	return vec.Clamp(p, r.Min, r.Max)
}

// World owns the scene graph, the entity pool, the identity table, and
// the spatial broad-phase grid as one cohesive unit.
type World struct {
	Graph   *scene.SceneGraph
	Bounds  Rect
	MaxCollider float32

	pool       *pool.Pool[Entity]
	identities *pool.IdentityAllocator
	byIdentity map[pool.Identity]*Entity

	grid    *grid
	onDeath DeathHook
}

// SetDeathHook installs the callback ResolveCollisions and the
// wall-collision path invoke when an avatar's health reaches zero.
func (w *World) SetDeathHook(h DeathHook) { w.onDeath = h }

// NewWorld creates an empty world with the given bounds. maxColliderRadius
// sizes the broad-phase grid cell ("cell size = 2×max-collider-radius").
func NewWorld(bounds Rect, maxColliderRadius float32) *World {
	w := &World{
		Graph:       scene.New(),
		Bounds:      bounds,
		MaxCollider: maxColliderRadius,
		identities:  pool.NewIdentityAllocator(MaxEntities),
		byIdentity:  make(map[pool.Identity]*Entity),
	}
	w.pool = pool.New(func() Entity {
		return Entity{world: w}
	}, func(e *Entity) {
		e.Node = scene.NewNode(0)
	})
	w.grid = newGrid(maxColliderRadius * 2)
	return w
}

// Spawn allocates a new entity of the given variant at pos, attaches it
// to the graph under parent (root when nil), and assigns it a network
// identity.
func (w *World) Spawn(variant Variant, pos vec.Vec2, colliderRadius float32, parent *scene.Node) (*Entity, error) {
	id, err := w.identities.Allocate()
	if err != nil {
		return nil, fmt.Errorf("entity: spawn %s: %w", variant, err)
	}

	handle, e, err := w.pool.Allocate()
	if err != nil {
		w.identities.Recycle(id)
		return nil, fmt.Errorf("entity: spawn %s: %w", variant, err)
	}

	e.Node.Tag = uint8(variant)
	e.Node.SetLocalTransform(scene.Transform{Position: pos, Scale: 1})
	e.Node.Owner = e
	capturedHandle := handle
	e.Node.SetRemovalHook(func(n *scene.Node) {
		delete(w.byIdentity, e.Identity)
		w.identities.Recycle(e.Identity)
		w.pool.Free(capturedHandle)
	})

	e.Variant = variant
	e.Identity = id
	e.ColliderRadius = colliderRadius
	e.Dirty = true
	if variant == VariantAvatar {
		e.Avatar = newAvatarState()
	}

	if err := w.Graph.Add(parent, e.Node); err != nil {
		w.identities.Recycle(id)
		w.pool.Free(handle)
		return nil, fmt.Errorf("entity: spawn %s: %w", variant, err)
	}
	w.byIdentity[id] = e
	return e, nil
}

// Remove detaches and pools e. The handle release and identity recycle
// happen inside the removal hook Spawn installed, which the scene graph
// invokes once the subtree is fully detached (deferred if an enumerator
// is live).
func (w *World) Remove(e *Entity) error {
	return w.Graph.Remove(e.Node)
}

// Lookup returns the live entity for a network identity, or false if it
// names no current occupant (a dead or never-allocated identity).
func (w *World) Lookup(id pool.Identity) (*Entity, bool) {
	e, ok := w.byIdentity[id]
	return e, ok
}

// Integrate advances every entity's position by velocity*dt and applies
// the bounds policy: projectiles leaving the rectangle
// are removed, everything else is clamped.
func (w *World) Integrate(dt float32) {
	e := w.Graph.PreOrder(nil)
	var toRemove []*Entity
	for e.MoveNext() {
		n := e.Current()
		ent, ok := n.Owner.(*Entity)
		if !ok {
			continue
		}
		local := ent.LocalTransform()
		local.Position = local.Position.Add(ent.Velocity.Mul(dt))
		if ent.Variant.IsProjectile() && ent.Velocity.LengthSq() > 0 {
			local.Orientation = ent.Velocity.Angle()
		}
		if !w.Bounds.Contains(local.Position) {
			if ent.Variant.IsProjectile() {
				ent.SetLocalTransform(local)
				toRemove = append(toRemove, ent)
				continue
			}
			local.Position = w.Bounds.Clamp(local.Position)
		}
		ent.SetLocalTransform(local)
	}
	e.Dispose()

	for _, ent := range toRemove {
		w.handleWallCollision(ent, w.onDeath)
	}
}

// Each calls fn for every live entity, pre-order. fn must not mutate the
// graph's structure directly; use w.Remove/w.Spawn, which defer safely
// while this traversal is open.
func (w *World) Each(fn func(*Entity)) {
	e := w.Graph.PreOrder(nil)
	for e.MoveNext() {
		if ent, ok := e.Current().Owner.(*Entity); ok {
			fn(ent)
		}
	}
	e.Dispose()
}

// Count returns the number of live (attached) entities.
func (w *World) Count() int {
	return len(w.byIdentity)
}
