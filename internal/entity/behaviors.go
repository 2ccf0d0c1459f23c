package entity

import (
	"math"
	"math/rand"

	"github.com/lowlatency/arena/internal/scene"
	"github.com/lowlatency/arena/internal/vec"
)

// InputSnapshot is the per-frame input state the core reads from the
// platform input layer, an external collaborator out of scope.
type InputSnapshot struct {
	Move          vec.Vec2 // normalized movement direction
	Aim           float32  // heading in radians
	FirePrimary   bool
	FireSecondary bool
}

// InputSource supplies the latest InputSnapshot for one avatar; session
// implements this per connected player from inbound Input messages.
type InputSource interface {
	Input() InputSnapshot
}

const avatarMoveSpeed = 5.0 // world units per second

// ColliderBehavior marks a node as participating in collision.
// Radius is informational here — the
// broad-phase reads Entity.ColliderRadius directly — so Advance is a
// no-op; the behavior exists to match the variant table's capability
// set and to let a node's behavior list answer "does this collide?".
type ColliderBehavior struct {
	Radius float32
}

func (c *ColliderBehavior) Advance(float32)        {}
func (c *ColliderBehavior) OnAttach(*scene.Node)    {}
func (c *ColliderBehavior) OnDetach(*scene.Node)    {}

// PlayerInputBehavior reads an InputSource each tick and sets the
// owning avatar's velocity and fire intent.
type PlayerInputBehavior struct {
	Entity *Entity
	Source InputSource

	// FireRequested is populated by Advance and drained by sim.Tick's
	// fire-event collection, which runs right after behavior execution
	// and before the server-update pass; kept here rather than
	// firing weapons directly so behavior execution stays free of
	// world/collision side effects.
	FireRequested [2]bool
}

func (b *PlayerInputBehavior) Advance(dt float32) {
	in := b.Source.Input()
	dir := in.Move
	if dir.LengthSq() > 1 {
		dir = dir.Normalize()
	}
	b.Entity.Velocity = dir.Mul(avatarMoveSpeed)
	local := b.Entity.LocalTransform()
	local.Orientation = in.Aim
	b.Entity.SetLocalTransform(local)
	b.FireRequested[0] = in.FirePrimary
	b.FireRequested[1] = in.FireSecondary
}

func (b *PlayerInputBehavior) OnAttach(*scene.Node) {}
func (b *PlayerInputBehavior) OnDetach(*scene.Node) {
	b.Entity.Velocity = vec.Zero
}

// AIBehavior drives a bot avatar: simple steering toward Target plus an
// occasional random fire.
type AIBehavior struct {
	Entity *Entity
	Target func() (vec.Vec2, bool)
	RNG    *rand.Rand

	FireRequested bool
	fireCooldown  float32
}

func (b *AIBehavior) Advance(dt float32) {
	b.fireCooldown -= dt
	pos := b.Entity.WorldTransform().Position
	target, ok := b.Target()
	if !ok {
		b.Entity.Velocity = vec.Zero
		return
	}
	toTarget := target.Sub(pos)
	if toTarget.LengthSq() > 0.01 {
		dir := toTarget.Normalize()
		b.Entity.Velocity = dir.Mul(avatarMoveSpeed * 0.6)
		local := b.Entity.LocalTransform()
		local.Orientation = dir.Angle()
		b.Entity.SetLocalTransform(local)
	} else {
		b.Entity.Velocity = vec.Zero
	}

	b.FireRequested = false
	if b.fireCooldown <= 0 && toTarget.Length() < 20 {
		if b.RNG.Float32() < 0.3 {
			b.FireRequested = true
		}
		b.fireCooldown = 1.0 + b.RNG.Float32()
	}
}

func (b *AIBehavior) OnAttach(*scene.Node) {}
func (b *AIBehavior) OnDetach(*scene.Node) {}

// TimedRemovalBehavior removes its node after Remaining seconds elapse.
// Used for shockwaves and any
// fire-and-forget entity with a fixed lifetime.
type TimedRemovalBehavior struct {
	Remaining float32
	node      *scene.Node
}

func (b *TimedRemovalBehavior) Advance(dt float32) {
	b.Remaining -= dt
	if b.Remaining <= 0 && b.node != nil && b.node.Graph() != nil {
		b.node.Graph().Remove(b.node)
	}
}

func (b *TimedRemovalBehavior) OnAttach(n *scene.Node) { b.node = n }
func (b *TimedRemovalBehavior) OnDetach(*scene.Node)   { b.node = nil }

// clampAngle normalizes a heading into (-π, π], the convention
// vec.FromAngle/Angle already produce but behaviors receiving aim input
// from the wire must re-establish.
func clampAngle(radians float32) float32 {
	for radians > math.Pi {
		radians -= 2 * math.Pi
	}
	for radians < -math.Pi {
		radians += 2 * math.Pi
	}
	return radians
}
