// Package scene implements the intrusive n-ary scene tree:
// parent/first-child/next-sibling links, pre/post-order traversal, and a
// deferred-mutation queue that makes structural edits requested mid-walk
// safe without snapshotting the whole tree.
package scene

import (
	"math"

	"github.com/lowlatency/arena/internal/vec"
)

// Transform is a node's local or world-space pose: position, heading in
// radians, and a uniform scale factor.
type Transform struct {
	Position    vec.Vec2
	Orientation float32
	Scale       float32
}

// Identity is the neutral transform (no translation, rotation or scale
// change).
var Identity = Transform{Scale: 1}

// compose folds a child's local transform into its parent's world
// transform.
func compose(parent, local Transform) Transform {
	s, c := sincos(parent.Orientation)
	rotatedScaled := vec.Vec2{
		X: (local.Position.X*c - local.Position.Y*s) * parent.Scale,
		Y: (local.Position.X*s + local.Position.Y*c) * parent.Scale,
	}
	return Transform{
		Position:    parent.Position.Add(rotatedScaled),
		Orientation: parent.Orientation + local.Orientation,
		Scale:       parent.Scale * local.Scale,
	}
}

func sincos(radians float32) (sin, cos float32) {
	s, c := math.Sincos(float64(radians))
	return float32(s), float32(c)
}

// Behavior is a polymorphic add-on attached to a node:
// collider, player-input, AI steering, timed removal, and so on.
type Behavior interface {
	Advance(dt float32)
	OnAttach(n *Node)
	OnDetach(n *Node)
}

// RemovalHook is invoked, in post-order, once a node and its whole
// subtree have been detached and marked removed. Entities wire this to
// return themselves to their owning pool.
type RemovalHook func(n *Node)

// Node is one element of the intrusive tree. The exported accessors are
// read-only; every structural edit goes through the owning SceneGraph so
// deferral and versioning stay correct.
type Node struct {
	graph *SceneGraph

	parent      *Node
	firstChild  *Node
	nextSibling *Node

	behaviors []Behavior

	local      Transform
	world      Transform
	worldDirty bool

	removed bool

	// Tag is an opaque discriminator scene doesn't interpret itself;
	// entity assigns it the entity-variant tag so the tag argument of
	// PreOrder/PostOrder/Subtree can filter a traversal to one variant.
	Tag uint8

	// Owner lets a traversal consumer recover the higher-level value
	// (e.g. *entity.Entity) that embeds this node.
	Owner any

	onRemoved RemovalHook
}

// NewNode creates a detached node with the identity transform and the
// given variant tag.
func NewNode(tag uint8) *Node {
	return &Node{local: Identity, worldDirty: true, Tag: tag}
}

// SetRemovalHook installs the callback fired when this node is removed
// from its graph (after the whole subtree has been detached).
func (n *Node) SetRemovalHook(h RemovalHook) {
	n.onRemoved = h
}

func (n *Node) Graph() *SceneGraph   { return n.graph }
func (n *Node) Parent() *Node        { return n.parent }
func (n *Node) FirstChild() *Node    { return n.firstChild }
func (n *Node) NextSibling() *Node   { return n.nextSibling }
func (n *Node) Removed() bool        { return n.removed }
func (n *Node) Attached() bool       { return n.graph != nil }
func (n *Node) Behaviors() []Behavior {
	return n.behaviors
}

func (n *Node) LocalTransform() Transform {
	return n.local
}

// SetLocalTransform replaces the node's local transform and invalidates
// the cached world transform for this node and every descendant.
func (n *Node) SetLocalTransform(t Transform) {
	n.local = t
	n.markWorldDirty()
}

// WorldTransform returns the node's transform composed through its
// ancestor chain, recomputing (and re-caching) only the portion that was
// invalidated since the last call.
func (n *Node) WorldTransform() Transform {
	if n.worldDirty {
		if n.parent != nil {
			n.world = compose(n.parent.WorldTransform(), n.local)
		} else {
			n.world = n.local
		}
		n.worldDirty = false
	}
	return n.world
}

func (n *Node) markWorldDirty() {
	if n.worldDirty {
		return
	}
	n.worldDirty = true
	for c := n.firstChild; c != nil; c = c.nextSibling {
		c.markWorldDirty()
	}
}
