package replication

import (
	"github.com/lowlatency/arena/internal/entity"
	"github.com/lowlatency/arena/internal/netproto"
	"github.com/lowlatency/arena/internal/pool"
	"github.com/lowlatency/arena/internal/scene"
	"github.com/lowlatency/arena/internal/vec"
)

// snapshot is one received transform/avatar sample, timestamped against
// the client's local clock so InterpolatedTransform can place render
// time between two of them.
type snapshot struct {
	receivedAt   float64
	position     vec.Vec2
	orientation  float32
	avatarHealth float32
}

// mirrorEntity is one network identity's client-side shadow: its node in
// the shadow graph plus the two most recent snapshots to interpolate
// between.
type mirrorEntity struct {
	node    *scene.Node
	variant entity.Variant
	prev    snapshot
	curr    snapshot
	hasPrev bool
}

// Mirror is the client-side shadow scene graph: a read-only mirror of
// the server's entity world, keyed by network identity and populated
// entirely from EntityAdd/EntityUpdate/EntityRemove messages.
type Mirror struct {
	Graph    *scene.SceneGraph
	entities map[pool.Identity]*mirrorEntity

	reliableWatermark   sequenceWatermark
	unreliableWatermark sequenceWatermark
}

// sequenceWatermark is one lane's anti-replay high-water mark. The
// server numbers its reliable and unreliable sends from two independent
// counters, so each lane needs its own watermark — a stale unreliable
// position update must never be judged against the reliable lane's
// counter (or vice versa).
type sequenceWatermark struct {
	have bool
	last uint16
}

func (w *sequenceWatermark) accept(sequence uint16) bool {
	if !w.have {
		w.have = true
		w.last = sequence
		return true
	}
	// Reinterpret the wrapping uint16 subtraction as a signed 16-bit
	// delta so a wrapped-but-newer sequence (e.g. last=65535, next=0)
	// still compares as ahead.
	diff := int32(int16(sequence - w.last))
	if diff <= 0 {
		return false
	}
	w.last = sequence
	return true
}

func NewMirror() *Mirror {
	return &Mirror{
		Graph:    scene.New(),
		entities: make(map[pool.Identity]*mirrorEntity),
	}
}

// AcceptSequence reports whether a packet carrying the given header
// sequence (from its lane's counter) should be applied, and records it
// as that lane's new high-water mark if so. Packets older than the last
// accepted one on the same lane are discarded outright — their updates
// are stale by definition.
func (m *Mirror) AcceptSequence(reliable bool, sequence uint16) bool {
	if reliable {
		return m.reliableWatermark.accept(sequence)
	}
	return m.unreliableWatermark.accept(sequence)
}

// ApplyAdd allocates a mirror entity for a newly announced network
// identity. A duplicate EntityAdd for an identity already mirrored
// replaces its node's tag and resets interpolation state, rather than
// erroring — a server resend after a dropped ack looks identical to a
// first announcement from here.
func (m *Mirror) ApplyAdd(msg netproto.EntityAdd, now float64) error {
	variant := entity.Variant(msg.Variant)
	existing, ok := m.entities[msg.Identity]
	if ok {
		existing.node.Tag = msg.Variant
		existing.variant = variant
		existing.hasPrev = false
		existing.curr = snapshot{receivedAt: now, position: msg.Position, orientation: msg.Orientation, avatarHealth: msg.AvatarHealth}
		existing.node.SetLocalTransform(scene.Transform{Position: msg.Position, Orientation: msg.Orientation, Scale: 1})
		return nil
	}

	node := scene.NewNode(msg.Variant)
	node.SetLocalTransform(scene.Transform{Position: msg.Position, Orientation: msg.Orientation, Scale: 1})
	if err := m.Graph.Add(nil, node); err != nil {
		return err
	}
	m.entities[msg.Identity] = &mirrorEntity{
		node:    node,
		variant: variant,
		curr:    snapshot{receivedAt: now, position: msg.Position, orientation: msg.Orientation, avatarHealth: msg.AvatarHealth},
	}
	return nil
}

// ApplyUpdate folds a transform/avatar delta into the named entity's
// interpolation buffer, shifting curr to prev. Updates for an identity
// with no prior Add are dropped silently — the Add for it either hasn't
// arrived yet or was for an entity already removed.
func (m *Mirror) ApplyUpdate(msg netproto.EntityUpdate, now float64) {
	me, ok := m.entities[msg.Identity]
	if !ok {
		return
	}
	me.prev = me.curr
	me.hasPrev = true
	me.curr = snapshot{receivedAt: now, position: msg.Position, orientation: msg.Orientation, avatarHealth: msg.AvatarHealth}
}

// ApplyRemove detaches and forgets the named mirror entity.
func (m *Mirror) ApplyRemove(msg netproto.EntityRemove) error {
	me, ok := m.entities[msg.Identity]
	if !ok {
		return nil
	}
	delete(m.entities, msg.Identity)
	return m.Graph.Remove(me.node)
}

// Lookup returns the mirror node for a network identity.
func (m *Mirror) Lookup(id pool.Identity) (*scene.Node, entity.Variant, bool) {
	me, ok := m.entities[id]
	if !ok {
		return nil, 0, false
	}
	return me.node, me.variant, true
}

// Count returns the number of entities currently mirrored.
func (m *Mirror) Count() int { return len(m.entities) }

// InterpolatedTransform returns id's transform and avatar health at
// renderTime - interpDelay, linearly interpolated between the two most
// recent snapshots. Before a second snapshot has arrived, curr is
// returned as-is (nothing to interpolate toward yet).
func (m *Mirror) InterpolatedTransform(id pool.Identity, renderTime, interpDelay float64) (scene.Transform, float32, bool) {
	me, ok := m.entities[id]
	if !ok {
		return scene.Transform{}, 0, false
	}
	if !me.hasPrev {
		return scene.Transform{Position: me.curr.position, Orientation: me.curr.orientation, Scale: 1}, me.curr.avatarHealth, true
	}

	target := renderTime - interpDelay
	span := me.curr.receivedAt - me.prev.receivedAt
	var t float32
	if span > 0 {
		t = float32((target - me.prev.receivedAt) / span)
	}
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}

	pos := me.prev.position.Lerp(me.curr.position, t)
	orientation := me.prev.orientation + (me.curr.orientation-me.prev.orientation)*t
	health := me.prev.avatarHealth + (me.curr.avatarHealth-me.prev.avatarHealth)*t
	return scene.Transform{Position: pos, Orientation: orientation, Scale: 1}, health, true
}
