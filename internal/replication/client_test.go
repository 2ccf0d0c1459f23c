package replication_test

import (
	"testing"

	"github.com/lowlatency/arena/internal/entity"
	"github.com/lowlatency/arena/internal/netproto"
	"github.com/lowlatency/arena/internal/pool"
	"github.com/lowlatency/arena/internal/replication"
	"github.com/lowlatency/arena/internal/vec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyAddCreatesMirrorEntity(t *testing.T) {
	m := replication.NewMirror()
	id := pool.Identity{Generation: 1, Slot: 1}
	err := m.ApplyAdd(netproto.EntityAdd{Identity: id, Variant: uint8(entity.VariantAvatar), Position: vec.New(1, 2)}, 0)
	require.NoError(t, err)

	node, variant, ok := m.Lookup(id)
	require.True(t, ok)
	assert.NotNil(t, node)
	assert.Equal(t, entity.VariantAvatar, variant)
	assert.Equal(t, 1, m.Count())
}

func TestApplyRemoveForgetsEntity(t *testing.T) {
	m := replication.NewMirror()
	id := pool.Identity{Generation: 1, Slot: 1}
	require.NoError(t, m.ApplyAdd(netproto.EntityAdd{Identity: id}, 0))

	require.NoError(t, m.ApplyRemove(netproto.EntityRemove{Identity: id}))
	_, _, ok := m.Lookup(id)
	assert.False(t, ok)
	assert.Equal(t, 0, m.Count())
}

func TestApplyUpdateForUnknownIdentityIsANoop(t *testing.T) {
	m := replication.NewMirror()
	m.ApplyUpdate(netproto.EntityUpdate{Identity: pool.Identity{Generation: 1, Slot: 9}}, 0)
	assert.Equal(t, 0, m.Count())
}

func TestInterpolatedTransformBeforeSecondSnapshotReturnsCurrent(t *testing.T) {
	m := replication.NewMirror()
	id := pool.Identity{Generation: 1, Slot: 1}
	require.NoError(t, m.ApplyAdd(netproto.EntityAdd{Identity: id, Position: vec.New(1, 1)}, 0))

	transform, _, ok := m.InterpolatedTransform(id, 1, 0.1)
	require.True(t, ok)
	assert.Equal(t, vec.New(1, 1), transform.Position)
}

func TestInterpolatedTransformBlendsBetweenTwoSnapshots(t *testing.T) {
	m := replication.NewMirror()
	id := pool.Identity{Generation: 1, Slot: 1}
	require.NoError(t, m.ApplyAdd(netproto.EntityAdd{Identity: id, Position: vec.New(0, 0)}, 0))
	m.ApplyUpdate(netproto.EntityUpdate{Identity: id, Position: vec.New(10, 0)}, 1)

	transform, _, ok := m.InterpolatedTransform(id, 0.5, 0)
	require.True(t, ok)
	assert.InDelta(t, 5, transform.Position.X, 0.001)
}

func TestAcceptSequenceDiscardsOlderOrDuplicate(t *testing.T) {
	m := replication.NewMirror()
	assert.True(t, m.AcceptSequence(false, 10))
	assert.True(t, m.AcceptSequence(false, 11))
	assert.False(t, m.AcceptSequence(false, 11))
	assert.False(t, m.AcceptSequence(false, 5))
}

func TestAcceptSequenceTracksReliableAndUnreliableLanesIndependently(t *testing.T) {
	m := replication.NewMirror()
	assert.True(t, m.AcceptSequence(true, 5))
	assert.True(t, m.AcceptSequence(false, 1))
	assert.True(t, m.AcceptSequence(false, 2))
	assert.False(t, m.AcceptSequence(true, 5))
	assert.True(t, m.AcceptSequence(true, 6))
}
