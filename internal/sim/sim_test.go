package sim_test

import (
	"testing"

	"github.com/lowlatency/arena/internal/entity"
	"github.com/lowlatency/arena/internal/sim"
	"github.com/lowlatency/arena/internal/vec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedInput struct{ snap entity.InputSnapshot }

func (f fixedInput) Input() entity.InputSnapshot { return f.snap }

func newTestWorld() *entity.World {
	return entity.NewWorld(entity.Rect{Min: vec.New(-50, -50), Max: vec.New(50, 50)}, 2)
}

func TestTickAdvancesEntityPositionByVelocity(t *testing.T) {
	w := newTestWorld()
	e, err := w.Spawn(entity.VariantBullet, vec.Zero, entity.BulletColliderRadius, nil)
	require.NoError(t, err)
	e.Velocity = vec.New(10, 0)

	sim.Tick(w, 1.0)
	assert.InDelta(t, 10, e.WorldTransform().Position.X, 0.001)
}

func TestTickProducesFireEventWhenInputRequestsIt(t *testing.T) {
	w := newTestWorld()
	avatar, err := w.Spawn(entity.VariantAvatar, vec.Zero, 1, nil)
	require.NoError(t, err)

	b := &entity.PlayerInputBehavior{
		Entity: avatar,
		Source: fixedInput{snap: entity.InputSnapshot{FirePrimary: true}},
	}
	require.NoError(t, w.Graph.AddBehavior(avatar.Node, b))

	events := sim.Tick(w, 0.016)
	require.Len(t, events, 1)
	assert.Equal(t, sim.WeaponSlotPrimary, events[0].Slot)
	assert.Same(t, avatar, events[0].Shooter)
}

func TestTickRespectsWeaponCooldown(t *testing.T) {
	w := newTestWorld()
	avatar, err := w.Spawn(entity.VariantAvatar, vec.Zero, 1, nil)
	require.NoError(t, err)

	b := &entity.PlayerInputBehavior{
		Entity: avatar,
		Source: fixedInput{snap: entity.InputSnapshot{FirePrimary: true}},
	}
	require.NoError(t, w.Graph.AddBehavior(avatar.Node, b))

	first := sim.Tick(w, 0.016)
	second := sim.Tick(w, 0.016)
	assert.Len(t, first, 1)
	assert.Len(t, second, 0)
}
