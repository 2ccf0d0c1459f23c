package replication_test

import (
	"testing"

	"github.com/lowlatency/arena/internal/entity"
	"github.com/lowlatency/arena/internal/netproto"
	"github.com/lowlatency/arena/internal/player"
	"github.com/lowlatency/arena/internal/pool"
	"github.com/lowlatency/arena/internal/replication"
	"github.com/lowlatency/arena/internal/vec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWorld(t *testing.T) *entity.World {
	t.Helper()
	return entity.NewWorld(entity.Rect{Min: vec.New(-50, -50), Max: vec.New(50, 50)}, 2)
}

func TestJoinSnapshotIncludesRosterAndEntities(t *testing.T) {
	w := newWorld(t)
	_, err := w.Spawn(entity.VariantAvatar, vec.New(1, 2), 1, nil)
	require.NoError(t, err)

	roster := []*player.Player{
		{Identity: pool.Identity{Generation: 1, Slot: 1}, Name: "alice", Kills: 3, Deaths: 1},
	}

	msgs := replication.JoinSnapshot(w, roster)

	var sawJoin, sawScore, sawAdd bool
	for _, m := range msgs {
		switch v := m.(type) {
		case netproto.ClientJoin:
			assert.Equal(t, "alice", v.Name)
			sawJoin = true
		case netproto.PlayerScore:
			assert.Equal(t, uint16(3), v.Kills)
			sawScore = true
		case netproto.EntityAdd:
			sawAdd = true
		}
	}
	assert.True(t, sawJoin)
	assert.True(t, sawScore)
	assert.True(t, sawAdd)
}

func TestDeltasOnlyEmitsForDirtyEntities(t *testing.T) {
	w := newWorld(t)
	e, err := w.Spawn(entity.VariantAvatar, vec.Zero, 1, nil)
	require.NoError(t, err)
	e.Dirty = false

	assert.Empty(t, replication.Deltas(w))

	e.MarkDirty()
	msgs := replication.Deltas(w)
	require.Len(t, msgs, 1)
	update, ok := msgs[0].(netproto.EntityUpdate)
	require.True(t, ok)
	assert.Equal(t, e.Identity, update.Identity)

	assert.Empty(t, replication.Deltas(w))
}

func TestKillMessageWithNoAttributableKillerLeavesKillerZero(t *testing.T) {
	victim := &player.Player{Identity: pool.Identity{Generation: 1, Slot: 2}}
	msg := replication.KillMessage(nil, victim).(netproto.PlayerKill)
	assert.True(t, msg.Killer.IsNone())
	assert.Equal(t, victim.Identity, msg.Victim)
}
