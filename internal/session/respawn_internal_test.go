package session

import (
	"testing"

	"go.uber.org/zap"

	"github.com/lowlatency/arena/internal/entity"
	"github.com/lowlatency/arena/internal/player"
	"github.com/lowlatency/arena/internal/vec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOnAvatarDeathCreditsKillerAndStartsRespawnTimer(t *testing.T) {
	world := entity.NewWorld(entity.Rect{Min: vec.New(-50, -50), Max: vec.New(50, 50)}, 2)
	s := NewSession(ModeServer, zap.NewNop(), world, []vec.Vec2{vec.Zero})

	victim, err := s.Join("alice")
	require.NoError(t, err)
	killer, err := s.Join("bob")
	require.NoError(t, err)

	var reportedKiller, reportedVictim *player.Player
	s.OnKill(func(k, v *player.Player) { reportedKiller, reportedVictim = k, v })

	s.onAvatarDeath(victim, killer)

	assert.Equal(t, 1, killer.Kills)
	assert.Equal(t, 1, victim.Deaths)
	assert.Equal(t, RespawnDelay, victim.RespawnRemaining)
	assert.Same(t, killer, reportedKiller)
	assert.Same(t, victim, reportedVictim)
}

func TestOnAvatarDeathWithNoKillerOnlyCreditsDeath(t *testing.T) {
	world := entity.NewWorld(entity.Rect{Min: vec.New(-50, -50), Max: vec.New(50, 50)}, 2)
	s := NewSession(ModeServer, zap.NewNop(), world, []vec.Vec2{vec.Zero})

	victim, err := s.Join("alice")
	require.NoError(t, err)

	s.onAvatarDeath(victim, nil)

	assert.Equal(t, 1, victim.Deaths)
	assert.Equal(t, RespawnDelay, victim.RespawnRemaining)
}
