package session

import (
	"github.com/lowlatency/arena/internal/entity"
	"github.com/lowlatency/arena/internal/player"
	"github.com/lowlatency/arena/internal/pool"
	"github.com/lowlatency/arena/internal/replication"
)

// latestInput is the per-player InputSource an inbound netproto.Input
// message updates and PlayerInputBehavior.Advance reads each tick.
type latestInput struct {
	snap entity.InputSnapshot
}

func (l *latestInput) Input() entity.InputSnapshot { return l.snap }

func (l *latestInput) set(snap entity.InputSnapshot) { l.snap = snap }

// onAvatarDeath is installed as the world's death hook: it credits the
// kill, clears the victim's avatar reference, starts its respawn
// countdown, and queues a PlayerKill broadcast to every connection.
func (s *Session) onAvatarDeath(victim, killer *player.Player) {
	if victim != nil {
		victim.AvatarIdentity = pool.None
		victim.Deaths++
		victim.RespawnRemaining = RespawnDelay
		delete(s.inputs, victim.Identity)
	}
	if killer != nil && killer != victim {
		killer.Kills++
	}
	if s.onKill != nil {
		s.onKill(killer, victim)
	}
	if victim != nil {
		s.queueBroadcast(replication.KillMessage(killer, victim), true, "")
	}
}

// AdvanceRespawns counts down every dead player's respawn timer and
// spawns a fresh avatar once it reaches zero. Only meaningful in Server
// mode; a client never spawns locally.
func (s *Session) AdvanceRespawns(dt float32) {
	for _, p := range s.rosterOrder {
		if p.HasAvatar() || p.RespawnRemaining <= 0 {
			continue
		}
		p.RespawnRemaining -= dt
		if p.RespawnRemaining > 0 {
			continue
		}
		s.spawnAvatarFor(p)
	}
}

const avatarColliderRadius = 0.5

func (s *Session) spawnAvatarFor(p *player.Player) {
	pos := s.nextSpawnPoint()
	avatar, err := s.World.Spawn(entity.VariantAvatar, pos, avatarColliderRadius, nil)
	if err != nil {
		// Entity pool exhausted; the player stays dead and retries the
		// spawn once another RespawnDelay has elapsed.
		p.RespawnRemaining = RespawnDelay
		return
	}
	avatar.Owner = p
	p.AvatarIdentity = avatar.Identity

	input := &latestInput{}
	s.inputs[p.Identity] = input
	behavior := &entity.PlayerInputBehavior{Entity: avatar, Source: input}
	s.World.Graph.AddBehavior(avatar.Node, behavior)
}
