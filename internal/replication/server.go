// Package replication translates between simulation state (entity.World,
// player.Player) and wire messages (netproto), on both the server's
// emitting side and the client's shadow-graph side. Neither side owns a
// socket; session reads/writes datagrams and calls into this package to
// decide what they mean.
package replication

import (
	"github.com/lowlatency/arena/internal/entity"
	"github.com/lowlatency/arena/internal/netproto"
	"github.com/lowlatency/arena/internal/player"
)

// JoinSnapshot builds the full state a newly accepted connection needs:
// every roster entry's name and score, then every living entity.
func JoinSnapshot(world *entity.World, roster []*player.Player) []netproto.Message {
	var out []netproto.Message
	for _, p := range roster {
		out = append(out, netproto.ClientJoin{Player: p.Identity, Name: p.Name})
		out = append(out, netproto.PlayerScore{
			Player: p.Identity,
			Kills:  uint16(p.Kills),
			Deaths: uint16(p.Deaths),
		})
	}
	world.Each(func(e *entity.Entity) {
		out = append(out, entityAddFor(e))
	})
	return out
}

// Deltas emits one EntityUpdate per dirty entity and clears its dirty
// flag, for the once-per-tick replication pass.
func Deltas(world *entity.World) []netproto.Message {
	var out []netproto.Message
	world.Each(func(e *entity.Entity) {
		if !e.Dirty {
			return
		}
		out = append(out, entityUpdateFor(e))
		e.Dirty = false
	})
	return out
}

// EntityAddedMessage builds the EntityAdd announcing a just-spawned
// entity, for callers (e.g. a weapon-fire projectile spawn) that need
// one outside the batch Deltas/JoinSnapshot produce.
func EntityAddedMessage(e *entity.Entity) netproto.Message {
	return entityAddFor(e)
}

// RemovalMessage builds the EntityRemove for e.
func RemovalMessage(e *entity.Entity) netproto.Message {
	return netproto.EntityRemove{Identity: e.Identity}
}

// KillMessage announces an avatar death and its attribution. killer may
// be nil, giving the zero identity, when the death had no attributable
// killer (e.g. damage from a projectile with no owning player).
func KillMessage(killer, victim *player.Player) netproto.Message {
	m := netproto.PlayerKill{Victim: victim.Identity}
	if killer != nil {
		m.Killer = killer.Identity
	}
	return m
}

// ScoreMessage reports one player's current kill/death tally.
func ScoreMessage(p *player.Player) netproto.Message {
	return netproto.PlayerScore{Player: p.Identity, Kills: uint16(p.Kills), Deaths: uint16(p.Deaths)}
}

func entityAddFor(e *entity.Entity) netproto.Message {
	t := e.WorldTransform()
	msg := netproto.EntityAdd{
		Identity:    e.Identity,
		Variant:     uint8(e.Variant),
		Position:    t.Position,
		Orientation: t.Orientation,
	}
	if e.Avatar != nil {
		msg.AvatarHealth = e.Avatar.Health
	}
	return msg
}

func entityUpdateFor(e *entity.Entity) netproto.Message {
	t := e.WorldTransform()
	msg := netproto.EntityUpdate{
		Identity:    e.Identity,
		Position:    t.Position,
		Orientation: t.Orientation,
	}
	if e.Avatar != nil {
		msg.AvatarHealth = e.Avatar.Health
	}
	return msg
}
