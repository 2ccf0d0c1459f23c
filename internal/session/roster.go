package session

import (
	"fmt"

	"github.com/lowlatency/arena/internal/player"
	"github.com/lowlatency/arena/internal/pool"
)

// ErrServerFull is returned by Join once the roster holds MaxPlayers.
var ErrServerFull = fmt.Errorf("session: roster at capacity (%d players)", player.MaxPlayers)

// Join admits a new player under name, allocating a roster identity and
// a deterministic team color from its slot, and spawns its first avatar
// immediately (a fresh join never waits out a respawn timer).
func (s *Session) Join(name string) (*player.Player, error) {
	if len(name) > player.MaxNameLength {
		name = name[:player.MaxNameLength]
	}
	id, err := s.playerSlots.Allocate()
	if err != nil {
		return nil, ErrServerFull
	}
	p := &player.Player{
		Identity: id,
		Kind:     player.KindHuman,
		Name:     name,
		Color:    player.TeamColor(id.Slot),
	}
	s.roster[id] = p
	s.rosterOrder = append(s.rosterOrder, p)
	s.spawnAvatarFor(p)
	return p, nil
}

// Leave removes a player from the roster, recycling its slot and
// removing its live avatar (if any) from the world.
func (s *Session) Leave(id pool.Identity) {
	p, ok := s.roster[id]
	if !ok {
		return
	}
	if p.HasAvatar() {
		if avatar, ok := s.World.Lookup(p.AvatarIdentity); ok {
			s.World.Remove(avatar)
		}
	}
	delete(s.roster, id)
	for i, other := range s.rosterOrder {
		if other == p {
			s.rosterOrder = append(s.rosterOrder[:i], s.rosterOrder[i+1:]...)
			break
		}
	}
	s.playerSlots.Recycle(id)
}

// forgetRemotePlayer removes a roster entry learned from the wire
// (client mode), without touching the local identity allocator or
// world — the server owns both of those.
func (s *Session) forgetRemotePlayer(id pool.Identity) {
	p, ok := s.roster[id]
	if !ok {
		return
	}
	delete(s.roster, id)
	for i, other := range s.rosterOrder {
		if other == p {
			s.rosterOrder = append(s.rosterOrder[:i], s.rosterOrder[i+1:]...)
			break
		}
	}
}

// Player looks up a roster entry by identity.
func (s *Session) Player(id pool.Identity) (*player.Player, bool) {
	p, ok := s.roster[id]
	return p, ok
}

// Roster returns the current roster in join order.
func (s *Session) Roster() []*player.Player {
	return s.rosterOrder
}

// PlayerCount returns the number of players currently on the roster.
func (s *Session) PlayerCount() int {
	return len(s.roster)
}
