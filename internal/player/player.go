// Package player implements the Player data model: identity,
// display name, team color, kill/death counters, RTT estimate, and the
// weak reference to a currently-live avatar. It is kept separate from
// both entity and session so neither needs to import the other through
// it — Player→Avatar is a generational-identity lookup, never a direct
// pointer (sidesteps a cyclic-reference pair between Player and Entity).
package player

import (
	"math"

	"github.com/lowlatency/arena/internal/pool"
)

// Kind distinguishes how a player is driven.
type Kind uint8

const (
	KindHuman Kind = iota
	KindBot
	KindServerOwned
)

// MaxPlayers is the roster capacity.
const MaxPlayers = 8

// MaxNameLength is the bounded-string cap for a display name.
const MaxNameLength = 64

// Color is an RGB team color in [0,1] per channel, the form the
// rendering collaborator (out of scope) consumes directly.
type Color struct {
	R, G, B float32
}

// goldenAngle is 2π divided by the golden ratio squared: successive slots hash
// to well-spread hues with no lookup table, so the same join order
// always produces the same palette.
const goldenAngle = 2.399963229728653

// TeamColor derives a team color deterministically from a player's slot,
// so two sessions with the same join order always agree on the palette.
func TeamColor(slot uint8) Color {
	hue := math.Mod(float64(slot)*goldenAngle, 2*math.Pi)
	r, g, b := hsvToRGB(hue/(2*math.Pi), 0.65, 0.95)
	return Color{R: r, G: g, B: b}
}

func hsvToRGB(h, s, v float64) (r, g, b float32) {
	i := math.Floor(h * 6)
	f := h*6 - i
	p := v * (1 - s)
	q := v * (1 - f*s)
	t := v * (1 - (1-f)*s)
	switch int(i) % 6 {
	case 0:
		return float32(v), float32(t), float32(p)
	case 1:
		return float32(q), float32(v), float32(p)
	case 2:
		return float32(p), float32(v), float32(t)
	case 3:
		return float32(p), float32(q), float32(v)
	case 4:
		return float32(t), float32(p), float32(v)
	default:
		return float32(v), float32(p), float32(q)
	}
}

// Player is one roster entry. Identity is the player's own (generation,
// slot) pair, distinct from any avatar entity's identity.
type Player struct {
	Identity pool.Identity
	Kind     Kind
	Name     string
	Color    Color

	Kills  int
	Deaths int

	RTTEstimate float32 // seconds

	// AvatarIdentity names the player's current avatar, looked up through
	// the entity world's identity table — a weak reference, not a
	// pointer, so a dead avatar never dangles a live Player.
	AvatarIdentity pool.Identity

	// RespawnRemaining counts down from RespawnDelay to 0 after the
	// avatar dies; the session spawns a new avatar once it reaches 0.
	RespawnRemaining float32
}

// HasAvatar reports whether the player currently has a live avatar.
func (p *Player) HasAvatar() bool {
	return !p.AvatarIdentity.IsNone()
}

// Reset clears a player to an empty roster slot's zero state. Implements
// pool.Resettable so a Player backing instance can be pool-recycled the
// way entities are.
func (p *Player) Reset() {
	*p = Player{}
}
