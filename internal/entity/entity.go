package entity

import (
	"github.com/lowlatency/arena/internal/pool"
	"github.com/lowlatency/arena/internal/player"
	"github.com/lowlatency/arena/internal/scene"
	"github.com/lowlatency/arena/internal/vec"
)

// Tuning constants referenced by server_update and the collision table.
// These are the core's own defaults, not configuration — only the
// settings a deployment's config file exposes are user-settable.
const (
	MaxAvatarHealth          = 200
	BaseAvatarHealthCap      = 100
	RegenerationHealthCap    = MaxAvatarHealth
	RegenerationDeltaPerTick = 2.0
	ArmorDamageFactor        = 0.5
	MiniGunDamage            = 10.0
	RocketSplashRadius       = 4.0
	RocketSplashDamage       = 60.0
	BulletSpeed              = 30.0
	RocketSpeed              = 18.0
	BulletColliderRadius     = 0.15
	RocketColliderRadius     = 0.3
)

// WeaponState is one weapon slot's live state.
type WeaponState struct {
	Kind              WeaponKind
	Energy            float32 // [0,1]
	NextFireRemaining float32 // seconds until the slot may fire again
}

// AvatarState holds the attributes only VariantAvatar entities carry.
type AvatarState struct {
	Health    float32
	HealthCap float32

	PowerUp          PowerUp
	PowerUpRemaining float32

	ArmorRemaining float32 // independent of PowerUp; see variant.go PowerUp doc

	Primary   WeaponState
	Secondary WeaponState
}

// Entity is a node in the scene graph augmented with the simulation
// attributes every networked entity carries ("Entity :
// SceneNode"). Variant-specific state lives in the Avatar pointer,
// non-nil only when Variant == VariantAvatar — the tagged-enum dispatch
// design applied to a Go struct instead of a class
// hierarchy.
type Entity struct {
	*scene.Node

	Variant  Variant
	Identity pool.Identity

	Velocity       vec.Vec2
	ColliderRadius float32

	// Owner is a strong reference to the firing/owning player, held only
	// for the entity's attached lifetime (breaks the cyclic-reference
	// problem a naive bidirectional pointer pair would create):
	// the avatar's own owner, or the player who fired a bullet/rocket/
	// placed a mine, for kill/damage attribution.
	Owner *player.Player

	// Dirty marks server-side state that hasn't been replicated yet.
	Dirty bool

	Avatar *AvatarState // non-nil only for VariantAvatar

	world *World
}

// Reset restores a recycled Entity to its zero simulation state. The
// embedded *scene.Node is intentionally left alone: World re-homes it
// explicitly on reallocation, since a fresh Node (new tag, no stale
// parent/sibling links) is what a freshly spawned entity needs, not a
// zeroed one.
func (e *Entity) Reset() {
	e.Variant = 0
	e.Identity = pool.Identity{}
	e.Velocity = vec.Zero
	e.ColliderRadius = 0
	e.Owner = nil
	e.Dirty = false
	e.Avatar = nil
}

// LessIdentity reports whether a's identity sorts before b's — slot
// first, then generation — the deterministic tie-break collision
// resolution uses ("smaller identity first").
func LessIdentity(a, b pool.Identity) bool {
	if a.Slot != b.Slot {
		return a.Slot < b.Slot
	}
	return a.Generation < b.Generation
}

// MarkDirty flags the entity as carrying unreplicated state.
func (e *Entity) MarkDirty() { e.Dirty = true }

func newAvatarState() *AvatarState {
	return &AvatarState{
		Health:    MaxAvatarHealth,
		HealthCap: BaseAvatarHealthCap,
		Primary:   WeaponState{Kind: WeaponMiniGun, Energy: 1},
		Secondary: WeaponState{Kind: WeaponRocketLauncher, Energy: 1},
	}
}
