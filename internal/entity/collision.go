package entity

import (
	"github.com/lowlatency/arena/internal/player"
	"github.com/lowlatency/arena/internal/pool"
	"github.com/lowlatency/arena/internal/vec"
)

// DeathHook is invoked when an avatar's health reaches zero, after the
// health-cap/armor arithmetic but before the avatar entity is removed.
// Session (C8) wires this to start the victim's respawn timer, bump the
// killer's score, and broadcast PlayerKill — concerns entity/world
// intentionally knows nothing about.
type DeathHook func(victim, killer *player.Player)

// ResolveCollisions rebuilds the broad-phase grid from current entity
// positions, tests every candidate pair, and dispatches handleCollision
// for any pair within colliding distance.
func (w *World) ResolveCollisions() {
	w.grid.reset()
	w.Each(func(e *Entity) { w.grid.insert(e) })

	w.grid.candidatePairs(func(a, b *Entity) {
		if a.Removed() || b.Removed() {
			return
		}
		dist := vec.Distance(a.WorldTransform().Position, b.WorldTransform().Position)
		if dist > a.ColliderRadius+b.ColliderRadius {
			return
		}
		// Deterministic order: smaller identity first.
		first, second := a, b
		if !LessIdentity(first.Identity, second.Identity) {
			first, second = second, first
		}
		w.handleCollision(first, second, w.onDeath)
		w.handleCollision(second, first, w.onDeath)
	})
}

// handleCollision dispatches one side of a pairwise collision: initiator
// reacts to target. The variant-pair table is implemented as a switch
// keyed by (initiator.Variant, target.Variant) rather than virtual
// dispatch, per the tagged-enum design.
func (w *World) handleCollision(initiator, target *Entity, onDeath DeathHook) {
	if initiator.Removed() || target.Removed() {
		return
	}
	// A projectile passes through its own shooter's avatar untouched.
	ownAvatar := initiator.Owner != nil && target.Owner == initiator.Owner
	switch initiator.Variant {
	case VariantBullet:
		if target.Variant == VariantAvatar && !ownAvatar {
			w.damageAvatar(initiator, target, MiniGunDamage, onDeath)
			w.Remove(initiator)
		}
	case VariantRocket:
		if target.Variant == VariantAvatar && !ownAvatar {
			w.splashDamage(initiator, RocketSplashRadius, RocketSplashDamage, onDeath)
			w.Remove(initiator)
		}
	case VariantAvatar:
		if target.IsCollectible() {
			w.applyCollectible(initiator, target)
		}
	}
}

// handleWallCollision applies the wall-collision table entry for
// projectiles leaving the world rectangle ("Bullet|Wall:
// remove bullet"; rockets splash the same as hitting an avatar).
func (w *World) handleWallCollision(e *Entity, onDeath DeathHook) {
	switch e.Variant {
	case VariantBullet:
		w.Remove(e)
	case VariantRocket:
		w.splashDamage(e, RocketSplashRadius, RocketSplashDamage, onDeath)
		w.Remove(e)
	}
}

func (w *World) damageAvatar(source, avatar *Entity, amount float32, onDeath DeathHook) {
	if source.Owner != nil && avatar.Owner == source.Owner {
		return // a player's own projectile never damages their own avatar
	}
	applyDamage(avatar, amount)
	if avatar.Avatar.Health <= 0 {
		w.killAvatar(avatar, source.Owner, onDeath)
	} else {
		avatar.MarkDirty()
	}
}

func (w *World) splashDamage(source *Entity, radius, amount float32, onDeath DeathHook) {
	center := source.WorldTransform().Position
	w.Each(func(avatar *Entity) {
		if avatar.Variant != VariantAvatar || avatar.Removed() {
			return
		}
		if source.Owner != nil && avatar.Owner == source.Owner {
			return
		}
		if vec.Distance(center, avatar.WorldTransform().Position) > radius {
			return
		}
		applyDamage(avatar, amount)
		if avatar.Avatar.Health <= 0 {
			w.killAvatar(avatar, source.Owner, onDeath)
		} else {
			avatar.MarkDirty()
		}
	})
}

func applyDamage(avatar *Entity, amount float32) {
	if avatar.Avatar.ArmorRemaining > 0 {
		amount *= ArmorDamageFactor
	}
	avatar.Avatar.Health -= amount
}

func (w *World) killAvatar(avatar *Entity, killer *player.Player, onDeath DeathHook) {
	victim := avatar.Owner
	if onDeath != nil {
		onDeath(victim, killer)
	}
	if victim != nil {
		victim.AvatarIdentity = pool.Identity{}
	}
	w.Remove(avatar)
}

func (w *World) applyCollectible(avatar, collectible *Entity) {
	switch collectible.Variant {
	case VariantCollectibleHealth:
		if avatar.Avatar.Health < avatar.Avatar.HealthCap {
			avatar.Avatar.Health += RegenerationDeltaPerTick * 5
			if avatar.Avatar.Health > avatar.Avatar.HealthCap {
				avatar.Avatar.Health = avatar.Avatar.HealthCap
			}
			avatar.MarkDirty()
		}
	case VariantCollectibleRegeneration, VariantCollectibleQuadDamage, VariantCollectibleInvisibility:
		if avatar.Avatar.PowerUp != PowerUpNone {
			return // an active power-up blocks the pickup; the collectible stays
		}
		avatar.Avatar.PowerUp = powerUpFor(collectible.Variant)
		avatar.Avatar.PowerUpRemaining = PowerUpDuration
		if avatar.Avatar.PowerUp == PowerUpRegeneration {
			avatar.Avatar.HealthCap = RegenerationHealthCap
		}
		avatar.MarkDirty()
	case VariantCollectibleArmor:
		avatar.Avatar.ArmorRemaining = PowerUpDuration
		avatar.MarkDirty()
	default:
		return
	}
	w.Remove(collectible)
}

func powerUpFor(v Variant) PowerUp {
	switch v {
	case VariantCollectibleRegeneration:
		return PowerUpRegeneration
	case VariantCollectibleQuadDamage:
		return PowerUpQuadDamage
	case VariantCollectibleInvisibility:
		return PowerUpInvisibility
	default:
		return PowerUpNone
	}
}

// PowerUpDuration is the default timed-modifier duration
// "duration=D"); the core does not vary it per power-up.
const PowerUpDuration float32 = 15.0
