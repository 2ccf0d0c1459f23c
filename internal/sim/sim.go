// Package sim implements the fixed-timestep authoritative tick pipeline:
// behavior execution, variant-specific update, integration, and
// broad-phase collision resolution, in a fixed order.
// Draining inbound messages (step 1) and emitting replication (step 6)
// happen around Tick, in session — they need connection state Tick
// itself has no business touching.
package sim

import (
	"github.com/lowlatency/arena/internal/entity"
	"github.com/lowlatency/arena/internal/vec"
)

// FireEvent describes one weapon discharge Tick produced, for session to
// turn into a spawned projectile entity. Tick has already charged the
// weapon's energy and cooldown for it.
type FireEvent struct {
	Shooter *entity.Entity
	Slot     WeaponSlot
	Origin   vec.Vec2
	Aim      float32
}

// WeaponSlot names which of an avatar's two weapons fired.
type WeaponSlot int

const (
	WeaponSlotPrimary WeaponSlot = iota
	WeaponSlotSecondary
)

const weaponFireCost = 0.34 // energy consumed per shot, ~3 shots per full charge

// Tick runs one authoritative simulation step and
// returns the weapon-fire events produced during behavior execution, for
// the caller to realize as spawned entities.
func Tick(w *entity.World, dt float32) []FireEvent {
	w.Graph.ExecuteBehaviors(dt)

	events := collectFireEvents(w)

	w.ServerUpdateAll(dt)
	w.Integrate(dt)
	w.ResolveCollisions()

	return events
}

func collectFireEvents(w *entity.World) []FireEvent {
	var events []FireEvent
	w.Each(func(e *entity.Entity) {
		if e.Variant != entity.VariantAvatar || e.Avatar == nil {
			return
		}
		for _, b := range e.Behaviors() {
			switch fb := b.(type) {
			case *entity.PlayerInputBehavior:
				events = append(events, fireFromRequest(e, fb.FireRequested[0], fb.FireRequested[1])...)
				fb.FireRequested = [2]bool{}
			case *entity.AIBehavior:
				if fb.FireRequested {
					events = append(events, fireFromRequest(e, true, false)...)
					fb.FireRequested = false
				}
			}
		}
	})
	return events
}

func fireFromRequest(e *entity.Entity, primary, secondary bool) []FireEvent {
	var out []FireEvent
	pos := e.WorldTransform().Position
	aim := e.WorldTransform().Orientation
	if primary && tryFire(&e.Avatar.Primary) {
		out = append(out, FireEvent{Shooter: e, Slot: WeaponSlotPrimary, Origin: pos, Aim: aim})
	}
	if secondary && tryFire(&e.Avatar.Secondary) {
		out = append(out, FireEvent{Shooter: e, Slot: WeaponSlotSecondary, Origin: pos, Aim: aim})
	}
	return out
}

func tryFire(w *entity.WeaponState) bool {
	if w.NextFireRemaining > 0 || w.Energy < weaponFireCost {
		return false
	}
	w.Energy -= weaponFireCost
	w.NextFireRemaining = fireDelayFor(w.Kind)
	return true
}

func fireDelayFor(kind entity.WeaponKind) float32 {
	switch kind {
	case entity.WeaponRocketLauncher:
		return 1.2
	default:
		return 0.12
	}
}
