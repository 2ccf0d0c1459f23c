package entity

// ServerUpdateAll runs server_update(dt) over every entity, pre-order,
// on the authority. Integration (position += velocity
// * dt) happens separately in Integrate; this pass is variant-specific
// logic only: power-up expiry, health regeneration, weapon cooldowns.
func (w *World) ServerUpdateAll(dt float32) {
	w.Each(func(e *Entity) {
		e.serverUpdate(dt)
	})
}

func (e *Entity) serverUpdate(dt float32) {
	if e.Variant != VariantAvatar || e.Avatar == nil {
		return
	}
	a := e.Avatar

	if a.ArmorRemaining > 0 {
		a.ArmorRemaining -= dt
		if a.ArmorRemaining < 0 {
			a.ArmorRemaining = 0
		}
	}

	if a.PowerUp != PowerUpNone {
		a.PowerUpRemaining -= dt
		if a.PowerUpRemaining <= 0 {
			if a.PowerUp == PowerUpRegeneration {
				a.HealthCap = BaseAvatarHealthCap
				if a.Health > a.HealthCap {
					a.Health = a.HealthCap
				}
			}
			a.PowerUp = PowerUpNone
			a.PowerUpRemaining = 0
			e.MarkDirty()
		} else if a.PowerUp == PowerUpRegeneration && a.Health < a.HealthCap {
			a.Health += RegenerationDeltaPerTick * dt
			if a.Health > a.HealthCap {
				a.Health = a.HealthCap
			}
			e.MarkDirty()
		}
	}

	tickWeapon(&a.Primary, dt)
	tickWeapon(&a.Secondary, dt)
}

func tickWeapon(w *WeaponState, dt float32) {
	if w.NextFireRemaining > 0 {
		w.NextFireRemaining -= dt
		if w.NextFireRemaining < 0 {
			w.NextFireRemaining = 0
		}
	}
	if w.Energy < 1 {
		w.Energy += dt * 0.2
		if w.Energy > 1 {
			w.Energy = 1
		}
	}
}

// ClientUpdateAll runs client_update(dt) over every mirror entity: pure
// integration, no collision or gameplay effects, since the mirror graph
// only ever reflects server-authoritative state.
func (w *World) ClientUpdateAll(dt float32) {
	w.Integrate(dt)
}
