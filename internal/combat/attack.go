package combat

import (
	"math"

	"github.com/autobattle/roomserver/internal/combat/script"
	"github.com/autobattle/roomserver/internal/hexgrid"
)

// damageFormula implements spec §4.4: round(attack * (1 - armor/(armor+100))).
func damageFormula(attack, armor float64) float64 {
	return math.Round(attack * (1 - armor/(armor+100)))
}

// resolveAttacks is per-tick phase 4: each alive unit either casts its
// ability (mana full) or auto-attacks, if in range and off cooldown.
func (s *Simulation) resolveAttacks() {
	for _, id := range s.order {
		u := s.units[id]
		if !u.alive || u.targetID == "" {
			continue
		}
		target := s.units[u.targetID]
		if !target.alive {
			continue
		}
		if hexgrid.Distance(u.pos, target.pos) > u.stats.Range {
			continue
		}
		if s.tick < u.attackReadyTick || s.tick < u.arrivalTick {
			continue
		}
		ranged := u.stats.Range > 1
		if !ranged && s.tick < target.arrivalTick {
			continue
		}

		if u.mana >= u.manaCap {
			s.castAbility(u, target)
		} else {
			s.castAttack(u, target)
		}
	}
}

func (s *Simulation) castAttack(u, target *unit) {
	cycleTicks := ticksFor(1.0 / u.stats.AttackSpeed)
	landingOffset := ticksFor(attackHitFrac / u.stats.AttackSpeed)
	landingTick := s.tick + landingOffset
	damage := damageFormula(u.stats.Attack, target.stats.Armor)
	ranged := u.stats.Range > 1

	s.pending = append(s.pending, &pendingHit{
		attackerID:  u.id,
		targetID:    target.id,
		landingTick: landingTick,
		damage:      damage,
		ranged:      ranged,
	})
	u.attackReadyTick = s.tick + cycleTicks
	u.mana += manaPerAttack

	s.emit(Event{
		Type:        EventUnitAttack,
		Tick:        s.tick,
		Attacker:    u.id,
		Target:      target.id,
		Damage:      damage,
		LandingTick: landingTick,
	})
}

func (s *Simulation) castAbility(u, target *unit) {
	mult := abilityDamageMultiplier
	duration := abilityDurationSeconds

	if u.abilityScript != "" {
		if r, err := script.Eval(u.abilityScript, u.stats); err == nil {
			if r.DamageMultiplier > 0 {
				mult = r.DamageMultiplier
			}
			if r.DurationSeconds > 0 {
				duration = r.DurationSeconds
			}
		}
	}

	durationTicks := ticksFor(duration)
	landingOffset := ticksFor(duration * attackHitFrac)
	landingTick := s.tick + landingOffset
	damage := damageFormula(u.stats.Attack*mult, target.stats.Armor)
	ranged := u.stats.Range > 1

	s.pending = append(s.pending, &pendingHit{
		attackerID:  u.id,
		targetID:    target.id,
		landingTick: landingTick,
		damage:      damage,
		ranged:      ranged,
		isAbility:   true,
	})

	u.attackReadyTick = s.tick + durationTicks
	u.arrivalTick = s.tick + durationTicks // ability locks movement too
	u.mana -= u.manaCap
	if u.mana < 0 {
		u.mana = 0
	}

	s.emit(Event{
		Type:        EventUnitAbility,
		Tick:        s.tick,
		Attacker:    u.id,
		Target:      target.id,
		Damage:      damage,
		LandingTick: landingTick,
		Duration:    duration,
	})
}

// resolvePendingHits is per-tick phase 1: apply every queued hit whose
// landing tick has arrived, subject to the ranged-survives / melee-
// cancelled interruption rules (spec §4.4).
func (s *Simulation) resolvePendingHits() {
	var remaining []*pendingHit
	for _, hit := range s.pending {
		if hit.landingTick > s.tick {
			remaining = append(remaining, hit)
			continue
		}
		s.applyHit(hit)
	}
	s.pending = remaining
}

func (s *Simulation) applyHit(hit *pendingHit) {
	target := s.units[hit.targetID]
	if !target.alive {
		return // dropped: target already dead
	}
	attacker := s.units[hit.attackerID]
	if !hit.ranged && !attacker.alive {
		return // melee hit cancelled: attacker died before landing
	}

	target.health -= hit.damage
	if target.health < 0 {
		target.health = 0
	}
	s.emit(Event{
		Type:      EventUnitDamage,
		Tick:      s.tick,
		Target:    target.id,
		Damage:    hit.damage,
		NewHealth: target.health,
	})

	if target.health <= 0 {
		target.alive = false
		s.emit(Event{
			Type:   EventUnitDeath,
			Tick:   s.tick,
			Target: target.id,
			Killer: hit.attackerID,
			Loot:   target.loot,
		})
	}
}
