package player

import "github.com/autobattle/roomserver/internal/catalogue"

// scaledCombatStats are the base-stat-block fields that grow with star
// level. Utility fields (range, mana cap, move speed, attack speed, crit)
// are identity properties of the template and stay fixed across stars —
// only raw combat power scales.
func scaledBase(base catalogue.StatBlock, star int) catalogue.StatBlock {
	mult := catalogue.StarMultiplier(star)
	out := base
	out.Health = base.Health * mult
	out.Attack = base.Attack * mult
	out.AbilityPower = base.AbilityPower * mult
	out.Armor = base.Armor * mult
	out.MagicResist = base.MagicResist * mult
	return out
}

// ActiveTraitTiers computes, for a player's current board, the highest
// active tier of each trait present: a trait is active if the number of
// distinct unit templates on the board carrying it meets a tier's count
// threshold (spec §4.3 — unique templates, not instance count).
func ActiveTraitTiers(p *Player, cat *catalogue.Catalogue) map[string]*catalogue.TraitTier {
	seen := make(map[string]map[string]bool) // traitID -> set of templateIDs
	for _, bu := range p.BoardUnits() {
		tmpl, ok := cat.Unit(bu.Unit.TemplateID)
		if !ok {
			continue
		}
		for _, traitID := range tmpl.Traits {
			if seen[traitID] == nil {
				seen[traitID] = make(map[string]bool)
			}
			seen[traitID][tmpl.ID] = true
		}
	}
	out := make(map[string]*catalogue.TraitTier)
	for traitID, templates := range seen {
		def, ok := cat.Trait(traitID)
		if !ok {
			continue
		}
		if tier := def.HighestActiveTier(len(templates)); tier != nil {
			out[traitID] = tier
		}
	}
	return out
}

// Recompose runs the full stat composition pipeline for one unit instance:
// star-scaled base, then trait bonuses (unit-scoped then team-scoped), then
// item bonuses (additive, attack speed multiplicative), then crest bonuses
// (rank-multiplied). The result is stored on the instance and returned.
func Recompose(u *UnitInstance, p *Player, cat *catalogue.Catalogue, activeTraits map[string]*catalogue.TraitTier) catalogue.StatBlock {
	tmpl, ok := cat.Unit(u.TemplateID)
	if !ok {
		return catalogue.StatBlock{}
	}

	s := scaledBase(tmpl.Base, u.Star)

	// Trait bonuses: unit-scoped tiers first, then team-scoped.
	var unitBonus, teamBonus catalogue.StatBonus
	for _, traitID := range tmpl.Traits {
		tier, ok := activeTraits[traitID]
		if !ok {
			continue
		}
		b := catalogue.StatBonus{}
		for stat, v := range tier.Bonuses {
			applyNamedBonus(&b, stat, v)
		}
		if tier.Scope == catalogue.ScopeTeam {
			teamBonus = teamBonus.Add(b)
		} else {
			unitBonus = unitBonus.Add(b)
		}
	}
	applyBonus(&s, unitBonus)
	applyBonus(&s, teamBonus)

	// Item bonuses: additive, attack speed multiplicative.
	var itemBonus catalogue.StatBonus
	for _, itemID := range u.Items {
		if it, ok := cat.Item(itemID); ok {
			itemBonus = itemBonus.Add(it.Stats)
		}
	}
	applyBonus(&s, itemBonus)

	// Crest bonuses: minor crests rank-multiplied, major crest flat.
	for _, slot := range p.MinorCrests {
		c, ok := cat.Crest(slot.CrestID)
		if !ok {
			continue
		}
		applyBonus(&s, c.Bonuses.Scale(catalogue.RankMultiplier(slot.Rank)))
	}
	if p.MajorCrest != "" {
		if c, ok := cat.Crest(p.MajorCrest); ok {
			applyBonus(&s, c.Bonuses)
		}
	}

	u.Composed = s
	return s
}

func applyNamedBonus(b *catalogue.StatBonus, stat string, v float64) {
	switch stat {
	case "health":
		b.Health += v
	case "attack":
		b.Attack += v
	case "ability_power":
		b.AbilityPower += v
	case "armor":
		b.Armor += v
	case "magic_resist":
		b.MagicResist += v
	case "attack_speed_pct":
		b.AttackSpeedPct += v
	case "mana_cap":
		b.ManaCap += v
	case "crit_chance":
		b.CritChance += v
	case "crit_damage":
		b.CritDamage += v
	}
}

func applyBonus(s *catalogue.StatBlock, b catalogue.StatBonus) {
	s.Health += b.Health
	s.Attack += b.Attack
	s.AbilityPower += b.AbilityPower
	s.Armor += b.Armor
	s.MagicResist += b.MagicResist
	s.ManaCap += b.ManaCap
	s.CritChance += b.CritChance
	s.CritDamage += b.CritDamage
	if b.AttackSpeedPct != 0 {
		s.AttackSpeed *= 1 + b.AttackSpeedPct/100
	}
}

// RecomposeBoard recomputes stats for every unit on the board, using a
// single shared active-trait computation (cheaper than one pass per unit).
func RecomposeBoard(p *Player, cat *catalogue.Catalogue) {
	active := ActiveTraitTiers(p, cat)
	for _, bu := range p.BoardUnits() {
		Recompose(bu.Unit, p, cat, active)
	}
}
