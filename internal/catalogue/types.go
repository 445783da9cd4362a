// Package catalogue holds the immutable content tables (C1): unit, trait,
// item, and crest templates, plus the compile-time tables (shop odds, round
// schedule, star multipliers, pool sizes) that govern how those templates
// are used. Everything here is read-only after Load.
package catalogue

// StatBlock is a unit's (or bonus') stat vector. AttackSpeed is attacks per
// second, Range is in hex tiles, MoveSpeed is tiles per second.
type StatBlock struct {
	Health       float64 `yaml:"health"`
	Attack       float64 `yaml:"attack"`
	AbilityPower float64 `yaml:"ability_power"`
	Armor        float64 `yaml:"armor"`
	MagicResist  float64 `yaml:"magic_resist"`
	AttackSpeed  float64 `yaml:"attack_speed"`
	Range        int     `yaml:"range"`
	ManaCap      float64 `yaml:"mana_cap"`
	MoveSpeed    float64 `yaml:"move_speed"`
	CritChance   float64 `yaml:"crit_chance"`
	CritDamage   float64 `yaml:"crit_damage"`
}

// BlessedTag marks a unit as always contributing a per-unit team buff while
// it's on the board.
type BlessedTag struct {
	Stat  string  `yaml:"stat"`
	Value float64 `yaml:"value"`
}

// AbilityDescriptor is optional; Script is Lua source evaluated by
// internal/combat/script (spec §4.9). When empty, the combat simulator
// falls back to the default 3x-auto-damage ability.
type AbilityDescriptor struct {
	Name   string `yaml:"name"`
	Script string `yaml:"script"`
}

// UnitTemplate is immutable static data for one unit id.
type UnitTemplate struct {
	ID             string             `yaml:"id"`
	Name           string             `yaml:"name"`
	Cost           int                `yaml:"cost"` // 1-5, 0 = PvE-only
	Traits         []string           `yaml:"traits"`
	DamageAffinity string             `yaml:"damage_affinity"`
	Base           StatBlock          `yaml:"base"`
	Blessed        *BlessedTag        `yaml:"blessed,omitempty"`
	Ability        *AbilityDescriptor `yaml:"ability,omitempty"`
}

// HasTrait reports whether the template carries the named trait.
func (t *UnitTemplate) HasTrait(traitID string) bool {
	for _, id := range t.Traits {
		if id == traitID {
			return true
		}
	}
	return false
}

// TraitScope distinguishes unit-scoped bonuses (apply only to units carrying
// the trait) from team-scoped bonuses (apply to all allies).
type TraitScope string

const (
	ScopeUnit TraitScope = "unit"
	ScopeTeam TraitScope = "team"
)

// TraitTier is one breakpoint of a trait: at Count or more contributing
// units on the board, Bonuses apply at the given Scope.
type TraitTier struct {
	Count   int                `yaml:"count"`
	Scope   TraitScope         `yaml:"scope"`
	Bonuses map[string]float64 `yaml:"bonuses"`
}

// TraitDefinition describes one trait and its ordered breakpoint tiers.
// Unique traits have a single unit and a single tier.
type TraitDefinition struct {
	ID       string      `yaml:"id"`
	Units    []string    `yaml:"units"`
	Tiers    []TraitTier `yaml:"tiers"`
	IsUnique bool        `yaml:"unique"`
}

// HighestActiveTier returns the highest tier whose Count <= count, or nil if
// count is below every tier's threshold. Tiers is assumed ordered ascending.
func (t *TraitDefinition) HighestActiveTier(count int) *TraitTier {
	var active *TraitTier
	for i := range t.Tiers {
		if t.Tiers[i].Count <= count {
			active = &t.Tiers[i]
		}
	}
	return active
}

// ItemKind distinguishes the three item behaviors.
type ItemKind string

const (
	ItemComponent  ItemKind = "component"
	ItemCombined   ItemKind = "combined"
	ItemConsumable ItemKind = "consumable"
)

// Item is either a component (Stats applies as a flat additive bonus), a
// combined item (Recipe names the unordered pair of component ids that
// produce it), or a consumable (Stats unused, triggers a pending selection
// on use).
type Item struct {
	ID     string    `yaml:"id"`
	Name   string    `yaml:"name"`
	Kind   ItemKind  `yaml:"kind"`
	Stats  StatBonus `yaml:"stats"`
	Recipe [2]string `yaml:"recipe"`
}

// StatBonus is an additive stat delta. AttackSpeedPct is applied
// multiplicatively (×(1+pct/100)) per spec §4.3; every other field is a flat
// add.
type StatBonus struct {
	Health         float64 `yaml:"health"`
	Attack         float64 `yaml:"attack"`
	AbilityPower   float64 `yaml:"ability_power"`
	Armor          float64 `yaml:"armor"`
	MagicResist    float64 `yaml:"magic_resist"`
	AttackSpeedPct float64 `yaml:"attack_speed_pct"`
	ManaCap        float64 `yaml:"mana_cap"`
	CritChance     float64 `yaml:"crit_chance"`
	CritDamage     float64 `yaml:"crit_damage"`
}

// Add returns the element-wise sum of two bonuses.
func (b StatBonus) Add(o StatBonus) StatBonus {
	return StatBonus{
		Health:         b.Health + o.Health,
		Attack:         b.Attack + o.Attack,
		AbilityPower:   b.AbilityPower + o.AbilityPower,
		Armor:          b.Armor + o.Armor,
		MagicResist:    b.MagicResist + o.MagicResist,
		AttackSpeedPct: b.AttackSpeedPct + o.AttackSpeedPct,
		ManaCap:        b.ManaCap + o.ManaCap,
		CritChance:     b.CritChance + o.CritChance,
		CritDamage:     b.CritDamage + o.CritDamage,
	}
}

// Scale multiplies every field by f (used for crest rank multipliers).
func (b StatBonus) Scale(f float64) StatBonus {
	return StatBonus{
		Health:         b.Health * f,
		Attack:         b.Attack * f,
		AbilityPower:   b.AbilityPower * f,
		Armor:          b.Armor * f,
		MagicResist:    b.MagicResist * f,
		AttackSpeedPct: b.AttackSpeedPct * f,
		ManaCap:        b.ManaCap * f,
		CritChance:     b.CritChance * f,
		CritDamage:     b.CritDamage * f,
	}
}

// CrestKind distinguishes minor (stackable, ranked) from major (one per
// player) crests.
type CrestKind string

const (
	CrestMinor CrestKind = "minor"
	CrestMajor CrestKind = "major"
)

// Crest is a team-wide stat bonus. Minor crests' Bonuses are the rank-1
// value; RankMultiplier scales it for rank 2/3.
type Crest struct {
	ID      string    `yaml:"id"`
	Name    string    `yaml:"name"`
	Kind    CrestKind `yaml:"kind"`
	Bonuses StatBonus `yaml:"bonuses"`
}

// RankMultiplier implements the 1x/1.5x/2x minor crest rank table.
func RankMultiplier(rank int) float64 {
	switch rank {
	case 1:
		return 1.0
	case 2:
		return 1.5
	case 3:
		return 2.0
	default:
		return 1.0
	}
}

// RoundType categorizes a round in the fixed schedule.
type RoundType string

const (
	RoundPvP         RoundType = "pvp"
	RoundPveIntro    RoundType = "pve_intro"
	RoundPveLoot     RoundType = "pve_loot"
	RoundPveBoss     RoundType = "pve_boss"
	RoundMadMerchant RoundType = "mad_merchant"
	RoundMajorCrest  RoundType = "major_crest"
)

// IsCombat reports whether the round type runs a combat phase at all
// (mad_merchant and major_crest skip combat/results entirely, spec §4.5).
func (rt RoundType) IsCombat() bool {
	return rt != RoundMadMerchant && rt != RoundMajorCrest
}

// IsSpecialPvE reports whether the round is one of the three PvE variants.
func (rt RoundType) IsSpecialPvE() bool {
	return rt == RoundPveIntro || rt == RoundPveLoot || rt == RoundPveBoss
}
