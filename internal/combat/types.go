// Package combat implements the deterministic tick-based combat simulator
// (C4): hex-grid movement with A* pathfinding, targeting, attack/ability
// resolution with delayed (projectile) hits, and a full event log.
package combat

import (
	"github.com/autobattle/roomserver/internal/catalogue"
	"github.com/autobattle/roomserver/internal/hexgrid"
)

const (
	// TickRate is the fixed simulation step: 50ms, 20Hz.
	TickRate = 0.05
	// MaxTicks is the hard cap (60s at 20Hz).
	MaxTicks = 1200

	arenaWidth     = 5
	boardHeight    = 4
	arenaHeight    = 2 * boardHeight
	attackHitFrac  = 0.4
	abilityDamageMultiplier = 3.0
	abilityDurationSeconds  = 1.0
	manaPerAttack           = 10.0
	stuckRetargetThreshold  = 10
)

// Side identifies which combatant a unit belongs to.
type Side int

const (
	SideHost Side = iota
	SideAway
)

// UnitSetup is the input describing one combat participant, built by the
// caller (internal/room) from a player's composed board units.
type UnitSetup struct {
	InstanceID     string
	TemplateID     string
	Name           string
	Side           Side
	LocalCoord     hexgrid.Coord // the unit's own-board coordinate
	Stats          catalogue.StatBlock
	DamageAffinity string
	AbilityScript  string
	// Loot, when set, is attached verbatim to this unit's unitDeath event if
	// it dies. Drop contents are decided by the caller before the
	// simulation starts, not by the simulator (spec §4.4 Determinism:
	// randomness is confined to non-combat concerns like loot).
	Loot *LootDescriptor
}

// unit is the simulator's mutable runtime state for one combatant.
type unit struct {
	id             string
	templateID     string
	name           string
	side           Side
	pos            hexgrid.Coord
	stats          catalogue.StatBlock
	damageAffinity string
	abilityScript  string

	maxHealth float64
	health    float64
	mana      float64
	manaCap   float64

	alive bool
	loot  *LootDescriptor

	targetID   string
	stuckTicks int

	arrivalTick      int // tick at which this unit finishes its current move/ability lock
	attackReadyTick  int // tick at which this unit may next attack/cast
}

// pendingHit is a scheduled, not-yet-applied attack or ability hit.
type pendingHit struct {
	attackerID  string
	targetID    string
	landingTick int
	damage      float64
	ranged      bool
	isAbility   bool
}

// EventType is the discriminant of a logged combat event.
type EventType string

const (
	EventCombatStart EventType = "combatStart"
	EventUnitMove    EventType = "unitMove"
	EventUnitAttack  EventType = "unitAttack"
	EventUnitAbility EventType = "unitAbility"
	EventUnitDamage  EventType = "unitDamage"
	EventUnitDeath   EventType = "unitDeath"
	EventCombatEnd   EventType = "combatEnd"
)

// RosterEntry describes one participant as reported in the combatStart event.
type RosterEntry struct {
	UnitID     string              `json:"unitId"`
	TemplateID string              `json:"templateId"`
	Name       string              `json:"name"`
	Side       int                 `json:"side"`
	X          int                 `json:"x"`
	Y          int                 `json:"y"`
	Stats      catalogue.StatBlock `json:"stats"`
}

// LootDescriptor optionally accompanies a unitDeath event for special PvE
// rounds; nil in ordinary PvP matchups.
type LootDescriptor struct {
	Kind   string `json:"kind"`
	ItemID string `json:"itemId,omitempty"`
	Gold   int    `json:"gold,omitempty"`
}

// Event is one ordered entry in a combat's event log. Fields are tagged
// omitempty because each event type only populates a subset.
type Event struct {
	Type EventType `json:"type"`
	Tick int       `json:"tick"`

	Roster []RosterEntry `json:"roster,omitempty"`

	UnitID   string  `json:"unitId,omitempty"`
	X        int     `json:"x,omitempty"`
	Y        int     `json:"y,omitempty"`
	Duration float64 `json:"duration,omitempty"`

	Attacker    string  `json:"attacker,omitempty"`
	Target      string  `json:"target,omitempty"`
	Damage      float64 `json:"damage,omitempty"`
	LandingTick int     `json:"landingTick,omitempty"`

	NewHealth float64 `json:"newHealth,omitempty"`

	Killer string           `json:"killer,omitempty"`
	Loot   *LootDescriptor  `json:"loot,omitempty"`

	Winner         string `json:"winner,omitempty"`
	SurvivingCount int    `json:"survivingCount,omitempty"`
}

// Result is what the room runtime consumes after a simulation finishes.
type Result struct {
	Winner         Side
	NoContest      bool // true when both sides started empty; Winner is meaningless
	SurvivingCount int
	Damage         int
	Events         []Event
	DurationTicks  int
}
