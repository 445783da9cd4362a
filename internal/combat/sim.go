package combat

import (
	"math/rand"

	"github.com/autobattle/roomserver/internal/hexgrid"
)

// Simulation is one deterministic combat run. Construct with NewSimulation
// and call Run exactly once.
type Simulation struct {
	rng *rand.Rand

	units map[string]*unit
	order []string // stable iteration order: host units then away units

	pending []*pendingHit
	events  []Event
	tick    int
}

// NewSimulation builds a simulation from two rosters. seed seeds the
// simulation's rng; no rule here draws from it (target ties break on |Δx|,
// then scan order), but the seed is threaded through regardless so adding
// randomized ability variance later doesn't change the signature (spec
// §4.4 Determinism).
func NewSimulation(seed int64, host, away []UnitSetup) *Simulation {
	s := &Simulation{
		rng:   rand.New(rand.NewSource(seed)),
		units: make(map[string]*unit),
	}
	s.addRoster(host, SideHost)
	s.addRoster(away, SideAway)
	return s
}

func (s *Simulation) addRoster(setups []UnitSetup, side Side) {
	for _, su := range setups {
		pos := hexgrid.LocalPlayerOne(su.LocalCoord)
		if side == SideAway {
			pos = hexgrid.MirrorPlayerTwo(su.LocalCoord, boardHeight)
		}
		u := &unit{
			id:             su.InstanceID,
			templateID:     su.TemplateID,
			name:           su.Name,
			side:           side,
			pos:            pos,
			stats:          su.Stats,
			damageAffinity: su.DamageAffinity,
			abilityScript:  su.AbilityScript,
			maxHealth:      su.Stats.Health,
			health:         su.Stats.Health,
			manaCap:        su.Stats.ManaCap,
			alive:          true,
			loot:           su.Loot,
		}
		s.units[u.id] = u
		s.order = append(s.order, u.id)
	}
}

// Run executes the full tick loop and returns the outcome.
func (s *Simulation) Run() Result {
	s.emitCombatStart()

	if s.aliveCount(SideHost) == 0 || s.aliveCount(SideAway) == 0 {
		return s.finish(true)
	}

	for tick := 0; tick < MaxTicks; tick++ {
		s.tick = tick

		s.resolvePendingHits()
		if s.terminated() {
			return s.finish(false)
		}

		decisions := s.decideMovements()
		s.applyMovements(decisions)
		s.resolveAttacks()

		if s.terminated() {
			return s.finish(false)
		}
	}

	return s.finish(false)
}

func (s *Simulation) terminated() bool {
	if len(s.pending) > 0 {
		return false
	}
	return s.aliveCount(SideHost) == 0 || s.aliveCount(SideAway) == 0
}

func (s *Simulation) emit(e Event) {
	s.events = append(s.events, e)
}

func (s *Simulation) emitCombatStart() {
	roster := make([]RosterEntry, 0, len(s.order))
	for _, id := range s.order {
		u := s.units[id]
		roster = append(roster, RosterEntry{
			UnitID:     u.id,
			TemplateID: u.templateID,
			Name:       u.name,
			Side:       int(u.side),
			X:          u.pos.X,
			Y:          u.pos.Y,
			Stats:      u.stats,
		})
	}
	s.emit(Event{Type: EventCombatStart, Tick: 0, Roster: roster})
}

func (s *Simulation) finish(startedEmpty bool) Result {
	hostAlive := s.aliveCount(SideHost)
	awayAlive := s.aliveCount(SideAway)

	if startedEmpty && hostAlive == 0 && awayAlive == 0 {
		s.emit(Event{Type: EventCombatEnd, Tick: s.tick, SurvivingCount: 0, Damage: 0})
		return Result{NoContest: true, Events: s.events, DurationTicks: s.tick}
	}

	var winner Side
	switch {
	case hostAlive > 0 && awayAlive == 0:
		winner = SideHost
	case awayAlive > 0 && hostAlive == 0:
		winner = SideAway
	case hostAlive == 0 && awayAlive == 0:
		// Both sides wiped the same tick: higher total remaining health
		// among the dead has no meaning, so fall back to a stable pick.
		winner = SideHost
	default:
		// Tick cap reached with both sides still standing: winner is the
		// side with higher total remaining health.
		if s.totalHealth(SideAway) > s.totalHealth(SideHost) {
			winner = SideAway
		} else {
			winner = SideHost
		}
	}

	survivingCount := s.aliveCount(winner)
	damage := 1 + survivingCount

	s.emit(Event{
		Type:           EventCombatEnd,
		Tick:           s.tick,
		Winner:         sideTag(winner),
		SurvivingCount: survivingCount,
		Damage:         float64(damage),
	})

	return Result{
		Winner:         winner,
		SurvivingCount: survivingCount,
		Damage:         damage,
		Events:         s.events,
		DurationTicks:  s.tick,
	}
}

func sideTag(s Side) string {
	if s == SideHost {
		return "host"
	}
	return "away"
}
