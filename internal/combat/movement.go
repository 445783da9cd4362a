package combat

import (
	"math"

	"github.com/autobattle/roomserver/internal/hexgrid"
)

type moveDecision struct {
	unitID string
	dest   hexgrid.Coord
}

// decideMovements is per-tick phase 2: snapshot positions, retarget, and
// decide whether each alive unit moves one tile. Units still mid-transit
// (arrivalTick > now) retarget but do not move.
func (s *Simulation) decideMovements() []moveDecision {
	snapshot := make(map[string]hexgrid.Coord, len(s.units))
	for id, u := range s.units {
		if u.alive {
			snapshot[id] = u.pos
		}
	}

	var decisions []moveDecision
	for _, id := range s.order {
		u := s.units[id]
		if !u.alive {
			continue
		}
		u.targetID = s.chooseTarget(u)
		if u.targetID == "" {
			continue
		}
		if s.tick < u.arrivalTick {
			continue
		}

		target := s.units[u.targetID]
		if hexgrid.Distance(u.pos, target.pos) <= u.stats.Range {
			continue
		}

		blocked := make(map[hexgrid.Coord]bool, len(snapshot))
		for otherID, pos := range snapshot {
			if otherID != id {
				blocked[pos] = true
			}
		}

		step, ok := pathfind(u.pos, target.pos, u.stats.Range, blocked)
		if !ok {
			u.stuckTicks++
			continue
		}
		decisions = append(decisions, moveDecision{unitID: id, dest: step})
	}
	return decisions
}

// applyMovements is phase 3: apply decisions in insertion order, skipping
// any whose destination became occupied by an earlier decision this tick.
func (s *Simulation) applyMovements(decisions []moveDecision) {
	for _, d := range decisions {
		u := s.units[d.unitID]
		if s.cellOccupied(d.dest, d.unitID) {
			u.stuckTicks++
			continue
		}
		u.pos = d.dest
		u.stuckTicks = 0

		moveTicks := ticksFor(1.0 / u.stats.MoveSpeed)
		u.arrivalTick = s.tick + moveTicks

		s.emit(Event{
			Type:     EventUnitMove,
			Tick:     s.tick,
			UnitID:   u.id,
			X:        d.dest.X,
			Y:        d.dest.Y,
			Duration: float64(moveTicks) * TickRate,
		})
	}
}

func (s *Simulation) cellOccupied(c hexgrid.Coord, excludeID string) bool {
	for _, u := range s.units {
		if u.id != excludeID && u.alive && u.pos == c {
			return true
		}
	}
	return false
}

func ticksFor(seconds float64) int {
	if seconds <= 0 {
		return 1
	}
	return int(math.Ceil(seconds / TickRate))
}
