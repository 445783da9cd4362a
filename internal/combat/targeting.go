package combat

import "github.com/autobattle/roomserver/internal/hexgrid"

func otherSide(s Side) Side {
	if s == SideHost {
		return SideAway
	}
	return SideHost
}

func (s *Simulation) aliveUnits(side Side) []*unit {
	var out []*unit
	for _, id := range s.order {
		u := s.units[id]
		if u.side == side && u.alive {
			out = append(out, u)
		}
	}
	return out
}

func (s *Simulation) aliveCount(side Side) int {
	return len(s.aliveUnits(side))
}

func (s *Simulation) totalHealth(side Side) float64 {
	total := 0.0
	for _, u := range s.aliveUnits(side) {
		total += u.health
	}
	return total
}

// chooseTarget implements spec §4.4's targeting rule: keep the current
// target unless it died, it's out of range while another enemy is now in
// range, or the unit has been stuck stuckRetargetThreshold ticks or more —
// in which case pick the closest *other* enemy. Ties break on smaller
// |Δx|, then on scan order for full determinism.
func (s *Simulation) chooseTarget(u *unit) string {
	enemies := s.aliveUnits(otherSide(u.side))
	if len(enemies) == 0 {
		return ""
	}

	current, hasCurrent := s.units[u.targetID], u.targetID != ""
	if hasCurrent && !current.alive {
		hasCurrent = false
	}

	retarget := !hasCurrent
	excludeCurrent := false

	if hasCurrent {
		inRange := hexgrid.Distance(u.pos, current.pos) <= u.stats.Range
		if !inRange {
			for _, e := range enemies {
				if e.id != current.id && hexgrid.Distance(u.pos, e.pos) <= u.stats.Range {
					retarget = true
					break
				}
			}
		}
		if u.stuckTicks >= stuckRetargetThreshold {
			retarget = true
			excludeCurrent = true
		}
	}

	if !retarget {
		return current.id
	}

	exclude := ""
	if excludeCurrent {
		exclude = current.id
	}
	return s.closestEnemy(u, enemies, exclude)
}

func (s *Simulation) closestEnemy(u *unit, enemies []*unit, excludeID string) string {
	var best *unit
	bestDist := 0
	bestDX := 0
	for _, e := range enemies {
		if e.id == excludeID {
			continue
		}
		d := hexgrid.Distance(u.pos, e.pos)
		dx := e.pos.X - u.pos.X
		if dx < 0 {
			dx = -dx
		}
		if best == nil || d < bestDist || (d == bestDist && dx < bestDX) {
			best, bestDist, bestDX = e, d, dx
		}
	}
	if best == nil {
		return ""
	}
	return best.id
}
