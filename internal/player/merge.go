package player

// location identifies where an instance currently sits, so MergeCheck can
// remove and replant units without a second lookup pass.
type location struct {
	onBoard bool
	coord   BoardCoord
	bench   int // bench index, valid when !onBoard
}

func (p *Player) locate(instanceID string) (location, bool) {
	for x := 0; x < BoardWidth; x++ {
		for y := 0; y < BoardHeight; y++ {
			if u := p.Board[x][y]; u != nil && u.InstanceID == instanceID {
				return location{onBoard: true, coord: BoardCoord{x, y}}, true
			}
		}
	}
	for i, u := range p.Bench {
		if u != nil && u.InstanceID == instanceID {
			return location{onBoard: false, bench: i}, true
		}
	}
	return location{}, false
}

func (p *Player) removeAt(loc location) {
	if loc.onBoard {
		p.Board[loc.coord.X][loc.coord.Y] = nil
	} else {
		p.Bench[loc.bench] = nil
	}
}

// instancesWithKey returns every bench+board instance matching key, in
// board-then-bench scan order.
func (p *Player) instancesWithKey(key Key) []*UnitInstance {
	var out []*UnitInstance
	for x := 0; x < BoardWidth; x++ {
		for y := 0; y < BoardHeight; y++ {
			if u := p.Board[x][y]; u != nil && u.Key() == key {
				out = append(out, u)
			}
		}
	}
	for _, u := range p.Bench {
		if u != nil && u.Key() == key {
			out = append(out, u)
		}
	}
	return out
}

// MergeCheck collapses every run of three same-template, same-star
// instances (bench+board) into one upgraded instance, transitively: three
// fresh 2-star copies formed this way immediately collapse again into a
// 3-star. introducedID is the instance that triggered the check (the unit
// just purchased, received as loot, or produced by a prior merge); it only
// affects which instance survives a tie in "prefer to keep" (spec §4.3).
func MergeCheck(p *Player, introducedID string) {
	current := introducedID
	for {
		u, ok := p.FindInstance(current)
		if !ok {
			return
		}
		if u.Star >= 3 {
			return
		}
		group := p.instancesWithKey(u.Key())
		if len(group) < 3 {
			return
		}

		kept := pickKeep(p, group, current)
		var toRemove []*UnitInstance
		count := 0
		for _, other := range group {
			if other.InstanceID == kept.InstanceID {
				continue
			}
			if count < 2 {
				toRemove = append(toRemove, other)
				count++
			}
		}

		for _, other := range toRemove {
			if loc, ok := p.locate(other.InstanceID); ok {
				p.removeAt(loc)
			}
		}

		kept.Star++
		kept.CurrentHealth = 0 // caller/combat layer restores to new max on next heal-to-full
		current = kept.InstanceID
	}
}

// pickKeep chooses which of three same-key instances survives the merge: a
// board-resident instance first, then the introduced instance (wherever it
// sits), else the first match in scan order.
func pickKeep(p *Player, group []*UnitInstance, introducedID string) *UnitInstance {
	for _, u := range group {
		if p.IsOnBoard(u.InstanceID) {
			return u
		}
	}
	for _, u := range group {
		if u.InstanceID == introducedID {
			return u
		}
	}
	return group[0]
}
