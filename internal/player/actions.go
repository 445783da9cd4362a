package player

import "github.com/autobattle/roomserver/internal/catalogue"

// AddToBench places a freshly acquired instance in the first free bench
// slot. Returns false if the bench is full — the caller is responsible for
// checking capacity before spending gold or consuming a loot token.
func (p *Player) AddToBench(u *UnitInstance) bool {
	i := p.firstFreeBenchSlot()
	if i < 0 {
		return false
	}
	p.Bench[i] = u
	return true
}

// PlaceOnBoard moves a bench instance onto an empty board cell.
func (p *Player) PlaceOnBoard(instanceID string, coord BoardCoord) bool {
	if p.Board[coord.X][coord.Y] != nil {
		return false
	}
	for i, u := range p.Bench {
		if u != nil && u.InstanceID == instanceID {
			p.Board[coord.X][coord.Y] = u
			p.Bench[i] = nil
			return true
		}
	}
	return false
}

// ReturnToBench moves a board instance back to the first free bench slot.
func (p *Player) ReturnToBench(instanceID string) bool {
	for x := 0; x < BoardWidth; x++ {
		for y := 0; y < BoardHeight; y++ {
			if u := p.Board[x][y]; u != nil && u.InstanceID == instanceID {
				i := p.firstFreeBenchSlot()
				if i < 0 {
					return false
				}
				p.Bench[i] = u
				p.Board[x][y] = nil
				return true
			}
		}
	}
	return false
}

// MoveBenchUnit relocates a bench instance to targetSlot, swapping with
// whatever already occupies it (nil or another instance).
func (p *Player) MoveBenchUnit(instanceID string, targetSlot int) bool {
	if targetSlot < 0 || targetSlot >= BenchSize {
		return false
	}
	for i, u := range p.Bench {
		if u != nil && u.InstanceID == instanceID {
			p.Bench[i], p.Bench[targetSlot] = p.Bench[targetSlot], p.Bench[i]
			return true
		}
	}
	return false
}

// SwapBoard exchanges the occupants (either may be nil) of two board cells.
func (p *Player) SwapBoard(a, b BoardCoord) {
	p.Board[a.X][a.Y], p.Board[b.X][b.Y] = p.Board[b.X][b.Y], p.Board[a.X][a.Y]
}

// SellUnit removes instanceID from bench or board and returns its sell
// price (spec §4.3: cost * 3^(star-1)). The pool credit is the caller's
// responsibility since Player has no pool reference.
func (p *Player) SellUnit(instanceID string, cat *catalogue.Catalogue) (templateID string, goldGained int, ok bool) {
	loc, found := p.locate(instanceID)
	if !found {
		return "", 0, false
	}
	u, _ := p.FindInstance(instanceID)
	tmpl, ok := cat.Unit(u.TemplateID)
	if !ok {
		return "", 0, false
	}
	price := catalogue.SellPrice(tmpl.Cost, u.Star)
	p.removeAt(loc)
	p.Gold += price
	return u.TemplateID, price, true
}

// AddInventory appends an item id to inventory if capacity allows.
func (p *Player) AddInventory(itemID string) bool {
	if len(p.Inventory) >= MaxInventory {
		return false
	}
	p.Inventory = append(p.Inventory, itemID)
	return true
}

func (p *Player) removeInventory(itemID string) bool {
	for i, id := range p.Inventory {
		if id == itemID {
			p.Inventory = append(p.Inventory[:i], p.Inventory[i+1:]...)
			return true
		}
	}
	return false
}

// EquipItem moves an item from inventory onto a unit, combining it with an
// existing component when the pair has a recipe (spec §4.3 item combine).
func (p *Player) EquipItem(instanceID, itemID string, cat *catalogue.Catalogue) bool {
	u, ok := p.FindInstance(instanceID)
	if !ok {
		return false
	}
	if !p.removeInventory(itemID) {
		return false
	}
	for i, equipped := range u.Items {
		if combined, ok := cat.RecipeFor(equipped, itemID); ok {
			u.Items[i] = combined.ID
			return true
		}
	}
	if len(u.Items) >= MaxItemsPerUnit {
		p.Inventory = append(p.Inventory, itemID) // put it back, equip failed
		return false
	}
	u.Items = append(u.Items, itemID)
	return true
}

// UnequipItem removes an item from a unit and returns it to inventory.
func (p *Player) UnequipItem(instanceID, itemID string) bool {
	u, ok := p.FindInstance(instanceID)
	if !ok {
		return false
	}
	for i, id := range u.Items {
		if id == itemID {
			if len(p.Inventory) >= MaxInventory {
				return false
			}
			u.Items = append(u.Items[:i], u.Items[i+1:]...)
			p.Inventory = append(p.Inventory, itemID)
			return true
		}
	}
	return false
}

// AddMinorCrest attaches a new minor crest at rank 1, or bumps an existing
// crest of the same id to the next rank (cap rank 3). Returns false if the
// crest isn't held and the player already has MaxMinorCrests distinct
// crests — the caller then surfaces a crest_replace PendingSelection.
func (p *Player) AddMinorCrest(crestID string) bool {
	for i := range p.MinorCrests {
		if p.MinorCrests[i].CrestID == crestID {
			if p.MinorCrests[i].Rank < 3 {
				p.MinorCrests[i].Rank++
			}
			return true
		}
	}
	if len(p.MinorCrests) >= MaxMinorCrests {
		return false
	}
	p.MinorCrests = append(p.MinorCrests, MinorCrestSlot{CrestID: crestID, Rank: 1})
	return true
}

// ReplaceMinorCrest discards an existing crest slot and installs a new
// crest at rank 1 in its place, used when AddMinorCrest would overflow.
func (p *Player) ReplaceMinorCrest(oldCrestID, newCrestID string) bool {
	for i := range p.MinorCrests {
		if p.MinorCrests[i].CrestID == oldCrestID {
			p.MinorCrests[i] = MinorCrestSlot{CrestID: newCrestID, Rank: 1}
			return true
		}
	}
	return false
}
