package room

import (
	"encoding/json"

	"github.com/autobattle/roomserver/internal/catalogue"
	"github.com/autobattle/roomserver/internal/player"
	"github.com/autobattle/roomserver/internal/protocol"
)

// HandleAction dispatches one decoded action{type:...} envelope from
// playerID, mutating that player's state in place. It returns the action
// type name and an error describing why the action was rejected, if any —
// the caller (internal/process) turns this into an actionResult frame.
func (r *Room) HandleAction(playerID string, env protocol.ActionEnvelope) (string, error) {
	s, ok := r.findSeat(playerID)
	if !ok {
		return env.Type, errUnknownPlayer
	}
	p := s.Player
	if p.Eliminated {
		return env.Type, errEliminated
	}

	switch env.Type {
	case protocol.ActionBuyUnit:
		var a protocol.BuyUnitAction
		if err := json.Unmarshal(env.Data, &a); err != nil {
			return env.Type, err
		}
		return env.Type, r.buyUnit(p, a.ShopIndex)

	case protocol.ActionSellUnit:
		var a protocol.SellUnitAction
		if err := json.Unmarshal(env.Data, &a); err != nil {
			return env.Type, err
		}
		inst, found := p.FindInstance(a.InstanceID)
		if !found {
			return env.Type, errInvalidTarget
		}
		star := inst.Star
		templateID, _, ok := p.SellUnit(a.InstanceID, r.cat)
		if !ok {
			return env.Type, errInvalidTarget
		}
		r.pool.Return(templateID, sellPoolCredit(star))
		return env.Type, nil

	case protocol.ActionPlaceUnit:
		var a protocol.PlaceUnitAction
		if err := json.Unmarshal(env.Data, &a); err != nil {
			return env.Type, err
		}
		if !p.PlaceOnBoard(a.InstanceID, player.BoardCoord{X: a.X, Y: a.Y}) {
			return env.Type, errInvalidTarget
		}
		player.RecomposeBoard(p, r.cat)
		return env.Type, nil

	case protocol.ActionBenchUnit:
		var a protocol.BenchUnitAction
		if err := json.Unmarshal(env.Data, &a); err != nil {
			return env.Type, err
		}
		if !p.ReturnToBench(a.InstanceID) {
			return env.Type, errInvalidTarget
		}
		player.RecomposeBoard(p, r.cat)
		return env.Type, nil

	case protocol.ActionMoveBenchUnit:
		var a protocol.MoveBenchUnitAction
		if err := json.Unmarshal(env.Data, &a); err != nil {
			return env.Type, err
		}
		if !p.MoveBenchUnit(a.InstanceID, a.TargetSlot) {
			return env.Type, errInvalidTarget
		}
		return env.Type, nil

	case protocol.ActionReroll:
		if p.Gold < player.RerollCost {
			return env.Type, errInsufficientGold
		}
		p.Gold -= player.RerollCost
		r.rollShop(p)
		return env.Type, nil

	case protocol.ActionBuyXP:
		if !player.BuyXP(p) {
			return env.Type, errInsufficientGold
		}
		return env.Type, nil

	case protocol.ActionToggleShopLock:
		p.ShopLocked = !p.ShopLocked
		return env.Type, nil

	case protocol.ActionCollectLoot:
		var a protocol.CollectLootAction
		if err := json.Unmarshal(env.Data, &a); err != nil {
			return env.Type, err
		}
		return env.Type, r.collectLoot(p, a.LootID)

	case protocol.ActionEquipItem:
		var a protocol.EquipItemAction
		if err := json.Unmarshal(env.Data, &a); err != nil {
			return env.Type, err
		}
		if a.ItemIndex < 0 || a.ItemIndex >= len(p.Inventory) {
			return env.Type, errInvalidTarget
		}
		if !p.EquipItem(a.InstanceID, p.Inventory[a.ItemIndex], r.cat) {
			return env.Type, errInvalidTarget
		}
		return env.Type, nil

	case protocol.ActionUnequipItem:
		var a protocol.UnequipItemAction
		if err := json.Unmarshal(env.Data, &a); err != nil {
			return env.Type, err
		}
		u, ok := p.FindInstance(a.InstanceID)
		if !ok || a.ItemSlot < 0 || a.ItemSlot >= len(u.Items) {
			return env.Type, errInvalidTarget
		}
		if !p.UnequipItem(a.InstanceID, u.Items[a.ItemSlot]) {
			return env.Type, errInvalidTarget
		}
		return env.Type, nil

	case protocol.ActionSelectMinorCrest:
		var a protocol.SelectMinorCrestAction
		if err := json.Unmarshal(env.Data, &a); err != nil {
			return env.Type, err
		}
		if !p.AddMinorCrest(a.CrestID) {
			return env.Type, errInvalidTarget
		}
		return env.Type, nil

	case protocol.ActionReplaceCrest:
		var a protocol.ReplaceCrestAction
		if err := json.Unmarshal(env.Data, &a); err != nil {
			return env.Type, err
		}
		return env.Type, r.replaceCrest(p, a.ReplaceIndex)

	case protocol.ActionSelectMajorCrest:
		var a protocol.SelectMajorCrestAction
		if err := json.Unmarshal(env.Data, &a); err != nil {
			return env.Type, err
		}
		r.SelectMajorCrest(playerID, a.CrestID)
		return env.Type, nil

	case protocol.ActionCombineItems:
		var a protocol.CombineItemsAction
		if err := json.Unmarshal(env.Data, &a); err != nil {
			return env.Type, err
		}
		return env.Type, r.combineItems(p, a.ItemIndex1, a.ItemIndex2)

	case protocol.ActionUseConsumable:
		var a protocol.UseConsumableAction
		if err := json.Unmarshal(env.Data, &a); err != nil {
			return env.Type, err
		}
		return env.Type, r.useConsumable(p, a.ItemIndex)

	case protocol.ActionSelectCrestChoice:
		var a protocol.SelectCrestChoiceAction
		if err := json.Unmarshal(env.Data, &a); err != nil {
			return env.Type, err
		}
		return env.Type, r.resolvePendingChoice(p, "crest_choice", a.ChoiceIndex, true)

	case protocol.ActionSelectItemChoice:
		var a protocol.SelectItemChoiceAction
		if err := json.Unmarshal(env.Data, &a); err != nil {
			return env.Type, err
		}
		return env.Type, r.resolvePendingChoice(p, "item_choice", a.ChoiceIndex, false)

	case protocol.ActionMerchantPick:
		var a protocol.MerchantPickAction
		if err := json.Unmarshal(env.Data, &a); err != nil {
			return env.Type, err
		}
		return env.Type, r.MerchantPick(playerID, a.OptionID)

	default:
		return env.Type, errUnknownAction
	}
}

// sellPoolCredit returns the number of copies a sold unit gives back to
// the shared pool: 3^(star-1), mirroring its sell-price formula (spec
// §4.2 "Sell returns 3^(star-1) copies").
func sellPoolCredit(star int) int {
	n := 1
	for i := 1; i < star; i++ {
		n *= 3
	}
	return n
}

// buyUnit takes the shop slot's unit from the pool, benches it, and runs
// the merge check (spec §4.2/§4.3).
func (r *Room) buyUnit(p *player.Player, shopIndex int) error {
	if shopIndex < 0 || shopIndex >= len(p.Shop) {
		return errInvalidTarget
	}
	templateID := p.Shop[shopIndex]
	if templateID == "" {
		return errInvalidTarget
	}
	tmpl, ok := r.cat.Unit(templateID)
	if !ok {
		return errInvalidTarget
	}
	if p.Gold < tmpl.Cost {
		return errInsufficientGold
	}
	if !r.pool.Take(templateID) {
		return errInvalidTarget
	}
	inst := &player.UnitInstance{InstanceID: p.NewInstanceID(), TemplateID: templateID, Star: 1}
	if !p.AddToBench(inst) {
		r.pool.Return(templateID, 1)
		return errBenchFull
	}
	p.Gold -= tmpl.Cost
	p.Shop[shopIndex] = ""
	player.MergeCheck(p, inst.InstanceID)
	return nil
}

// collectLoot resolves a pending-loot token into its concrete reward.
func (r *Room) collectLoot(p *player.Player, lootID string) error {
	for i, tok := range p.PendingLoot {
		if tok.ID != lootID {
			continue
		}
		switch tok.Kind {
		case "gold":
			p.Gold += tok.Gold
		case "item":
			p.AddInventory(tok.ItemID)
		case "unit":
			if r.pool.Take(tok.UnitID) {
				inst := &player.UnitInstance{InstanceID: p.NewInstanceID(), TemplateID: tok.UnitID, Star: 1}
				if p.AddToBench(inst) {
					player.MergeCheck(p, inst.InstanceID)
				} else {
					r.pool.Return(tok.UnitID, 1)
				}
			}
		}
		p.PendingLoot = append(p.PendingLoot[:i], p.PendingLoot[i+1:]...)
		return nil
	}
	return errInvalidTarget
}

// combineItems crafts a combined item directly in inventory from two held
// components (distinct from EquipItem's on-unit combine path).
func (r *Room) combineItems(p *player.Player, i1, i2 int) error {
	if i1 < 0 || i1 >= len(p.Inventory) || i2 < 0 || i2 >= len(p.Inventory) || i1 == i2 {
		return errInvalidTarget
	}
	combined, ok := r.cat.RecipeFor(p.Inventory[i1], p.Inventory[i2])
	if !ok {
		return errInvalidTarget
	}
	if i1 > i2 {
		i1, i2 = i2, i1
	}
	p.Inventory = append(p.Inventory[:i2], p.Inventory[i2+1:]...)
	p.Inventory = append(p.Inventory[:i1], p.Inventory[i1+1:]...)
	p.AddInventory(combined.ID)
	return nil
}

const consumableChoiceCount = 3

// useConsumable removes a consumable from inventory and raises an
// item_choice pending selection — consumables' effect is a player-chosen
// item reward, not a direct stat change (catalogue.ItemConsumable's doc
// comment: "triggers a pending selection on use").
func (r *Room) useConsumable(p *player.Player, itemIndex int) error {
	if itemIndex < 0 || itemIndex >= len(p.Inventory) {
		return errInvalidTarget
	}
	id := p.Inventory[itemIndex]
	item, ok := r.cat.Item(id)
	if !ok || item.Kind != catalogue.ItemConsumable {
		return errInvalidTarget
	}
	p.Inventory = append(p.Inventory[:itemIndex], p.Inventory[itemIndex+1:]...)

	pool := r.cat.ItemsByKind(catalogue.ItemCombined)
	n := consumableChoiceCount
	if n > len(pool) {
		n = len(pool)
	}
	var options []string
	for _, i := range r.rng.Perm(len(pool))[:n] {
		options = append(options, pool[i].ID)
	}
	p.PendingSelections = append(p.PendingSelections, player.PendingSelection{Kind: "item_choice", Options: options})
	return nil
}

// resolvePendingChoice answers the first pending selection of kind,
// granting Options[choiceIndex] either as a minor crest (asCrest) or an
// inventory item.
func (r *Room) resolvePendingChoice(p *player.Player, kind string, choiceIndex int, asCrest bool) error {
	for i, sel := range p.PendingSelections {
		if sel.Kind != kind {
			continue
		}
		if choiceIndex < 0 || choiceIndex >= len(sel.Options) {
			return errInvalidTarget
		}
		chosen := sel.Options[choiceIndex]
		if asCrest {
			if !p.AddMinorCrest(chosen) {
				p.PendingSelections = append(p.PendingSelections, player.PendingSelection{Kind: "crest_replace", Options: []string{chosen}})
			}
		} else {
			p.AddInventory(chosen)
		}
		p.PendingSelections = append(p.PendingSelections[:i], p.PendingSelections[i+1:]...)
		return nil
	}
	return errNoPendingSelection
}

// replaceCrest answers a pendingCrestReplacement selection: evict the
// chosen existing minor crest and install the one raised in it (spec
// §4.6 Crest rank rule, step 3).
func (r *Room) replaceCrest(p *player.Player, replaceIndex int) error {
	for i, sel := range p.PendingSelections {
		if sel.Kind != "crest_replace" || len(sel.Options) == 0 {
			continue
		}
		if replaceIndex < 0 || replaceIndex >= len(p.MinorCrests) {
			return errInvalidTarget
		}
		oldID := p.MinorCrests[replaceIndex].CrestID
		p.ReplaceMinorCrest(oldID, sel.Options[0])
		p.PendingSelections = append(p.PendingSelections[:i], p.PendingSelections[i+1:]...)
		return nil
	}
	return errNoPendingSelection
}
