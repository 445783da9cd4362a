package merchant

import (
	"github.com/autobattle/roomserver/internal/catalogue"
	"github.com/autobattle/roomserver/internal/player"
	"github.com/autobattle/roomserver/internal/pool"
)

// ApplyPair applies both rewards of a picked pair to p (spec §4.6 "picking
// applies both rewards in the pair"). pool is consulted (and mutated) when
// the reward is a unit, since a merchant unit reward is a fresh copy drawn
// from the shared pool, not a shop purchase.
func ApplyPair(p *player.Player, pair *Pair, cat *catalogue.Catalogue, pl *pool.Pool) {
	applyReward(p, pair.A, cat, pl)
	applyReward(p, pair.B, cat, pl)
}

func applyReward(p *player.Player, r Reward, cat *catalogue.Catalogue, pl *pool.Pool) {
	switch {
	case r.UnitTemplateID != "":
		applyUnitReward(p, r.UnitTemplateID, cat, pl)
	case r.ItemID != "":
		p.AddInventory(r.ItemID) // dropped silently if inventory is full, per spec §4.6
	case r.Gold > 0:
		p.Gold += r.Gold
	case r.Rerolls > 0:
		p.FreeRerolls += r.Rerolls
	case r.CrestID != "":
		applyCrestReward(p, r.CrestID)
	}
}

func applyUnitReward(p *player.Player, templateID string, cat *catalogue.Catalogue, pl *pool.Pool) {
	if !pl.Take(templateID) {
		return // pool exhausted for this template; reward silently fails
	}
	inst := &player.UnitInstance{InstanceID: p.NewInstanceID(), TemplateID: templateID, Star: 1}
	if p.AddToBench(inst) {
		player.MergeCheck(p, inst.InstanceID)
		return
	}
	// Bench full: convert to cost*2 gold instead (spec §4.6).
	pl.Return(templateID, 1)
	if tmpl, ok := cat.Unit(templateID); ok {
		p.Gold += tmpl.Cost * 2
	}
}

// applyCrestReward implements the crest rank rule (spec §4.6): rank up an
// owned crest, add a new one if under the 3-crest cap, or else raise a
// pendingCrestReplacement selection.
func applyCrestReward(p *player.Player, crestID string) {
	if p.AddMinorCrest(crestID) {
		return
	}
	p.PendingSelections = append(p.PendingSelections, player.PendingSelection{
		Kind:    "crest_replace",
		Options: []string{crestID},
	})
}
