package room

import (
	"strconv"

	"github.com/autobattle/roomserver/internal/catalogue"
	"github.com/autobattle/roomserver/internal/combat"
	"github.com/autobattle/roomserver/internal/hexgrid"
	"github.com/autobattle/roomserver/internal/player"
	"github.com/autobattle/roomserver/internal/protocol"
)

// runPvERound simulates every active player against a fixed enemy board
// (built from the catalogue's PvE-only, cost-0 units — spec §4.1/§4.5
// "generates a fixed enemy board via C1 fallbacks"), applies damage and
// streaks, and drops loot from unitDeath events into each player's pending
// loot queue.
func (r *Room) runPvERound() {
	r.bumpGeneration()
	r.phase = PhaseCombat
	enemy := r.pveFallbackBoard()

	var results []protocol.MatchupResult
	var maxSeconds float64
	for _, p := range r.ActivePlayers() {
		setups := r.boardToSetups(p, combat.SideHost)
		sim := combat.NewSimulation(r.rng.Int63(), setups, enemy)
		res := sim.Run()
		seconds := float64(res.DurationTicks) * combat.TickRate
		if seconds > maxSeconds {
			maxSeconds = seconds
		}

		r.send(p.ID, protocol.OutCombatStart, protocol.CombatStartPayload{
			Round: r.round, CombatEvents: res.Events, TotalEvents: len(res.Events),
		})

		won := res.Winner == combat.SideHost
		player.RecordRoundResult(p, won)
		if !won {
			player.ApplyDamage(p, res.Damage)
		}
		r.collectPvELoot(p, res)
		results = append(results, protocol.MatchupResult{PlayerID: p.ID, Won: won, Damage: winnerDamage(res, combat.SideHost), SurvivingCount: res.SurvivingCount})
	}
	r.broadcast(protocol.OutCombatEnd, protocol.CombatEndPayload{Results: results})

	r.scheduleAfter(maxSeconds+combatTimerMargin, func(rm *Room) { rm.enterResults() })
}

// collectPvELoot scans a finished simulation's unitDeath events for loot
// descriptors and appends a pending-loot token per drop (spec §4.5).
func (r *Room) collectPvELoot(p *player.Player, res combat.Result) {
	for _, ev := range res.Events {
		if ev.Type != combat.EventUnitDeath || ev.Loot == nil {
			continue
		}
		p.PendingLoot = append(p.PendingLoot, player.LootToken{
			ID:     p.NewInstanceID(),
			Kind:   ev.Loot.Kind,
			ItemID: ev.Loot.ItemID,
			Gold:   ev.Loot.Gold,
		})
	}
}

// pveFallbackBoard builds the fixed enemy side from the catalogue's
// PvE-only units (cost 0, never rollable into the shared pool), scaling
// roughly with round number by including one additional unit for every
// four rounds played, capped at the board's cell count.
func (r *Room) pveFallbackBoard() []combat.UnitSetup {
	candidates := r.cat.UnitsByCost(0)
	if len(candidates) == 0 {
		return nil
	}
	count := 1 + r.round/4
	if count > player.BoardHeight*player.BoardWidth {
		count = player.BoardHeight * player.BoardWidth
	}
	var out []combat.UnitSetup
	x, y := 0, 0
	for i := 0; i < count; i++ {
		tmpl := candidates[i%len(candidates)]
		script := ""
		if tmpl.Ability != nil {
			script = tmpl.Ability.Script
		}
		out = append(out, combat.UnitSetup{
			InstanceID:     "pve-" + tmpl.ID + "-" + strconv.Itoa(i),
			TemplateID:     tmpl.ID,
			Name:           tmpl.Name,
			Side:           combat.SideAway,
			LocalCoord:     hexgrid.Coord{X: x, Y: y},
			Stats:          scaleForPvE(tmpl.Base, r.round),
			DamageAffinity: tmpl.DamageAffinity,
			AbilityScript:  script,
			Loot:           r.rollPvELoot(),
		})
		x++
		if x >= player.BoardWidth {
			x = 0
			y++
		}
	}
	return out
}

// rollPvELoot decides one enemy's drop: usually gold scaled to the round,
// occasionally a random component item. Decided before the simulation runs
// so the simulator itself stays free of randomness (spec §4.4).
func (r *Room) rollPvELoot() *combat.LootDescriptor {
	if r.rng.Intn(4) == 0 {
		pool := r.cat.ItemsByKind(catalogue.ItemComponent)
		if len(pool) > 0 {
			item := pool[r.rng.Intn(len(pool))]
			return &combat.LootDescriptor{Kind: "item", ItemID: item.ID}
		}
	}
	gold := 1 + r.round/3
	return &combat.LootDescriptor{Kind: "gold", Gold: gold}
}

// scaleForPvE applies a mild round-based power scale to a PvE template's
// base stats, so repeated pve_loot/pve_boss rounds stay a threat as
// players accumulate stars and items.
func scaleForPvE(base catalogue.StatBlock, round int) catalogue.StatBlock {
	mult := 1.0 + 0.05*float64(round)
	s := base
	s.Health *= mult
	s.Attack *= mult
	s.AbilityPower *= mult
	s.Armor *= mult
	s.MagicResist *= mult
	return s
}
