package room

import (
	"github.com/autobattle/roomserver/internal/combat"
	"github.com/autobattle/roomserver/internal/hexgrid"
	"github.com/autobattle/roomserver/internal/player"
	"github.com/autobattle/roomserver/internal/protocol"
)

// runMatchups simulates every matchup of the current PvP round, applies
// damage/streak results, and returns the longest matchup's wall-clock
// duration in seconds so the combat->results timer can be sized to it
// (spec §4.5 "delay = max matchup duration + 2s").
func (r *Room) runMatchups() float64 {
	summaries := make([]protocol.MatchupSummary, len(r.matchups))
	for i, m := range r.matchups {
		summaries[i] = protocol.MatchupSummary{HostID: m.HostID, AwayID: m.AwayID, Ghost: m.IsGhost}
	}

	var maxSeconds float64
	var results []protocol.MatchupResult
	for _, m := range r.matchups {
		hostSeat, _ := r.findSeat(m.HostID)
		awaySeat, _ := r.findSeat(m.AwayID)

		res := r.simulate(hostSeat.Player, awaySeat.Player)
		seconds := float64(res.DurationTicks) * combat.TickRate
		if seconds > maxSeconds {
			maxSeconds = seconds
		}

		start := protocol.CombatStartPayload{
			Round: r.round, Matchups: summaries, CombatEvents: res.Events, TotalEvents: len(res.Events),
		}
		r.send(m.HostID, protocol.OutCombatStart, start)
		if !m.IsGhost {
			r.send(m.AwayID, protocol.OutCombatStart, start)
		}

		if m.IsGhost || res.NoContest {
			continue
		}
		r.applyCombatResult(hostSeat.Player, awaySeat.Player, res)
		results = append(results,
			protocol.MatchupResult{PlayerID: hostSeat.Player.ID, Won: res.Winner == combat.SideHost, Damage: winnerDamage(res, combat.SideAway), SurvivingCount: res.SurvivingCount},
			protocol.MatchupResult{PlayerID: awaySeat.Player.ID, Won: res.Winner == combat.SideAway, Damage: winnerDamage(res, combat.SideHost), SurvivingCount: res.SurvivingCount},
		)
	}
	r.broadcast(protocol.OutCombatEnd, protocol.CombatEndPayload{Results: results})
	return maxSeconds
}

// winnerDamage reports the damage a matchup's result deals to the given
// losing side (0 if that side actually won).
func winnerDamage(res combat.Result, losingSide combat.Side) int {
	if res.Winner == losingSide {
		return 0
	}
	return res.Damage
}

// applyCombatResult applies the loser's life-total damage and both
// players' win/loss streak bookkeeping (spec §4.3 streak bonus feeds off
// RecordRoundResult).
func (r *Room) applyCombatResult(host, away *player.Player, res combat.Result) {
	hostWon := res.Winner == combat.SideHost
	player.RecordRoundResult(host, hostWon)
	player.RecordRoundResult(away, !hostWon)
	if hostWon {
		player.ApplyDamage(away, res.Damage)
	} else {
		player.ApplyDamage(host, res.Damage)
	}
}

// simulate builds a Simulation from two players' composed boards and runs
// it to completion.
func (r *Room) simulate(host, away *player.Player) combat.Result {
	hostSetups := r.boardToSetups(host, combat.SideHost)
	awaySetups := r.boardToSetups(away, combat.SideAway)
	sim := combat.NewSimulation(r.rng.Int63(), hostSetups, awaySetups)
	return sim.Run()
}

// boardToSetups converts a player's placed units into combat.UnitSetup,
// recomposing stats first so item/trait/crest bonuses are current, and
// mapping each unit's own-board coordinate into the shared arena (spec
// §4.4: player-two rows are mirrored so front ranks face).
func (r *Room) boardToSetups(p *player.Player, side combat.Side) []combat.UnitSetup {
	player.RecomposeBoard(p, r.cat)
	var out []combat.UnitSetup
	for _, bu := range p.BoardUnits() {
		tmpl, ok := r.cat.Unit(bu.Unit.TemplateID)
		if !ok {
			continue
		}
		// NewSimulation applies the host/away arena mapping itself
		// (spec §4.4); this only needs the unit's own-board coordinate.
		local := hexgrid.Coord{X: bu.Coord.X, Y: bu.Coord.Y}
		script := ""
		if tmpl.Ability != nil {
			script = tmpl.Ability.Script
		}
		out = append(out, combat.UnitSetup{
			InstanceID:     bu.Unit.InstanceID,
			TemplateID:     bu.Unit.TemplateID,
			Name:           tmpl.Name,
			Side:           side,
			LocalCoord:     local,
			Stats:          bu.Unit.Composed,
			DamageAffinity: tmpl.DamageAffinity,
			AbilityScript:  script,
		})
	}
	return out
}
