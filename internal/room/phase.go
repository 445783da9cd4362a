package room

import (
	"github.com/autobattle/roomserver/internal/catalogue"
	"github.com/autobattle/roomserver/internal/player"
	"github.com/autobattle/roomserver/internal/protocol"
)

// planningTimerSeconds returns the planning-phase clock for a round type
// (spec §4.5). mad_merchant's 30s is informational only — the merchant
// engine drives its own per-turn timer and the expiry here is suppressed
// by enterPlanning never scheduling it for that round type.
func planningTimerSeconds(rt catalogue.RoundType) float64 {
	switch rt {
	case catalogue.RoundPveIntro:
		return 5
	case catalogue.RoundMadMerchant:
		return 30
	default:
		return 20
	}
}

const (
	resultsTimerSeconds    = 3
	majorCrestTimerSeconds = 20
	combatTimerMargin      = 2 // seconds added to worst-case matchup duration
)

// Join seats a new connected player, or reconnects an existing one.
func (r *Room) Join(clientID, playerID, name string) *player.Player {
	if s, ok := r.findSeat(playerID); ok {
		s.ClientID = clientID
		s.Connected = true
		return s.Player
	}
	p := player.NewPlayer(playerID, name, len(r.seats))
	r.seats = append(r.seats, &Participant{ClientID: clientID, Player: p, Connected: true})
	return p
}

// Leave removes playerID's seat entirely if the game hasn't started yet
// (freeing the slot for someone else), or just marks them disconnected if
// a game is already in progress — an in-progress room's slot indices are
// load-bearing for matchup/host-memory bookkeeping and can't be reused.
func (r *Room) Leave(playerID string) {
	if r.phase != PhaseWaiting {
		r.SetDisconnected(playerID)
		return
	}
	for i, s := range r.seats {
		if s.Player.ID == playerID {
			r.seats = append(r.seats[:i], r.seats[i+1:]...)
			return
		}
	}
}

// SetDisconnected marks a seat's connection state without removing it —
// eliminated/left players still occupy their slot index for matchup
// bookkeeping until the room is torn down.
func (r *Room) SetDisconnected(playerID string) {
	if s, ok := r.findSeat(playerID); ok {
		s.Connected = false
		if r.phase == PhasePlanning && r.roundType == catalogue.RoundMadMerchant && r.merchantEngine != nil {
			r.advanceMerchantPastDisconnected()
		}
	}
}

// SetReady records a ready toggle and, from waiting, starts the game once
// every connected seat is ready and there are at least two players.
func (r *Room) SetReady(playerID string, ready bool) {
	s, ok := r.findSeat(playerID)
	if !ok {
		return
	}
	s.Ready = ready
	switch r.phase {
	case PhaseWaiting:
		if r.allActiveReady() && len(r.seats) >= 2 {
			r.startGame()
		}
	case PhasePlanning:
		if r.allActiveReady() {
			r.enterCombatOrAdvance()
		}
	}
}

func (r *Room) allActiveReady() bool {
	any := false
	for _, s := range r.seats {
		if !s.Connected {
			continue
		}
		any = true
		if !s.Ready {
			return false
		}
	}
	return any
}

// startGame gives every seat one starting 1-cost unit from the pool (built
// in New), rolls its shop, and enters round 1's planning phase (spec §4.5
// waiting->planning).
func (r *Room) startGame() {
	for _, s := range r.seats {
		starter := r.randomStarterUnit()
		if starter != "" && r.pool.Take(starter) {
			inst := &player.UnitInstance{InstanceID: s.Player.NewInstanceID(), TemplateID: starter, Star: 1}
			s.Player.AddToBench(inst)
		}
		r.rollShop(s.Player)
	}
	r.round = 0
	r.enterPlanning()
}

func (r *Room) randomStarterUnit() string {
	candidates := r.cat.UnitsByCost(1)
	if len(candidates) == 0 {
		return ""
	}
	return candidates[r.rng.Intn(len(candidates))].ID
}

// enterPlanning runs the merge sweep, applies income/XP, rolls shops for
// any round that has one, and dispatches to special-round setup or the
// ordinary planning timer (spec §4.5, §4.3).
func (r *Room) enterPlanning() {
	r.bumpGeneration()
	r.round++
	r.roundType = catalogue.RoundTypeAt(r.round)
	r.phase = PhasePlanning
	r.runMergeSweepUntilStable()

	for _, s := range r.seats {
		if !s.Connected || s.Player.Eliminated {
			continue
		}
		s.Ready = false
		if !r.roundType.IsSpecialPvE() && r.roundType != catalogue.RoundMadMerchant && r.roundType != catalogue.RoundMajorCrest {
			player.ApplyPlanningIncome(s.Player)
			player.ApplyPlanningXP(s.Player)
		}
		r.rollShop(s.Player)
		player.RecomposeBoard(s.Player, r.cat)
	}

	r.broadcast(protocol.OutPhaseUpdate, protocol.PhaseUpdatePayload{
		Phase: string(PhasePlanning), Round: r.round, Timer: planningTimerSeconds(r.roundType),
	})

	switch r.roundType {
	case catalogue.RoundMadMerchant:
		r.startMerchantRound()
	case catalogue.RoundMajorCrest:
		r.startMajorCrestRound()
	default:
		gen := r.phaseGen
		r.scheduleAfter(planningTimerSeconds(r.roundType), func(rm *Room) {
			if rm.phaseGen == gen {
				rm.enterCombatOrAdvance()
			}
		})
	}
}

// rollShop rerolls every shop slot from the pool; a locked shop is left
// unchanged.
func (r *Room) rollShop(p *player.Player) {
	if p.ShopLocked {
		return
	}
	for i := range p.Shop {
		id, ok := r.pool.Roll(r.rng, p.Level)
		if !ok {
			p.Shop[i] = ""
			continue
		}
		p.Shop[i] = id
	}
}

// enterCombatOrAdvance is the planning->combat transition, except for the
// special rounds that skip combat entirely (spec §4.5).
func (r *Room) enterCombatOrAdvance() {
	if !r.roundType.IsCombat() {
		r.enterResults()
		return
	}
	if r.roundType.IsSpecialPvE() {
		r.runPvERound()
		return
	}
	r.enterCombat()
}

func (r *Room) enterCombat() {
	r.bumpGeneration()
	r.phase = PhaseCombat
	r.matchups = r.buildMatchups()
	maxDuration := r.runMatchups()
	r.scheduleAfter(maxDuration+combatTimerMargin, func(rm *Room) {
		rm.enterResults()
	})
}

func (r *Room) enterResults() {
	r.bumpGeneration()
	r.phase = PhaseResults
	r.broadcast(protocol.OutPhaseUpdate, protocol.PhaseUpdatePayload{
		Phase: string(PhaseResults), Round: r.round, Timer: resultsTimerSeconds,
	})
	if r.checkGameOver() {
		return
	}
	r.scheduleAfter(resultsTimerSeconds, func(rm *Room) {
		rm.enterPlanning()
	})
}

// checkGameOver ends the game once at most one active player remains
// (spec §4.5 "any -> gameOver"); round 14+ ties break by highest health.
func (r *Room) checkGameOver() bool {
	active := r.ActivePlayers()
	if len(active) > 1 && r.round < 14 {
		return false
	}
	if len(active) > 1 {
		best := active[0]
		for _, p := range active[1:] {
			if p.Health > best.Health {
				best = p
			}
		}
		active = []*player.Player{best}
	}
	r.bumpGeneration()
	r.phase = PhaseGameOver
	var winnerID, winnerName string
	if len(active) == 1 {
		winnerID, winnerName = active[0].ID, active[0].Name
	}
	r.broadcast(protocol.OutGameEnd, protocol.GameEndPayload{WinnerID: winnerID, WinnerName: winnerName})
	if r.onGameEnd != nil {
		r.onGameEnd(r.snapshot(winnerID, winnerName))
	}
	return true
}

// snapshot captures final per-player standings for internal/result (C9) to
// persist; the room itself has no storage concerns.
func (r *Room) snapshot(winnerID, winnerName string) GameEndSnapshot {
	snap := GameEndSnapshot{
		RoomCode: r.Code, Round: r.round, WinnerID: winnerID, WinnerName: winnerName,
	}
	for _, s := range r.seats {
		snap.Players = append(snap.Players, PlayerFinal{
			PlayerID:   s.Player.ID,
			Name:       s.Player.Name,
			Health:     s.Player.Health,
			Eliminated: s.Player.Eliminated,
			Level:      s.Player.Level,
		})
	}
	return snap
}

// runMergeSweepUntilStable repeatedly merge-checks every bench+board unit
// across every player until a full pass produces no further merges (spec
// §4.5 "Merge sweep").
func (r *Room) runMergeSweepUntilStable() {
	for _, s := range r.seats {
		p := s.Player
		for changed := true; changed; {
			changed = false
			before := snapshotKeys(p)
			for _, u := range p.Bench {
				if u != nil {
					player.MergeCheck(p, u.InstanceID)
				}
			}
			for _, bu := range p.BoardUnits() {
				player.MergeCheck(p, bu.Unit.InstanceID)
			}
			changed = !sameKeys(before, snapshotKeys(p))
		}
	}
}

func snapshotKeys(p *player.Player) []player.Key {
	var out []player.Key
	for _, u := range p.Bench {
		if u != nil {
			out = append(out, u.Key())
		}
	}
	for _, bu := range p.BoardUnits() {
		out = append(out, bu.Unit.Key())
	}
	return out
}

func sameKeys(a, b []player.Key) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
