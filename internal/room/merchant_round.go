package room

import (
	"strconv"

	"github.com/autobattle/roomserver/internal/merchant"
	"github.com/autobattle/roomserver/internal/protocol"
)

// startMerchantRound generates the round's 6 pairs, builds the health-
// ordered turn engine, and kicks off the first picker's timer (spec §4.6).
func (r *Room) startMerchantRound() {
	pairs := merchant.GeneratePairs(r.rng, r.cat)
	var slots []merchant.PlayerHealthSlot
	for _, p := range r.ActivePlayers() {
		slots = append(slots, merchant.PlayerHealthSlot{PlayerID: p.ID, Health: p.Health, SlotIndex: p.SlotIndex})
	}
	r.merchantEngine = merchant.NewEngine(slots, pairs)

	r.broadcast(protocol.OutMerchantStart, merchantTurnPayload(r.merchantEngine))
	r.scheduleAfter(90, func(rm *Room) { rm.finishMerchantRoundIfSafetyExpired() })
	r.scheduleMerchantTurnTimer()
}

func merchantTurnPayload(e *merchant.Engine) map[string]any {
	picker, ok := e.CurrentPicker()
	return map[string]any{
		"pairs":  e.Pairs(),
		"picker": picker,
		"done":   !ok || e.Done(),
	}
}

// scheduleMerchantTurnTimer arms the 15s per-picker timer (spec §4.6).
func (r *Room) scheduleMerchantTurnTimer() {
	if r.merchantEngine == nil || r.merchantEngine.Done() {
		return
	}
	turn := r.merchantTurnToken()
	r.scheduleAfter(15, func(rm *Room) {
		if rm.merchantEngine == nil || rm.merchantTurnToken() != turn {
			return
		}
		rm.merchantEngine.AutoPick()
		rm.afterMerchantPick()
	})
}

// merchantTurnToken identifies the current picker+pair-count so a stale
// per-turn timer (one whose picker already moved on via a manual pick or
// a disconnect skip) can recognize itself as stale, distinct from the
// phase-generation check which only guards whole-phase transitions.
func (r *Room) merchantTurnToken() string {
	if r.merchantEngine == nil {
		return ""
	}
	picker, _ := r.merchantEngine.CurrentPicker()
	taken := 0
	for _, pr := range r.merchantEngine.Pairs() {
		if pr.Taken {
			taken++
		}
	}
	return picker + "#" + strconv.Itoa(taken)
}

// MerchantPick handles an inbound merchantPick action from playerID.
func (r *Room) MerchantPick(playerID, pairID string) error {
	if r.merchantEngine == nil {
		return merchant.ErrEngineDone
	}
	pair, err := r.merchantEngine.Pick(playerID, pairID)
	if err != nil {
		return err
	}
	if s, ok := r.findSeat(playerID); ok {
		merchant.ApplyPair(s.Player, pair, r.cat, r.pool)
	}
	r.afterMerchantPick()
	return nil
}

func (r *Room) afterMerchantPick() {
	r.broadcast(protocol.OutMerchantTurnUpdate, merchantTurnPayload(r.merchantEngine))
	if r.merchantEngine.Done() {
		r.finishMerchantRound()
		return
	}
	r.scheduleMerchantTurnTimer()
}

// advanceMerchantPastDisconnected implements the disconnect-handling rule:
// a disconnected current picker is skipped immediately, and any
// no-longer-present picker later in the order is skipped too (spec §4.6).
func (r *Room) advanceMerchantPastDisconnected() {
	if r.merchantEngine == nil {
		return
	}
	r.merchantEngine.SkipDisconnected(func(playerID string) bool {
		s, ok := r.findSeat(playerID)
		return ok && s.Connected
	})
	r.afterMerchantPick()
}

func (r *Room) finishMerchantRoundIfSafetyExpired() {
	if r.merchantEngine == nil || r.merchantEngine.Done() {
		return
	}
	r.finishMerchantRound()
}

// finishMerchantRound signals completion and advances to the next
// planning round after a 1s grace (spec §4.6 Completion).
func (r *Room) finishMerchantRound() {
	r.broadcast(protocol.OutMerchantEnd, map[string]any{"round": r.round})
	r.merchantEngine = nil
	r.scheduleAfter(1, func(rm *Room) { rm.enterPlanning() })
}
