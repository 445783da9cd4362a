package room

import (
	"github.com/autobattle/roomserver/internal/catalogue"
	"github.com/autobattle/roomserver/internal/protocol"
)

// startMajorCrestRound offers every active player 3 random major-crest
// choices with a 20s timer (spec §4.5).
func (r *Room) startMajorCrestRound() {
	r.majorCrestChoices = make(map[string][]string)
	r.majorCrestPicked = make(map[string]bool)
	all := r.cat.CrestsByKind(catalogue.CrestMajor)
	for _, p := range r.ActivePlayers() {
		r.majorCrestChoices[p.ID] = r.sampleThreeCrestIDs(all)
		r.send(p.ID, protocol.OutMajorCrestStart, map[string]any{"choices": r.majorCrestChoices[p.ID]})
	}
	gen := r.phaseGen
	r.scheduleAfter(majorCrestTimerSeconds, func(rm *Room) {
		if rm.phaseGen != gen {
			return
		}
		rm.finishMajorCrestRound()
	})
}

func (r *Room) sampleThreeCrestIDs(all []*catalogue.Crest) []string {
	if len(all) == 0 {
		return nil
	}
	n := 3
	if n > len(all) {
		n = len(all)
	}
	idx := r.rng.Perm(len(all))[:n]
	out := make([]string, n)
	for i, j := range idx {
		out[i] = all[j].ID
	}
	return out
}

// SelectMajorCrest records playerID's chosen major crest and, once every
// active player has chosen, ends the round.
func (r *Room) SelectMajorCrest(playerID, crestID string) {
	s, ok := r.findSeat(playerID)
	if !ok || r.majorCrestPicked[playerID] {
		return
	}
	s.Player.MajorCrest = crestID
	r.majorCrestPicked[playerID] = true
	r.send(playerID, protocol.OutMajorCrestSelect, map[string]any{"crestId": crestID})
	if r.allMajorCrestsPicked() {
		r.finishMajorCrestRound()
	}
}

func (r *Room) allMajorCrestsPicked() bool {
	for _, p := range r.ActivePlayers() {
		if !r.majorCrestPicked[p.ID] {
			return false
		}
	}
	return true
}

// finishMajorCrestRound auto-assigns a random offered option to any
// non-chooser, then advances to the next planning round (spec §4.5).
func (r *Room) finishMajorCrestRound() {
	for _, p := range r.ActivePlayers() {
		if r.majorCrestPicked[p.ID] {
			continue
		}
		choices := r.majorCrestChoices[p.ID]
		if len(choices) > 0 {
			p.MajorCrest = choices[r.rng.Intn(len(choices))]
		}
		r.majorCrestPicked[p.ID] = true
	}
	r.broadcast(protocol.OutMajorCrestEnd, map[string]any{"round": r.round})
	r.enterPlanning()
}
