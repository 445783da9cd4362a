package merchant

import (
	"errors"
	"sort"
)

var (
	ErrNotYourTurn  = errors.New("not your turn to pick")
	ErrPairTaken    = errors.New("that pair has already been taken")
	ErrUnknownPair  = errors.New("no such pair")
	ErrEngineDone   = errors.New("merchant round is already complete")
)

// Engine drives one merchant round's turn order and pick bookkeeping. It
// owns no timers and does no I/O — internal/room schedules the per-turn
// and safety timers and calls into Engine when they fire or a pick
// arrives.
type Engine struct {
	pairs []*Pair
	order []string // player ids, ascending health then ascending slot index
	pos   int       // index into order of the current picker; len(order) when done
}

// NewEngine builds the turn order (ascending health, ties by ascending
// board-slot index — spec §4.6) and attaches the round's generated pairs.
func NewEngine(players []PlayerHealthSlot, pairs []*Pair) *Engine {
	ordered := append([]PlayerHealthSlot(nil), players...)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Health != ordered[j].Health {
			return ordered[i].Health < ordered[j].Health
		}
		return ordered[i].SlotIndex < ordered[j].SlotIndex
	})
	order := make([]string, len(ordered))
	for i, p := range ordered {
		order[i] = p.PlayerID
	}
	return &Engine{pairs: pairs, order: order}
}

// CurrentPicker returns the player id whose turn it is, or ok=false if the
// round is complete.
func (e *Engine) CurrentPicker() (string, bool) {
	if e.Done() {
		return "", false
	}
	return e.order[e.pos], true
}

// Done reports whether every picker has picked or been skipped.
func (e *Engine) Done() bool {
	return e.pos >= len(e.order)
}

// Pairs returns the round's pairs (including taken ones, for display).
func (e *Engine) Pairs() []*Pair {
	return e.pairs
}

func (e *Engine) findPair(pairID string) (*Pair, error) {
	for _, p := range e.pairs {
		if p.ID == pairID {
			if p.Taken {
				return nil, ErrPairTaken
			}
			return p, nil
		}
	}
	return nil, ErrUnknownPair
}

// Pick marks pairID taken on behalf of playerID and advances to the next
// picker. The caller is responsible for applying the pair's rewards to
// the player (see ApplyPair) — Pick only manages turn-order state.
func (e *Engine) Pick(playerID, pairID string) (*Pair, error) {
	if e.Done() {
		return nil, ErrEngineDone
	}
	if e.order[e.pos] != playerID {
		return nil, ErrNotYourTurn
	}
	pair, err := e.findPair(pairID)
	if err != nil {
		return nil, err
	}
	pair.Taken = true
	e.pos++
	return pair, nil
}

// AutoPick picks on behalf of the current picker when their per-turn timer
// expires: the first unpicked pair, preferring one containing gold (spec
// §4.6). Returns nil if every pair is already taken.
func (e *Engine) AutoPick() (*Pair, error) {
	playerID, ok := e.CurrentPicker()
	if !ok {
		return nil, ErrEngineDone
	}
	var fallback *Pair
	for _, p := range e.pairs {
		if p.Taken {
			continue
		}
		if p.ContainsGold() {
			return e.Pick(playerID, p.ID)
		}
		if fallback == nil {
			fallback = p
		}
	}
	if fallback == nil {
		// No pairs left at all: just advance the turn.
		e.pos++
		return nil, nil
	}
	return e.Pick(playerID, fallback.ID)
}

// SkipCurrent advances the turn without applying any reward — used when
// the current picker has disconnected (spec §4.6 disconnect handling).
func (e *Engine) SkipCurrent() {
	if !e.Done() {
		e.pos++
	}
}

// SkipDisconnected advances past every upcoming picker for whom
// connected(id) is false, so a player who left mid-round is never handed
// a turn it can't answer.
func (e *Engine) SkipDisconnected(connected func(playerID string) bool) {
	for !e.Done() && !connected(e.order[e.pos]) {
		e.pos++
	}
}
