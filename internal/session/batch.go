package session

import (
	"github.com/autobattle/roomserver/internal/combat"
	"github.com/autobattle/roomserver/internal/protocol"
)

// DefaultEventBatchSize caps how many combat.Events travel in a single
// frame. internal/room hands over a matchup's full event log in one
// shot (its CombatStartPayload.CombatEvents); it is this package's job to
// keep any one wire frame from growing unbounded on a long combat (spec
// §4.7 event batching), not the room's.
const DefaultEventBatchSize = 50

// SendCombatStartBatched sends the first DefaultEventBatchSize events as
// part of combatStart, then drains the remainder as combatEventsBatch
// frames.
func SendCombatStartBatched(s *Session, payload protocol.CombatStartPayload, batchSize int) {
	if batchSize <= 0 {
		batchSize = DefaultEventBatchSize
	}
	all := payload.CombatEvents
	first := all
	rest := all[:0]
	if len(all) > batchSize {
		first = all[:batchSize]
		rest = all[batchSize:]
	}

	head := payload
	head.CombatEvents = first
	head.BatchIndex = 0
	s.Send(protocol.OutCombatStart, head)

	sendRemainingBatches(s, protocol.OutCombatEventsBatch, payload.Round, rest, batchSize, 1)
}

// SendScoutCombatEvents batches a non-participant's view of another
// matchup's event log (spec §4.7 scouting) entirely as
// scoutCombatEvents/scoutCombatEventsBatch frames, since scouts never get
// a combatStart of their own for someone else's fight.
func SendScoutCombatEvents(s *Session, round int, events []combat.Event, batchSize int) {
	if batchSize <= 0 {
		batchSize = DefaultEventBatchSize
	}
	first := events
	rest := events[:0]
	if len(events) > batchSize {
		first = events[:batchSize]
		rest = events[batchSize:]
	}
	s.Send(protocol.OutScoutCombatEvents, protocol.CombatEventsBatchPayload{
		Round: round, CombatEvents: first, BatchIndex: 0, IsLast: len(rest) == 0,
	})
	sendRemainingBatches(s, protocol.OutScoutCombatEventsBatch, round, rest, batchSize, 1)
}

func sendRemainingBatches(s *Session, msgType string, round int, rest []combat.Event, batchSize, startIndex int) {
	idx := startIndex
	for len(rest) > 0 {
		n := batchSize
		if n > len(rest) {
			n = len(rest)
		}
		batch := rest[:n]
		rest = rest[n:]
		s.Send(msgType, protocol.CombatEventsBatchPayload{
			Round: round, CombatEvents: batch, BatchIndex: idx, IsLast: len(rest) == 0,
		})
		idx++
	}
}
