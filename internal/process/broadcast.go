package process

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/autobattle/roomserver/internal/protocol"
	"github.com/autobattle/roomserver/internal/room"
	"github.com/autobattle/roomserver/internal/session"
)

// sendFramed delivers one Room.Config.OnBroadcast payload to a session,
// special-casing combatStart so a long combat's event log goes out as
// batched frames instead of one oversized message (spec §4.7).
func sendFramed(s *session.Session, msgType string, payload any) {
	if msgType == protocol.OutCombatStart {
		if csp, ok := payload.(protocol.CombatStartPayload); ok {
			session.SendCombatStartBatched(s, csp, session.DefaultEventBatchSize)
			return
		}
	}
	s.Send(msgType, payload)
}

// scheduleTimer is Room.Config.OnTimer: d is seconds, wall-clock, matching
// the float64 the room's phase timers are expressed in throughout
// internal/room.
func (p *Process) scheduleTimer(d float64, fn func()) {
	time.AfterFunc(time.Duration(d*float64(time.Second)), fn)
}

// recordGameEnd is Room.Config.OnGameEnd: persist asynchronously so a slow
// or unavailable database never stalls the room goroutine that produced
// the snapshot.
func (p *Process) recordGameEnd(snap room.GameEndSnapshot) {
	if p.recorder == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := p.recorder.RecordGame(ctx, snap); err != nil {
			p.log.Error("record game result", zap.String("room", snap.RoomCode), zap.Error(err))
		}
	}()
}
