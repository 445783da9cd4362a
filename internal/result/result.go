// Package result implements the optional game-result recorder (C9):
// persisting a room's GameEndSnapshot once it reaches PhaseGameOver.
// internal/room knows nothing about storage — it only calls
// Config.OnGameEnd, which internal/process wires to a Recorder's
// RecordGame method.
package result

import (
	"context"

	"github.com/autobattle/roomserver/internal/room"
)

// Recorder persists a finished game's final standings. Implementations
// must not block the room goroutine that produced the snapshot; callers
// are expected to invoke RecordGame from a spawned goroutine or a
// background worker, not inline from Room.Config.OnGameEnd.
type Recorder interface {
	RecordGame(ctx context.Context, snap room.GameEndSnapshot) error
	Close()
}

// NoopRecorder discards every snapshot. Used when Config.Database.Enabled
// is false, so internal/process never has to nil-check the recorder.
type NoopRecorder struct{}

func (NoopRecorder) RecordGame(ctx context.Context, snap room.GameEndSnapshot) error { return nil }
func (NoopRecorder) Close()                                                         {}
