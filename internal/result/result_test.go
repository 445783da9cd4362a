package result

import (
	"context"
	"testing"

	"github.com/autobattle/roomserver/internal/room"
)

func TestNoopRecorderDiscardsSnapshotWithoutError(t *testing.T) {
	var r Recorder = NoopRecorder{}
	snap := room.GameEndSnapshot{
		RoomCode: "ABCD",
		Round:    7,
		WinnerID: "p1",
		Players: []room.PlayerFinal{
			{PlayerID: "p1", Name: "Alice", Health: 40, Level: 8},
		},
	}
	if err := r.RecordGame(context.Background(), snap); err != nil {
		t.Fatalf("RecordGame returned error: %v", err)
	}
	r.Close()
}
