package process

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/autobattle/roomserver/internal/catalogue"
	"github.com/autobattle/roomserver/internal/protocol"
	"github.com/autobattle/roomserver/internal/result"
	"github.com/autobattle/roomserver/internal/room"
	"github.com/autobattle/roomserver/internal/session"
)

const testUnitsYAML = `
units:
  - id: footman
    name: Footman
    cost: 1
    traits: [brawler]
    base: {health: 500, attack: 40, armor: 20, magic_resist: 20, attack_speed: 1.0, range: 1, mana_cap: 50, move_speed: 1.0}
`

const testTraitsYAML = `
traits:
  - id: brawler
    units: [footman]
    tiers:
      - count: 2
        scope: unit
        bonuses: {armor: 10}
`

const testItemsYAML = `
items:
  - id: sword
    name: Sword
    kind: component
    stats: {attack: 10}
`

const testCrestsYAML = `
crests:
  - id: minor_fire
    name: Minor Fire
    kind: minor
    bonuses: {attack: 5}
  - id: major_phoenix
    name: Phoenix Crest
    kind: major
    bonuses: {attack: 20}
`

func testCatalogue(t *testing.T) *catalogue.Catalogue {
	t.Helper()
	dir := t.TempDir()
	write := func(name, content string) {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	write("units.yaml", testUnitsYAML)
	write("traits.yaml", testTraitsYAML)
	write("items.yaml", testItemsYAML)
	write("crests.yaml", testCrestsYAML)

	cat, err := catalogue.Load(dir)
	if err != nil {
		t.Fatalf("load test catalogue: %v", err)
	}
	return cat
}

// fakeSession builds a Session with no real websocket conn, suitable for
// exercising Send (queue-only) but never Close/Run.
func fakeSession(id string) *session.Session {
	return session.New(id, nil, 32, zap.NewNop())
}

func drainEnvelope(t *testing.T, s *session.Session) protocol.Envelope {
	t.Helper()
	select {
	case env := <-s.OutQueue:
		return env
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for an outbound frame")
	}
	return protocol.Envelope{}
}

func newTestProcess(t *testing.T) *Process {
	t.Helper()
	return New(testCatalogue(t), result.NoopRecorder{}, zap.NewNop(), 1, 4)
}

func TestCreateRoomThenJoinRoomSeatsBothPlayers(t *testing.T) {
	p := newTestProcess(t)

	host := fakeSession("s1")
	p.Register(host)
	p.HandleEnvelope(host, protocol.Envelope{Type: protocol.InSetName, Data: []byte(`{"name":"Alice"}`)})
	drainEnvelope(t, host) // nameSet

	p.HandleEnvelope(host, protocol.Envelope{Type: protocol.InCreateRoom})
	created := drainEnvelope(t, host)
	if created.Type != protocol.OutRoomCreated {
		t.Fatalf("frame type = %q, want roomCreated", created.Type)
	}
	var summary protocol.RoomSummary
	if err := json.Unmarshal(created.Data, &summary); err != nil {
		t.Fatalf("unmarshal roomCreated: %v", err)
	}
	if len(summary.RoomID) != 4 {
		t.Fatalf("room code %q, want length 4", summary.RoomID)
	}

	guest := fakeSession("s2")
	p.Register(guest)
	p.HandleEnvelope(guest, protocol.Envelope{Type: protocol.InSetName, Data: []byte(`{"name":"Bob"}`)})
	drainEnvelope(t, guest)

	joinData, _ := json.Marshal(protocol.JoinRoomPayload{RoomID: summary.RoomID})
	p.HandleEnvelope(guest, protocol.Envelope{Type: protocol.InJoinRoom, Data: joinData})
	joined := drainEnvelope(t, guest)
	if joined.Type != protocol.OutRoomJoined {
		t.Fatalf("frame type = %q, want roomJoined", joined.Type)
	}

	entry, ok := p.getSessionRoom(guest.ID)
	if !ok {
		t.Fatalf("guest session was not tracked against a room")
	}
	seats := make(chan int, 1)
	entry.rm.Submit(func(r *room.Room) {
		seats <- r.SeatCount()
	})
	if n := <-seats; n != 2 {
		t.Fatalf("room seat count = %d, want 2", n)
	}
}

func TestJoinRoomRejectsUnknownCode(t *testing.T) {
	p := newTestProcess(t)
	guest := fakeSession("s1")
	p.Register(guest)
	p.HandleEnvelope(guest, protocol.Envelope{Type: protocol.InSetName, Data: []byte(`{"name":"Bob"}`)})
	drainEnvelope(t, guest)

	joinData, _ := json.Marshal(protocol.JoinRoomPayload{RoomID: "ZZZZ"})
	p.HandleEnvelope(guest, protocol.Envelope{Type: protocol.InJoinRoom, Data: joinData})
	errEnv := drainEnvelope(t, guest)
	if errEnv.Type != protocol.OutError {
		t.Fatalf("frame type = %q, want error", errEnv.Type)
	}
}

func TestActionBeforeJoiningAnyRoomReturnsError(t *testing.T) {
	p := newTestProcess(t)
	s := fakeSession("s1")
	p.Register(s)

	actionData, _ := json.Marshal(protocol.ActionPayload{Action: protocol.ActionEnvelope{Type: protocol.ActionReroll}})
	p.HandleEnvelope(s, protocol.Envelope{Type: protocol.InAction, Data: actionData})
	errEnv := drainEnvelope(t, s)
	if errEnv.Type != protocol.OutError {
		t.Fatalf("frame type = %q, want error", errEnv.Type)
	}
}

func TestHandleCloseUnregistersAndDisconnectsFromRoom(t *testing.T) {
	p := newTestProcess(t)
	host := fakeSession("s1")
	p.Register(host)
	p.HandleEnvelope(host, protocol.Envelope{Type: protocol.InSetName, Data: []byte(`{"name":"Alice"}`)})
	drainEnvelope(t, host)
	p.HandleEnvelope(host, protocol.Envelope{Type: protocol.InCreateRoom})
	drainEnvelope(t, host)

	p.HandleClose(host)

	p.mu.RLock()
	_, stillRegistered := p.clients[host.ID]
	p.mu.RUnlock()
	if stillRegistered {
		t.Fatalf("session should be unregistered after HandleClose")
	}
}
