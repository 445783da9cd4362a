package process

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/autobattle/roomserver/internal/protocol"
	"github.com/autobattle/roomserver/internal/room"
	"github.com/autobattle/roomserver/internal/session"
)

var (
	errRoomFull    = errors.New("room is full")
	errRoomStarted = errors.New("game already in progress")
	errNoSuchRoom  = errors.New("no such room")
)

// emptyRoomGrace is how long an empty room is kept around before it is
// torn down, so a brief disconnect-and-reconnect doesn't lose the game.
const emptyRoomGrace = 2 * time.Minute

// roomEntry bundles a live Room with the process-level bookkeeping Room
// itself has no business knowing about: who is seated where, and the
// empty-room cleanup timer.
type roomEntry struct {
	code       string
	maxPlayers int
	rm         *room.Room

	mu       sync.Mutex
	sessions map[string]*session.Session // playerID -> session

	cleanupTimer *time.Timer
}

// CreateRoom allocates a fresh room code, constructs the Room, starts its
// goroutine, and seats the creator.
func (p *Process) CreateRoom(s *session.Session, playerID, name string) *roomEntry {
	code := p.newRoomCode()
	entry := &roomEntry{
		code:       code,
		maxPlayers: p.maxPlayers,
		sessions:   make(map[string]*session.Session),
	}

	entry.rm = room.New(room.Config{
		Code:        code,
		Log:         p.log,
		Catalogue:   p.cat,
		Seed:        p.roomSeed(),
		OnBroadcast: entry.dispatchBroadcast,
		OnTimer:     p.scheduleTimer,
		OnGameEnd:   p.recordGameEnd,
	})

	p.mu.Lock()
	p.rooms[code] = entry
	p.mu.Unlock()

	go entry.rm.Run()

	entry.rm.Submit(func(r *room.Room) {
		r.Join(s.ID, playerID, name)
	})
	entry.addSession(playerID, s)
	return entry
}

// JoinRoom seats playerID into an existing room, enforcing the player cap
// outside the room goroutine (SeatCount/CurrentPhase are read via Submit
// to stay race-free with the room's own mutation).
func (p *Process) JoinRoom(s *session.Session, code, playerID, name string) (*roomEntry, error) {
	entry, ok := p.findRoom(code)
	if !ok {
		return nil, errNoSuchRoom
	}

	result := make(chan error, 1)
	entry.rm.Submit(func(r *room.Room) {
		reconnecting := r.HasSeat(playerID)
		if !reconnecting {
			if r.CurrentPhase() != room.PhaseWaiting {
				result <- errRoomStarted
				return
			}
			if r.SeatCount() >= entry.maxPlayers {
				result <- errRoomFull
				return
			}
		}
		r.Join(s.ID, playerID, name)
		result <- nil
	})
	if err := <-result; err != nil {
		return nil, err
	}
	entry.addSession(playerID, s)
	entry.cancelCleanup()
	return entry, nil
}

// LeaveRoom removes a session's identity from a room's session map and
// tells the Room the seat left. If the room is now empty, a grace-period
// cleanup timer starts instead of closing it immediately.
func (p *Process) LeaveRoom(entry *roomEntry, playerID string) {
	entry.removeSession(playerID)
	entry.rm.Submit(func(r *room.Room) {
		r.Leave(playerID)
	})
	if entry.sessionCount() == 0 {
		p.scheduleRoomCleanup(entry)
	}
}

// DisconnectFromRoom marks a seat disconnected without freeing it, for
// mid-game drops (spec's reconnection window).
func (p *Process) DisconnectFromRoom(entry *roomEntry, playerID string) {
	entry.removeSession(playerID)
	entry.rm.Submit(func(r *room.Room) {
		r.SetDisconnected(playerID)
	})
	if entry.sessionCount() == 0 {
		p.scheduleRoomCleanup(entry)
	}
}

func (p *Process) findRoom(code string) (*roomEntry, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	entry, ok := p.rooms[code]
	return entry, ok
}

// ListRooms summarizes every live room for the listRooms response.
// PlayerCount/InProgress are read synchronously via Submit per room; this
// is fine at the scale a single process's room count ever reaches.
func (p *Process) ListRooms() []roomSummaryResult {
	p.mu.RLock()
	entries := make([]*roomEntry, 0, len(p.rooms))
	for _, e := range p.rooms {
		entries = append(entries, e)
	}
	p.mu.RUnlock()

	out := make([]roomSummaryResult, 0, len(entries))
	for _, e := range entries {
		result := make(chan roomSummaryResult, 1)
		e.rm.Submit(func(r *room.Room) {
			result <- roomSummaryResult{
				Code:        e.code,
				PlayerCount: r.SeatCount(),
				InProgress:  r.CurrentPhase() != room.PhaseWaiting,
			}
		})
		out = append(out, <-result)
	}
	return out
}

type roomSummaryResult struct {
	Code        string
	PlayerCount int
	InProgress  bool
}

func (p *Process) scheduleRoomCleanup(entry *roomEntry) {
	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.cleanupTimer != nil {
		entry.cleanupTimer.Stop()
	}
	entry.cleanupTimer = time.AfterFunc(emptyRoomGrace, func() {
		if entry.sessionCount() > 0 {
			return
		}
		entry.rm.Close()
		p.mu.Lock()
		delete(p.rooms, entry.code)
		p.mu.Unlock()
		p.log.Info("closed empty room", zap.String("room", entry.code))
	})
}

func (e *roomEntry) cancelCleanup() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cleanupTimer != nil {
		e.cleanupTimer.Stop()
		e.cleanupTimer = nil
	}
}

func (e *roomEntry) addSession(playerID string, s *session.Session) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sessions[playerID] = s
}

func (e *roomEntry) removeSession(playerID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.sessions, playerID)
}

func (e *roomEntry) sessionCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.sessions)
}

// dispatchBroadcast is Room.Config.OnBroadcast: route one outgoing frame
// to whichever session owns playerID, batching combatStart specially so a
// long combat log doesn't go out as one oversized frame (spec §4.7).
func (e *roomEntry) dispatchBroadcast(playerID, msgType string, payload any) {
	e.mu.Lock()
	s, ok := e.sessions[playerID]
	e.mu.Unlock()
	if !ok {
		return
	}
	sendFramed(s, msgType, payload)
}

// broadcastChat fans a chat message out to every seated session. Chat
// bypasses the room goroutine entirely — it carries no game state.
func (e *roomEntry) broadcastChat(name, message string) {
	e.mu.Lock()
	sessions := make([]*session.Session, 0, len(e.sessions))
	for _, s := range e.sessions {
		sessions = append(sessions, s)
	}
	e.mu.Unlock()
	for _, s := range sessions {
		s.Send(protocol.OutChat, protocol.ChatPayload{Message: name + ": " + message})
	}
}
