// Package session implements the per-connection websocket session (C6):
// reader/writer goroutines around a queued in/out channel pair, and
// decoding of the {type, data} wire envelope before handing it to a
// Dispatcher. Game state is never touched here — only transport and
// message shape.
package session

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/autobattle/roomserver/internal/protocol"
)

const (
	writeTimeout = 10 * time.Second
	pongWait     = 60 * time.Second
	pingPeriod   = (pongWait * 9) / 10
)

// Dispatcher routes a decoded inbound envelope to whatever owns game/process
// state (internal/process). Implemented outside this package so session
// stays transport-only.
type Dispatcher interface {
	HandleEnvelope(s *Session, env protocol.Envelope)
	HandleClose(s *Session)
}

// Session represents one client's websocket connection. Network I/O runs in
// dedicated goroutines; everything else accesses the session only through
// Send/Close, which are safe to call from any goroutine.
type Session struct {
	ID   string
	conn *websocket.Conn
	log  *zap.Logger

	OutQueue chan protocol.Envelope

	mu        sync.Mutex // serializes identity field writes below
	PlayerID  string
	RoomCode  string
	Name      string

	closeCh   chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool
}

// New wraps an already-upgraded websocket connection. outSize bounds the
// outbound queue; a slow client that can't keep up is disconnected rather
// than allowed to back-pressure the room's broadcast goroutine.
func New(id string, conn *websocket.Conn, outSize int, log *zap.Logger) *Session {
	return &Session{
		ID:       id,
		conn:     conn,
		log:      log.With(zap.String("session", id)),
		OutQueue: make(chan protocol.Envelope, outSize),
		closeCh:  make(chan struct{}),
	}
}

// SetIdentity records the player/room this session is now attached to.
func (s *Session) SetIdentity(playerID, name, roomCode string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.PlayerID = playerID
	s.Name = name
	s.RoomCode = roomCode
}

func (s *Session) Identity() (playerID, name, roomCode string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.PlayerID, s.Name, s.RoomCode
}

// Run starts the reader and writer goroutines and blocks the caller until
// the connection closes. d receives every decoded inbound envelope plus a
// final HandleClose notification.
func (s *Session) Run(d Dispatcher) {
	go s.writeLoop()
	s.readLoop(d)
	d.HandleClose(s)
}

// Send queues an outbound frame. Non-blocking: a full queue means the
// client isn't draining fast enough, so the session is dropped instead of
// letting one slow reader stall every broadcast (mirrors the teacher's
// Send-then-disconnect-on-backpressure rule).
func (s *Session) Send(msgType string, payload any) {
	if s.closed.Load() {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		s.log.Error("marshal outbound payload", zap.String("type", msgType), zap.Error(err))
		return
	}
	env := protocol.Envelope{Type: msgType, Data: data}
	select {
	case s.OutQueue <- env:
	default:
		s.log.Warn("outbound queue full, dropping slow session")
		s.Close()
	}
}

// Close gracefully shuts the session down; safe to call more than once or
// concurrently.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		close(s.closeCh)
		s.conn.Close()
	})
}

func (s *Session) IsClosed() bool {
	return s.closed.Load()
}

func (s *Session) readLoop(d Dispatcher) {
	defer s.Close()

	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if !s.closed.Load() {
				s.log.Debug("read error", zap.Error(err))
			}
			return
		}

		var env protocol.Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			s.log.Debug("malformed envelope", zap.Error(err))
			s.Send(protocol.OutError, protocol.ErrorPayload{Message: "malformed message"})
			continue
		}

		d.HandleEnvelope(s, env)
	}
}

func (s *Session) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	defer s.Close()

	for {
		select {
		case env := <-s.OutQueue:
			s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := s.conn.WriteJSON(env); err != nil {
				if !s.closed.Load() {
					s.log.Debug("write error", zap.Error(err))
				}
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-s.closeCh:
			return
		}
	}
}
