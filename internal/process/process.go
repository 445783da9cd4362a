// Package process implements the process-wide client/room registries (C7):
// session bookkeeping, room-code allocation, and the top-level {type, data}
// message routing that session.Dispatcher hands inbound envelopes to.
// Exactly one Process exists per server; everything it touches is guarded
// by its own mutex, since sessions read/write it from their own reader
// goroutines concurrently.
package process

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/autobattle/roomserver/internal/catalogue"
	"github.com/autobattle/roomserver/internal/result"
	"github.com/autobattle/roomserver/internal/session"
)

// DefaultMaxPlayersPerRoom is used when no explicit cap is configured.
const DefaultMaxPlayersPerRoom = 4

// Process owns every live client connection and room in this server.
type Process struct {
	log        *zap.Logger
	cat        *catalogue.Catalogue
	recorder   result.Recorder
	maxPlayers int
	nextSeed   atomic.Int64

	mu          sync.RWMutex
	clients     map[string]*session.Session // session ID -> session
	rooms       map[string]*roomEntry       // room code -> entry
	sessionRoom map[string]*roomEntry       // session ID -> the room it last joined
}

// New builds an empty registry. seed seeds the per-room seed generator
// deterministically for tests; production callers pass a time-derived seed.
// Room codes are drawn from math/rand's global source, not from seed.
// maxPlayers <= 0 falls back to
// DefaultMaxPlayersPerRoom.
func New(cat *catalogue.Catalogue, rec result.Recorder, log *zap.Logger, seed int64, maxPlayers int) *Process {
	if maxPlayers <= 0 {
		maxPlayers = DefaultMaxPlayersPerRoom
	}
	p := &Process{
		log:         log,
		cat:         cat,
		recorder:    rec,
		maxPlayers:  maxPlayers,
		clients:     make(map[string]*session.Session),
		rooms:       make(map[string]*roomEntry),
		sessionRoom: make(map[string]*roomEntry),
	}
	p.nextSeed.Store(seed)
	return p
}

// Register tracks a newly connected session.
func (p *Process) Register(s *session.Session) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clients[s.ID] = s
}

// Unregister drops a disconnected session from the client registry.
func (p *Process) Unregister(s *session.Session) {
	p.mu.Lock()
	delete(p.clients, s.ID)
	p.mu.Unlock()
}

// roomSeed hands out a distinct deterministic seed to each new room so
// combat stays reproducible per-room without rooms sharing one rng.
func (p *Process) roomSeed() int64 {
	return p.nextSeed.Add(1)
}

func (p *Process) setSessionRoom(sessionID string, entry *roomEntry) {
	p.mu.Lock()
	p.sessionRoom[sessionID] = entry
	p.mu.Unlock()
}

func (p *Process) getSessionRoom(sessionID string) (*roomEntry, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	entry, ok := p.sessionRoom[sessionID]
	return entry, ok
}

func (p *Process) clearSessionRoom(sessionID string) {
	p.mu.Lock()
	delete(p.sessionRoom, sessionID)
	p.mu.Unlock()
}
