// Package room implements the room runtime (C5): the per-room phase
// machine, matchup generation, special-round handling, and action
// dispatch. Exactly one goroutine per Room serializes every mutation —
// inbound actions, timer callbacks, and combat completion all funnel
// through its mailbox (spec §5).
package room

import (
	"math/rand"

	"go.uber.org/zap"

	"github.com/autobattle/roomserver/internal/catalogue"
	"github.com/autobattle/roomserver/internal/merchant"
	"github.com/autobattle/roomserver/internal/player"
	"github.com/autobattle/roomserver/internal/pool"
)

// Phase identifies where a room is in its lifecycle (spec §4.5).
type Phase string

const (
	PhaseWaiting  Phase = "waiting"
	PhasePlanning Phase = "planning"
	PhaseCombat   Phase = "combat"
	PhaseResults  Phase = "results"
	PhaseGameOver Phase = "gameOver"
)

// Matchup pairs two players (or one player against a ghost rematch) for a
// PvP combat round.
type Matchup struct {
	HostID   string
	AwayID   string
	IsGhost  bool // rematch against away's current board; deals no damage/streak
}

// Participant is a connection-level view of one seat in the room: session
// identity plus the owned Player game state.
type Participant struct {
	ClientID string
	Player   *player.Player
	Ready    bool
	Connected bool
}

// Room owns one game's full state and is only ever mutated by its own
// goroutine (see Run in loop.go).
type Room struct {
	Code string
	log  *zap.Logger
	cat  *catalogue.Catalogue
	pool *pool.Pool
	rng  *rand.Rand

	phase      Phase
	phaseGen   uint64
	round      int
	roundType  catalogue.RoundType

	seats   []*Participant // fixed slot order, index = SlotIndex
	matchups []Matchup
	hostMemory map[string]string // unordered-pair key -> last host player id

	merchantEngine *merchant.Engine

	majorCrestChoices map[string][]string // playerID -> 3 offered crest ids
	majorCrestPicked  map[string]bool

	mailbox chan func(*Room)
	done    chan struct{}

	// onBroadcast is invoked (outside the room goroutine's lock-free
	// section — it is itself called FROM the room goroutine) once per
	// recipient player for every outgoing frame; internal/process
	// supplies the real implementation, tests supply a recording stub.
	onBroadcast func(playerID, msgType string, payload any)
	onTimer     func(d float64, fn func())
	onGameEnd   func(GameEndSnapshot)
}

// PlayerFinal is one player's standing at game end.
type PlayerFinal struct {
	PlayerID   string
	Name       string
	Health     int
	Level      int
	Eliminated bool
}

// GameEndSnapshot is handed to Config.OnGameEnd once a room reaches
// PhaseGameOver, for internal/result to persist (C9).
type GameEndSnapshot struct {
	RoomCode   string
	Round      int
	WinnerID   string
	WinnerName string
	Players    []PlayerFinal
}

// Config bundles the dependencies a Room needs at construction.
type Config struct {
	Code        string
	Log         *zap.Logger
	Catalogue   *catalogue.Catalogue
	Seed        int64
	OnBroadcast func(playerID, msgType string, payload any)
	OnTimer     func(d float64, fn func())
	OnGameEnd   func(GameEndSnapshot)
}

// New constructs a waiting-phase room with an empty pool and no seats.
func New(cfg Config) *Room {
	cat := cfg.Catalogue
	r := &Room{
		Code:              cfg.Code,
		log:               cfg.Log.With(zap.String("room", cfg.Code)),
		cat:               cat,
		pool:              pool.New(cat),
		rng:               rand.New(rand.NewSource(cfg.Seed)),
		phase:             PhaseWaiting,
		hostMemory:        make(map[string]string),
		majorCrestChoices: make(map[string][]string),
		majorCrestPicked:  make(map[string]bool),
		mailbox:           make(chan func(*Room), 64),
		done:              make(chan struct{}),
		onBroadcast:       cfg.OnBroadcast,
		onTimer:           cfg.OnTimer,
		onGameEnd:         cfg.OnGameEnd,
	}
	return r
}

func pairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "|" + b
}

// ActivePlayers returns every non-eliminated, still-connected seat's player.
func (r *Room) ActivePlayers() []*player.Player {
	var out []*player.Player
	for _, s := range r.seats {
		if s.Connected && !s.Player.Eliminated {
			out = append(out, s.Player)
		}
	}
	return out
}

// SeatCount returns the number of players who have ever joined this room,
// connected or not.
func (r *Room) SeatCount() int {
	return len(r.seats)
}

// ConnectedCount returns the number of currently-connected seats.
func (r *Room) ConnectedCount() int {
	n := 0
	for _, s := range r.seats {
		if s.Connected {
			n++
		}
	}
	return n
}

// CurrentPhase reports the room's phase, for process-level room-list
// summaries.
func (r *Room) CurrentPhase() Phase {
	return r.phase
}

// HasSeat reports whether playerID already occupies a seat (connected or
// not), for internal/process to distinguish a reconnect from a fresh join
// before enforcing capacity/phase limits.
func (r *Room) HasSeat(playerID string) bool {
	_, ok := r.findSeat(playerID)
	return ok
}

func (r *Room) findSeat(playerID string) (*Participant, bool) {
	for _, s := range r.seats {
		if s.Player.ID == playerID {
			return s, true
		}
	}
	return nil, false
}

func (r *Room) broadcast(msgType string, payload any) {
	if r.onBroadcast == nil {
		return
	}
	for _, s := range r.seats {
		if s.Connected {
			r.onBroadcast(s.Player.ID, msgType, payload)
		}
	}
}

func (r *Room) send(playerID, msgType string, payload any) {
	if r.onBroadcast != nil {
		r.onBroadcast(playerID, msgType, payload)
	}
}
