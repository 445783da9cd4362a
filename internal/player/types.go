// Package player implements player state (C3): board/bench/shop, economy,
// inventory, crests, the stat composition pipeline, and the merge check.
// A Player is mutated only by room-runtime action handlers (spec §3
// Lifecycle); this package holds no goroutines and does no I/O.
package player

import "github.com/autobattle/roomserver/internal/catalogue"

const (
	BoardWidth  = 5
	BoardHeight = 4
	BenchSize   = 7
	ShopSize    = 4
	MaxInventory = 10
	MaxItemsPerUnit = 3
	MaxMinorCrests  = 3

	// StartingHealth is both the player's life total at game start and
	// their maxHealth — a single source of truth, so the two can never
	// drift apart the way they once did.
	StartingHealth = 100
)

// UnitInstance is one mutable unit copy owned by exactly one player.
type UnitInstance struct {
	InstanceID string
	TemplateID string
	Star       int // 1..3

	CurrentHealth float64
	CurrentMana   float64
	Items         []string // item ids, len <= MaxItemsPerUnit

	// Composed is the last stat composition result (recomputed by Recompose).
	Composed catalogue.StatBlock
}

// Key identifies a merge group: same template at the same star level.
type Key struct {
	TemplateID string
	Star       int
}

func (u *UnitInstance) Key() Key { return Key{u.TemplateID, u.Star} }

// BoardCoord is an odd-row-offset hex coordinate on a player's own board.
type BoardCoord struct {
	X, Y int
}

// LootToken is one entry in a player's pending-loot queue, awaiting a
// collectLoot action.
type LootToken struct {
	ID     string
	Kind   string // "unit", "item", "gold"
	UnitID string
	ItemID string
	Gold   int
}

// MinorCrestSlot is one of a player's up to three minor crests.
type MinorCrestSlot struct {
	CrestID string
	Rank    int // 1..3
}

// PendingSelection describes a choice the player owes the server an answer
// to before other actions proceed for that slot (crest choice, item choice,
// crest replacement).
type PendingSelection struct {
	Kind    string // "crest_choice", "item_choice", "crest_replace"
	Options []string
}

// Player is one room participant's full mutable state.
type Player struct {
	ID        string
	Name      string
	SlotIndex int

	Health    int
	MaxHealth int

	Gold  int
	Level int
	XP    int

	WinStreak  int
	LossStreak int

	Board [BoardWidth][BoardHeight]*UnitInstance
	Bench [BenchSize]*UnitInstance
	Shop  [ShopSize]string // unit template ids, "" = empty slot
	ShopLocked bool

	FreeRerolls int
	Inventory   []string // item ids, len <= MaxInventory

	MinorCrests []MinorCrestSlot // len <= MaxMinorCrests
	MajorCrest  string

	PendingSelections []PendingSelection

	Eliminated  bool
	PendingLoot []LootToken

	nextInstanceSeq int
}

// NewPlayer constructs an empty player ready for a fresh game.
func NewPlayer(id, name string, slot int) *Player {
	return &Player{
		ID:        id,
		Name:      name,
		SlotIndex: slot,
		Level:     1,
		Health:    StartingHealth,
		MaxHealth: StartingHealth,
	}
}

// NewInstanceID returns a fresh, player-unique instance id.
func (p *Player) NewInstanceID() string {
	p.nextInstanceSeq++
	return idSeq(p.ID, p.nextInstanceSeq)
}

func idSeq(playerID string, seq int) string {
	return playerID + "-u" + itoa(seq)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// BoardUnits returns every non-nil board unit with its coordinate.
func (p *Player) BoardUnits() []struct {
	Coord BoardCoord
	Unit  *UnitInstance
} {
	var out []struct {
		Coord BoardCoord
		Unit  *UnitInstance
	}
	for x := 0; x < BoardWidth; x++ {
		for y := 0; y < BoardHeight; y++ {
			if u := p.Board[x][y]; u != nil {
				out = append(out, struct {
					Coord BoardCoord
					Unit  *UnitInstance
				}{BoardCoord{x, y}, u})
			}
		}
	}
	return out
}

// BoardCount returns the number of units currently placed on the board.
func (p *Player) BoardCount() int {
	n := 0
	for x := 0; x < BoardWidth; x++ {
		for y := 0; y < BoardHeight; y++ {
			if p.Board[x][y] != nil {
				n++
			}
		}
	}
	return n
}

// BenchCount returns the number of occupied bench slots.
func (p *Player) BenchCount() int {
	n := 0
	for _, u := range p.Bench {
		if u != nil {
			n++
		}
	}
	return n
}

// FindInstance searches board then bench for an instance id.
func (p *Player) FindInstance(instanceID string) (*UnitInstance, bool) {
	for x := 0; x < BoardWidth; x++ {
		for y := 0; y < BoardHeight; y++ {
			if u := p.Board[x][y]; u != nil && u.InstanceID == instanceID {
				return u, true
			}
		}
	}
	for _, u := range p.Bench {
		if u != nil && u.InstanceID == instanceID {
			return u, true
		}
	}
	return nil, false
}

// IsOnBoard reports whether instanceID currently occupies a board cell.
func (p *Player) IsOnBoard(instanceID string) bool {
	for x := 0; x < BoardWidth; x++ {
		for y := 0; y < BoardHeight; y++ {
			if u := p.Board[x][y]; u != nil && u.InstanceID == instanceID {
				return true
			}
		}
	}
	return false
}

// firstFreeBenchSlot returns the index of the first empty bench slot, or -1.
func (p *Player) firstFreeBenchSlot() int {
	for i, u := range p.Bench {
		if u == nil {
			return i
		}
	}
	return -1
}
