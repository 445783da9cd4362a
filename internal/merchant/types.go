// Package merchant implements the mad-merchant turn engine (spec §4.6): a
// sequential, timed, health-ordered draft of reward pairs, nested inside
// the room runtime's mad_merchant round.
package merchant

// PairType is one of the six reward-pair shapes a merchant round can deal.
type PairType string

const (
	PairUnitItem      PairType = "unit_item"
	PairCrestRerolls  PairType = "crest_rerolls"
	PairGoldItem      PairType = "gold_item"
	PairItemItem      PairType = "item_item"
	PairUnitCrest     PairType = "unit_crest"
	PairItemCrest     PairType = "item_crest"
)

var allPairTypes = []PairType{
	PairUnitItem, PairCrestRerolls, PairGoldItem, PairItemItem, PairUnitCrest, PairItemCrest,
}

// Reward is one half of a Pair. Only the fields relevant to the pair's
// type are populated.
type Reward struct {
	UnitTemplateID string `json:"unitTemplateId,omitempty"`
	ItemID         string `json:"itemId,omitempty"`
	Gold           int    `json:"gold,omitempty"`
	Rerolls        int    `json:"rerolls,omitempty"`
	CrestID        string `json:"crestId,omitempty"`
}

// Pair is one of the six generated picks for a merchant round.
type Pair struct {
	ID    string   `json:"id"`
	Type  PairType `json:"type"`
	A     Reward   `json:"a"`
	B     Reward   `json:"b"`
	Taken bool     `json:"taken"`
}

// ContainsGold reports whether either reward in the pair grants gold
// directly — used by the auto-pick-on-timeout rule (spec §4.6).
func (p *Pair) ContainsGold() bool {
	return p.A.Gold > 0 || p.B.Gold > 0
}

// PlayerHealthSlot is the minimal view the pick-order computation needs
// from each active player.
type PlayerHealthSlot struct {
	PlayerID  string
	Health    int
	SlotIndex int
}
