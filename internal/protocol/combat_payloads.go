package protocol

import "github.com/autobattle/roomserver/internal/combat"

// MatchupSummary describes one combat pairing within a round, reported in
// the combatStart frame so clients know who's fighting whom.
type MatchupSummary struct {
	HostID string `json:"hostId"`
	AwayID string `json:"awayId"`
	Ghost  bool   `json:"ghost"`
}

// CombatStartPayload carries the round's matchups plus the first batch of
// events for the recipient's own matchup (spec §4.7 event batching).
type CombatStartPayload struct {
	Round         int              `json:"round"`
	Matchups      []MatchupSummary `json:"matchups"`
	CombatEvents  []combat.Event   `json:"combatEvents"`
	MyTeam        string           `json:"myTeam"`
	OpponentTeam  string           `json:"opponentTeam"`
	TotalEvents   int              `json:"totalEvents"`
	BatchIndex    int              `json:"batchIndex"`
}

// CombatEventsBatchPayload is one subsequent batch of a combat (or scout)
// event stream.
type CombatEventsBatchPayload struct {
	Round        int            `json:"round"`
	CombatEvents []combat.Event `json:"combatEvents"`
	BatchIndex   int            `json:"batchIndex"`
	IsLast       bool           `json:"isLast"`
}

// MatchupResult is one player's outcome within a combatEnd broadcast.
type MatchupResult struct {
	PlayerID       string `json:"playerId"`
	Won            bool   `json:"won"`
	Damage         int    `json:"damage"`
	SurvivingCount int    `json:"survivingCount"`
}

// CombatEndPayload reports every active player's result for the round.
type CombatEndPayload struct {
	Results []MatchupResult `json:"results"`
}
