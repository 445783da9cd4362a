// Package protocol defines the wire message envelope and the payload
// structs for every inbound and outbound message type (spec §6). The wire
// protocol is a tagged union keyed by "type"; unknown types are rejected
// by the dispatcher in internal/process, not here.
package protocol

import "encoding/json"

// Envelope is the {type, data} shape every frame (in either direction)
// is wrapped in.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Inbound message types (client -> server).
const (
	InSetName           = "setName"
	InCreateRoom         = "createRoom"
	InJoinRoom           = "joinRoom"
	InLeaveRoom          = "leaveRoom"
	InListRooms          = "listRooms"
	InReady              = "ready"
	InChat               = "chat"
	InAction             = "action"
)

// Inbound action{type:...} sub-types.
const (
	ActionBuyUnit          = "buyUnit"
	ActionSellUnit         = "sellUnit"
	ActionPlaceUnit        = "placeUnit"
	ActionBenchUnit        = "benchUnit"
	ActionMoveBenchUnit    = "moveBenchUnit"
	ActionReroll           = "reroll"
	ActionBuyXP            = "buyXP"
	ActionToggleShopLock   = "toggleShopLock"
	ActionCollectLoot      = "collectLoot"
	ActionEquipItem        = "equipItem"
	ActionUnequipItem      = "unequipItem"
	ActionCombineItems     = "combineItems"
	ActionUseConsumable    = "useConsumable"
	ActionSelectCrestChoice = "selectCrestChoice"
	ActionSelectItemChoice  = "selectItemChoice"
	ActionReplaceCrest      = "replaceCrest"
	ActionSelectMinorCrest  = "selectMinorCrest"
	ActionSelectMajorCrest  = "selectMajorCrest"
	ActionMerchantPick      = "merchantPick"
)

// Outbound message types (server -> client).
const (
	OutWelcome             = "welcome"
	OutNameSet             = "nameSet"
	OutRoomCreated         = "roomCreated"
	OutRoomJoined          = "roomJoined"
	OutLeftRoom            = "leftRoom"
	OutRoomList            = "roomList"
	OutPlayerJoined        = "playerJoined"
	OutPlayerLeft          = "playerLeft"
	OutPlayerReady         = "playerReady"
	OutBecameHost          = "becameHost"
	OutGameStart           = "gameStart"
	OutGameState           = "gameState"
	OutPhaseUpdate         = "phaseUpdate"
	OutRoundStart          = "roundStart"
	OutCombatStart         = "combatStart"
	OutCombatEventsBatch   = "combatEventsBatch"
	OutScoutCombatEvents   = "scoutCombatEvents"
	OutScoutCombatEventsBatch = "scoutCombatEventsBatch"
	OutCombatEnd           = "combatEnd"
	OutMerchantStart       = "merchantStart"
	OutMerchantPick        = "merchantPick"
	OutMerchantTurnUpdate  = "merchantTurnUpdate"
	OutMerchantEnd         = "merchantEnd"
	OutMajorCrestStart     = "majorCrestStart"
	OutMajorCrestSelect    = "majorCrestSelect"
	OutMajorCrestEnd       = "majorCrestEnd"
	OutActionResult        = "actionResult"
	OutGameEnd             = "gameEnd"
	OutChat                = "chat"
	OutError               = "error"
)

// Inbound payloads.

type SetNamePayload struct {
	Name string `json:"name"`
}

type JoinRoomPayload struct {
	RoomID string `json:"roomId"`
}

type ReadyPayload struct {
	Ready bool `json:"ready"`
}

type ChatPayload struct {
	Message string `json:"message"`
}

type ActionPayload struct {
	Action ActionEnvelope `json:"action"`
}

// ActionEnvelope is the nested tagged union inside an `action` message.
type ActionEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"-"`
}

// UnmarshalJSON captures the whole object so individual action fields
// (shopIndex, instanceId, x, y, ...) can be re-decoded per action type
// without a second round trip over the wire.
func (a *ActionEnvelope) UnmarshalJSON(b []byte) error {
	a.Data = append([]byte(nil), b...)
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(b, &head); err != nil {
		return err
	}
	a.Type = head.Type
	return nil
}

type BuyUnitAction struct {
	ShopIndex int `json:"shopIndex"`
}

type SellUnitAction struct {
	InstanceID string `json:"instanceId"`
}

type PlaceUnitAction struct {
	InstanceID string `json:"instanceId"`
	X          int    `json:"x"`
	Y          int    `json:"y"`
}

type BenchUnitAction struct {
	InstanceID string `json:"instanceId"`
	TargetSlot *int   `json:"targetSlot,omitempty"`
}

type MoveBenchUnitAction struct {
	InstanceID string `json:"instanceId"`
	TargetSlot int     `json:"targetSlot"`
}

type CollectLootAction struct {
	LootID string `json:"lootId"`
}

type EquipItemAction struct {
	ItemIndex  int    `json:"itemIndex"`
	InstanceID string `json:"instanceId"`
}

type UnequipItemAction struct {
	InstanceID string `json:"instanceId"`
	ItemSlot   int    `json:"itemSlot"`
}

type CombineItemsAction struct {
	ItemIndex1 int `json:"itemIndex1"`
	ItemIndex2 int `json:"itemIndex2"`
}

type UseConsumableAction struct {
	ItemIndex int `json:"itemIndex"`
}

type SelectCrestChoiceAction struct {
	ChoiceIndex int `json:"choiceIndex"`
}

type SelectItemChoiceAction struct {
	ChoiceIndex int `json:"choiceIndex"`
}

type ReplaceCrestAction struct {
	ReplaceIndex int `json:"replaceIndex"`
}

type SelectMinorCrestAction struct {
	CrestID string `json:"crestId"`
}

type SelectMajorCrestAction struct {
	CrestID string `json:"crestId"`
}

type MerchantPickAction struct {
	OptionID string `json:"optionId"`
}

// Outbound payloads.

type WelcomePayload struct {
	ClientID string `json:"clientId"`
}

type RoomSummary struct {
	RoomID      string `json:"roomId"`
	PlayerCount int    `json:"playerCount"`
	MaxPlayers  int    `json:"maxPlayers"`
	InProgress  bool   `json:"inProgress"`
}

type RoomListPayload struct {
	Rooms []RoomSummary `json:"rooms"`
}

type PhaseUpdatePayload struct {
	Phase string  `json:"phase"`
	Timer float64 `json:"timer"`
	Round int     `json:"round"`
}

type ActionResultPayload struct {
	Action  string `json:"action"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

type GameEndPayload struct {
	WinnerID   string `json:"winnerId"`
	WinnerName string `json:"winnerName"`
}
