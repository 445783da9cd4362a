package room

import "errors"

var (
	errUnknownPlayer      = errors.New("no such player in this room")
	errEliminated         = errors.New("player is eliminated")
	errInvalidTarget      = errors.New("invalid action target")
	errInsufficientGold   = errors.New("insufficient gold")
	errBenchFull          = errors.New("bench is full")
	errNoPendingSelection = errors.New("no matching pending selection")
	errUnknownAction      = errors.New("unknown action type")
)
