package store

import "time"

// Ledger event actions.
const (
	ActionAdd    = "add"
	ActionRemove = "remove"
	ActionReset  = "reset"
)

// LedgerEvent is one journaled ledger mutation.
type LedgerEvent struct {
	ID       int64
	Category string // empty for reset
	Action   string // add, remove, reset
	Delta    int    // change actually applied to the counter
	At       time.Time
}

type Setting struct {
	Key   string
	Value string
}

// EventFilter is used to filter ledger events in queries.
type EventFilter struct {
	Category *string
	From     *time.Time
	To       *time.Time
	Limit    int
}

// DailyTotal is the net number of acts made up for one category on one day.
type DailyTotal struct {
	Date     string
	Category string
	Count    int
}
