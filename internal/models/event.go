package models

import (
	"fmt"
	"strings"
	"time"
)

// Action is the kind of clock event a worker records.
type Action string

const (
	ActionClockIn  Action = "clock_in"
	ActionBreak    Action = "break"
	ActionClockOut Action = "clock_out"
)

// actionAliases maps the spellings seen in real logs (including rows
// imported from the legacy sheet) to canonical actions.
var actionAliases = map[string]Action{
	"clock_in":  ActionClockIn,
	"in":        ActionClockIn,
	"上班":        ActionClockIn,
	"break":     ActionBreak,
	"rest":      ActionBreak,
	"休息":        ActionBreak,
	"clock_out": ActionClockOut,
	"out":       ActionClockOut,
	"下班":        ActionClockOut,
}

// ParseAction resolves a raw action cell to a canonical Action. Matching
// ignores case and surrounding whitespace.
func ParseAction(raw string) (Action, bool) {
	a, ok := actionAliases[strings.ToLower(strings.TrimSpace(raw))]
	return a, ok
}

// SchemeID identifies one of the budget-capped project schemes.
type SchemeID int

func (s SchemeID) String() string {
	return fmt.Sprintf("scheme %d", int(s))
}

// Event is one immutable entry of the clock-action log. Events are never
// mutated after normalization; derived entities are recomputed from the
// full event sequence on every read.
type Event struct {
	Worker string
	Scheme SchemeID
	Action Action
	At     time.Time
	// Order is the row's position in the store, used as the tie-breaker
	// when two events share the same instant.
	Order int64
}
