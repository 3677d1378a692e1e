package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// RankedCandidate is the read-only projection of an instrument used by the ranking pass.
type RankedCandidate struct {
	Symbol    string
	Slot      int
	Direction Direction
	Ready     bool
	Eligible  bool
}

// Selection is one instrument picked by the ranker.
type Selection struct {
	Symbol    string    `yaml:"symbol" json:"symbol"`
	Direction Direction `yaml:"direction" json:"direction"`
	// Rank is 1-based
	Rank int `yaml:"rank" json:"rank"`
}

type ActionKind string

const (
	ActionKindEnterLong  ActionKind = "enter_long"
	ActionKindEnterShort ActionKind = "enter_short"
	ActionKindLiquidate  ActionKind = "liquidate"
)

// Action is an allocation instruction derived from a selection or an exit rule.
// Actions are descriptive only; nothing in this module places orders.
type Action struct {
	Symbol string     `yaml:"symbol" json:"symbol"`
	Kind   ActionKind `yaml:"kind" json:"kind"`
	// Fraction of the portfolio value allocated to the position
	Fraction decimal.Decimal `yaml:"fraction" json:"fraction"`
	// Notional value of the position in the account currency
	Notional decimal.Decimal `yaml:"notional" json:"notional"`
	Reason   string          `yaml:"reason" json:"reason"`
}

// StepResult is the outcome of one engine step.
type StepResult struct {
	Time       time.Time
	Directions map[string]Direction
	Ready      map[string]bool
	Selected   []Selection
	Actions    []Action
}
