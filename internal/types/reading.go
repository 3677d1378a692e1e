package types

import (
	"time"

	"github.com/moznion/go-optional"
)

// HoldingSign is the sign of the position currently held in an instrument.
type HoldingSign int

const (
	HoldingShort HoldingSign = -1
	HoldingFlat  HoldingSign = 0
	HoldingLong  HoldingSign = 1
)

// HoldingFromQuantity derives the holding sign from a signed quantity.
func HoldingFromQuantity(quantity float64) HoldingSign {
	switch {
	case quantity > 0:
		return HoldingLong
	case quantity < 0:
		return HoldingShort
	default:
		return HoldingFlat
	}
}

// IsInvested reports whether any position is held.
func (h HoldingSign) IsInvested() bool {
	return h != HoldingFlat
}

// Reading is the input for one instrument at one step, supplied by the
// indicator-computation layer.
type Reading struct {
	// Time is the time of the step
	Time time.Time `yaml:"time"`
	// Symbol is the instrument the reading belongs to
	Symbol string `yaml:"symbol"`
	// Price is the current reference price
	Price float64 `yaml:"price"`
	// Volume is the current participation measure
	Volume float64 `yaml:"volume"`
	// Lines holds the current value of every monitored line
	Lines map[LineName]float64 `yaml:"lines"`
	// Holding is the sign of the position currently held
	Holding HoldingSign `yaml:"holding"`
	// IndicatorsReady is false while any upstream indicator is still warming up
	IndicatorsReady bool `yaml:"indicators_ready"`
}

// Sample projects the reading into a LineSample.
func (r Reading) Sample() LineSample {
	return NewLineSample(r.Time, r.Price, r.Lines)
}

// StepBatch is every reading delivered for one time step.
type StepBatch struct {
	Time     time.Time
	Readings []Reading
	// HeldPositions overrides the number of currently held positions.
	// When None, the number of readings with a non-flat holding is used.
	HeldPositions optional.Option[int]
}

// Held returns the held positions override, or tracked when none is set.
func (b StepBatch) Held(tracked int) int {
	if b.HeldPositions.IsSome() {
		return b.HeldPositions.Unwrap()
	}

	return tracked
}
