package types

// Direction is the composite per-instrument verdict for one step.
// It is also used as the polarity a detector or gate is evaluated for.
type Direction string

const (
	// DirectionBullish means every configured gate passed for the long side
	DirectionBullish Direction = "bullish"
	// DirectionBearish means every configured gate passed for the short side
	DirectionBearish Direction = "bearish"
	// DirectionNone means no side passed or the instrument is not ready
	DirectionNone Direction = "none"
)

// IsTrending reports whether the direction is Bullish or Bearish.
func (d Direction) IsTrending() bool {
	return d == DirectionBullish || d == DirectionBearish
}

// Opposite returns the mirrored polarity. None stays None.
func (d Direction) Opposite() Direction {
	switch d {
	case DirectionBullish:
		return DirectionBearish
	case DirectionBearish:
		return DirectionBullish
	default:
		return DirectionNone
	}
}

// CrossoverResult grades the relation change of one line pair between the
// previous and the current sample.
type CrossoverResult string

const (
	// CrossoverStrong means the lines crossed in the requested polarity
	CrossoverStrong CrossoverResult = "strong"
	// CrossoverNeutral means the lines did not cross but are within tolerance of each other
	CrossoverNeutral CrossoverResult = "neutral"
	// CrossoverNone means neither of the above
	CrossoverNone CrossoverResult = "none"
)

// SignalType is the output of a trigger for one step.
type SignalType string

const (
	// SignalTypeLong tells the allocator the instrument is a long candidate
	SignalTypeLong SignalType = "long"
	// SignalTypeShort tells the allocator the instrument is a short candidate
	SignalTypeShort SignalType = "short"
	// SignalTypeNoSignal tells the allocator to take no action
	SignalTypeNoSignal SignalType = "no_signal"
)

// Direction converts the signal back into a verdict.
func (s SignalType) Direction() Direction {
	switch s {
	case SignalTypeLong:
		return DirectionBullish
	case SignalTypeShort:
		return DirectionBearish
	default:
		return DirectionNone
	}
}
