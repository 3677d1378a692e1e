package types

import (
	"maps"
	"time"

	"github.com/rxtech-lab/argo-trend/pkg/errors"
)

// LineName identifies one monitored line supplied by the indicator layer,
// for example "tenkan", "kijun" or "vwap".
type LineName string

// LinePrice is reserved and always resolves to the reference price of a sample.
const LinePrice LineName = "price"

// LineSample is a timestamped set of named line readings for one instrument at one step.
type LineSample struct {
	// Time is the time of the step the sample was taken at
	Time time.Time
	// Price is the reference price of the instrument at this step
	Price float64
	// Lines holds the current value of every monitored line
	Lines map[LineName]float64
}

// NewLineSample copies lines so the returned sample does not share state with the caller.
func NewLineSample(t time.Time, price float64, lines map[LineName]float64) LineSample {
	return LineSample{
		Time:  t,
		Price: price,
		Lines: maps.Clone(lines),
	}
}

// Value returns the value of the named line. LinePrice resolves to Price.
func (s LineSample) Value(name LineName) (float64, bool) {
	if name == LinePrice {
		return s.Price, true
	}

	v, ok := s.Lines[name]

	return v, ok
}

// MustHave returns an error for the first name the sample does not carry.
func (s LineSample) MustHave(names ...LineName) error {
	for _, name := range names {
		if _, ok := s.Value(name); !ok {
			return errors.Newf(errors.ErrCodeMissingLine, "sample at %s is missing line %q", s.Time.Format(time.RFC3339), name)
		}
	}

	return nil
}
