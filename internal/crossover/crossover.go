// Package crossover grades the relative motion of two lines between the
// previous and the current sample.
package crossover

import (
	"fmt"
	"math"

	"github.com/rxtech-lab/argo-trend/internal/types"
	"github.com/rxtech-lab/argo-trend/pkg/errors"
)

// LinePair names the two lines compared by a detector. A is the fast or
// signal line, B the slow line or reference level.
type LinePair struct {
	A types.LineName `yaml:"a" json:"a" jsonschema:"title=Line A,description=Fast or signal line" validate:"required"`
	B types.LineName `yaml:"b" json:"b" jsonschema:"title=Line B,description=Slow line or reference level" validate:"required"`
}

func (p LinePair) String() string {
	return fmt.Sprintf("%s/%s", p.A, p.B)
}

// Tolerance bounds the distance at which two uncrossed lines count as touching.
// The effective epsilon for a pair is max(Absolute, Relative * |b|) where b is
// the newest value of line B, so the threshold follows the price scale of the
// instrument.
type Tolerance struct {
	Absolute float64 `yaml:"absolute" json:"absolute" jsonschema:"title=Absolute tolerance,minimum=0,default=0" validate:"gte=0"`
	Relative float64 `yaml:"relative" json:"relative" jsonschema:"title=Relative tolerance,description=Fraction of the slow line value,minimum=0,default=0.0005" validate:"gte=0"`
}

// Epsilon returns the tolerance for a pair whose newest B value is b.
func (t Tolerance) Epsilon(b float64) float64 {
	return math.Max(t.Absolute, t.Relative*math.Abs(b))
}

// History is the read side of a line window.
type History interface {
	IsReady() bool
	At(k int) (types.LineSample, error)
}

// Detector classifies line pairs. It holds no state between calls.
type Detector struct {
	tolerance Tolerance
}

// NewDetector creates a detector with the given tolerance.
func NewDetector(tolerance Tolerance) (*Detector, error) {
	if tolerance.Absolute < 0 || tolerance.Relative < 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidThreshold, "tolerance must not be negative, got absolute=%v relative=%v", tolerance.Absolute, tolerance.Relative)
	}

	return &Detector{tolerance: tolerance}, nil
}

// Classify grades two aligned sequences where index 0 is the newest value.
func (d *Detector) Classify(a, b [2]float64, polarity types.Direction) types.CrossoverResult {
	if !polarity.IsTrending() {
		return types.CrossoverNone
	}

	prevDiff := a[1] - b[1]
	curDiff := a[0] - b[0]

	flipped := (prevDiff < 0 && curDiff > 0) || (prevDiff > 0 && curDiff < 0)
	if flipped {
		if matchesPolarity(curDiff, polarity) {
			return types.CrossoverStrong
		}

		return types.CrossoverNone
	}

	if math.Abs(curDiff) <= d.tolerance.Epsilon(b[0]) {
		return types.CrossoverNeutral
	}

	return types.CrossoverNone
}

// Detect grades pair over the two newest samples of history. A window that is
// not ready yields None without an error.
func (d *Detector) Detect(history History, pair LinePair, polarity types.Direction) (types.CrossoverResult, error) {
	if !history.IsReady() {
		return types.CrossoverNone, nil
	}

	var a, b [2]float64

	for k := range 2 {
		sample, err := history.At(k)
		if err != nil {
			return types.CrossoverNone, err
		}

		av, ok := sample.Value(pair.A)
		if !ok {
			return types.CrossoverNone, errors.Newf(errors.ErrCodeMissingLine, "sample %d steps back is missing line %q of pair %s", k, pair.A, pair)
		}

		bv, ok := sample.Value(pair.B)
		if !ok {
			return types.CrossoverNone, errors.Newf(errors.ErrCodeMissingLine, "sample %d steps back is missing line %q of pair %s", k, pair.B, pair)
		}

		a[k], b[k] = av, bv
	}

	return d.Classify(a, b, polarity), nil
}

func matchesPolarity(diff float64, polarity types.Direction) bool {
	switch polarity {
	case types.DirectionBullish:
		return diff > 0
	case types.DirectionBearish:
		return diff < 0
	default:
		return false
	}
}
