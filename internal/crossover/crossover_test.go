package crossover

import (
	"math/rand"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-trend/internal/snapshot"
	"github.com/rxtech-lab/argo-trend/internal/types"
	"github.com/rxtech-lab/argo-trend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type CrossoverTestSuite struct {
	suite.Suite
	detector *Detector
}

func TestCrossoverSuite(t *testing.T) {
	suite.Run(t, new(CrossoverTestSuite))
}

func (suite *CrossoverTestSuite) SetupTest() {
	detector, err := NewDetector(Tolerance{Absolute: 0.5})
	suite.Require().NoError(err)
	suite.detector = detector
}

func (suite *CrossoverTestSuite) window(samples ...map[types.LineName]float64) *snapshot.Window[types.LineSample] {
	w, err := snapshot.NewLineWindow(2)
	suite.Require().NoError(err)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, lines := range samples {
		w.Push(types.NewLineSample(start.Add(time.Duration(i)*time.Minute), 100, lines))
	}

	return w
}

func TestClassify(t *testing.T) {
	detector, err := NewDetector(Tolerance{Absolute: 0.5})
	assert.NoError(t, err)

	tests := []struct {
		name     string
		a        [2]float64
		b        [2]float64
		polarity types.Direction
		expected types.CrossoverResult
	}{
		{name: "bullish cross", a: [2]float64{13, 10}, b: [2]float64{11, 12}, polarity: types.DirectionBullish, expected: types.CrossoverStrong},
		{name: "bearish cross", a: [2]float64{9, 12}, b: [2]float64{11, 10}, polarity: types.DirectionBearish, expected: types.CrossoverStrong},
		{name: "bullish cross asked bearish", a: [2]float64{13, 10}, b: [2]float64{11, 12}, polarity: types.DirectionBearish, expected: types.CrossoverNone},
		{name: "bearish cross asked bullish", a: [2]float64{9, 12}, b: [2]float64{11, 10}, polarity: types.DirectionBullish, expected: types.CrossoverNone},
		{name: "small flip in the other polarity", a: [2]float64{10.9, 11.1}, b: [2]float64{11, 11}, polarity: types.DirectionBullish, expected: types.CrossoverNone},
		{name: "converging below", a: [2]float64{10.7, 10}, b: [2]float64{11, 11}, polarity: types.DirectionBullish, expected: types.CrossoverNeutral},
		{name: "converging above", a: [2]float64{11.3, 12}, b: [2]float64{11, 11}, polarity: types.DirectionBearish, expected: types.CrossoverNeutral},
		{name: "touching from below", a: [2]float64{11, 10}, b: [2]float64{11, 11}, polarity: types.DirectionBullish, expected: types.CrossoverNeutral},
		{name: "previous touch is not a flip", a: [2]float64{12, 11}, b: [2]float64{11, 11}, polarity: types.DirectionBullish, expected: types.CrossoverNone},
		{name: "far apart", a: [2]float64{20, 21}, b: [2]float64{11, 11}, polarity: types.DirectionBullish, expected: types.CrossoverNone},
		{name: "none polarity", a: [2]float64{13, 10}, b: [2]float64{11, 12}, polarity: types.DirectionNone, expected: types.CrossoverNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, detector.Classify(tt.a, tt.b, tt.polarity))
		})
	}
}

func (suite *CrossoverTestSuite) TestNewDetectorRejectsNegativeTolerance() {
	_, err := NewDetector(Tolerance{Absolute: -1})
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidThreshold))

	_, err = NewDetector(Tolerance{Relative: -0.1})
	suite.Error(err)
}

func (suite *CrossoverTestSuite) TestEpsilonScalesWithPrice() {
	tolerance := Tolerance{Absolute: 0.01, Relative: 0.001}
	suite.InDelta(0.01, tolerance.Epsilon(5), 1e-12)
	suite.InDelta(0.1, tolerance.Epsilon(-100), 1e-12)
}

func (suite *CrossoverTestSuite) TestRelativeToleranceNeutral() {
	detector, err := NewDetector(Tolerance{Relative: 0.001})
	suite.Require().NoError(err)

	// 0.08 apart on a 100 scale is inside 0.1
	suite.Equal(types.CrossoverNeutral, detector.Classify([2]float64{99.92, 99}, [2]float64{100, 100}, types.DirectionBullish))
	// 0.08 apart on a 1 scale is not
	suite.Equal(types.CrossoverNone, detector.Classify([2]float64{0.92, 0.5}, [2]float64{1, 1}, types.DirectionBullish))
}

func (suite *CrossoverTestSuite) TestStrongProperty() {
	rng := rand.New(rand.NewSource(42))

	for range 1000 {
		prev := rng.Float64()*10 + 0.001
		cur := rng.Float64()*10 + 0.001
		b0 := rng.Float64() * 100
		b1 := rng.Float64() * 100

		// prevDiff < 0, curDiff > 0
		a := [2]float64{b0 + cur, b1 - prev}
		b := [2]float64{b0, b1}
		suite.Equal(types.CrossoverStrong, suite.detector.Classify(a, b, types.DirectionBullish))

		// prevDiff > 0, curDiff < 0
		a = [2]float64{b0 - cur, b1 + prev}
		suite.Equal(types.CrossoverStrong, suite.detector.Classify(a, b, types.DirectionBearish))
	}
}

func (suite *CrossoverTestSuite) TestNeutralProperty() {
	rng := rand.New(rand.NewSource(7))

	for range 1000 {
		b0 := rng.Float64() * 100
		b1 := rng.Float64() * 100
		curDiff := rng.Float64() * 0.5
		prevDiff := rng.Float64()*10 + 0.001

		// same sign on both sides, within tolerance
		a := [2]float64{b0 + curDiff, b1 + prevDiff}
		suite.Equal(types.CrossoverNeutral, suite.detector.Classify(a, [2]float64{b0, b1}, types.DirectionBullish))

		a = [2]float64{b0 - curDiff, b1 - prevDiff}
		suite.Equal(types.CrossoverNeutral, suite.detector.Classify(a, [2]float64{b0, b1}, types.DirectionBearish))
	}
}

func (suite *CrossoverTestSuite) TestDetectScenario() {
	w := suite.window(
		map[types.LineName]float64{"fast": 10, "slow": 12},
		map[types.LineName]float64{"fast": 13, "slow": 11},
	)

	result, err := suite.detector.Detect(w, LinePair{A: "fast", B: "slow"}, types.DirectionBullish)
	suite.NoError(err)
	suite.Equal(types.CrossoverStrong, result)

	result, err = suite.detector.Detect(w, LinePair{A: "fast", B: "slow"}, types.DirectionBearish)
	suite.NoError(err)
	suite.Equal(types.CrossoverNone, result)
}

func (suite *CrossoverTestSuite) TestDetectNotReadyIsNone() {
	rng := rand.New(rand.NewSource(1))

	for range 100 {
		w := suite.window(map[types.LineName]float64{"fast": rng.Float64(), "slow": rng.Float64()})

		for _, polarity := range []types.Direction{types.DirectionBullish, types.DirectionBearish} {
			result, err := suite.detector.Detect(w, LinePair{A: "fast", B: "slow"}, polarity)
			suite.NoError(err)
			suite.Equal(types.CrossoverNone, result)
		}
	}
}

func (suite *CrossoverTestSuite) TestDetectAgainstPrice() {
	// price is 100 for every sample
	w := suite.window(
		map[types.LineName]float64{"kijun": 101},
		map[types.LineName]float64{"kijun": 99},
	)

	result, err := suite.detector.Detect(w, LinePair{A: "kijun", B: types.LinePrice}, types.DirectionBearish)
	suite.NoError(err)
	suite.Equal(types.CrossoverStrong, result)
}

func (suite *CrossoverTestSuite) TestDetectMissingLine() {
	w := suite.window(
		map[types.LineName]float64{"fast": 10},
		map[types.LineName]float64{"fast": 13},
	)

	_, err := suite.detector.Detect(w, LinePair{A: "fast", B: "slow"}, types.DirectionBullish)
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeMissingLine))
	suite.Contains(err.Error(), "fast/slow")
}

func (suite *CrossoverTestSuite) TestLinePairString() {
	suite.Equal("tenkan/kijun", LinePair{A: "tenkan", B: "kijun"}.String())
}
