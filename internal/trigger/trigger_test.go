package trigger

import (
	"errors"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-trend/internal/crossover"
	"github.com/rxtech-lab/argo-trend/internal/signal"
	"github.com/rxtech-lab/argo-trend/internal/snapshot"
	"github.com/rxtech-lab/argo-trend/internal/types"
	"github.com/rxtech-lab/argo-trend/mocks"
	apperrors "github.com/rxtech-lab/argo-trend/pkg/errors"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type TriggerTestSuite struct {
	suite.Suite
	ctrl *gomock.Controller
}

func TestTriggerSuite(t *testing.T) {
	suite.Run(t, new(TriggerTestSuite))
}

func (suite *TriggerTestSuite) SetupTest() {
	suite.ctrl = gomock.NewController(suite.T())
}

func (suite *TriggerTestSuite) TearDownTest() {
	suite.ctrl.Finish()
}

func (suite *TriggerTestSuite) window(samples ...map[types.LineName]float64) *snapshot.Window[types.LineSample] {
	w, err := snapshot.NewLineWindow(2)
	suite.Require().NoError(err)

	for i, lines := range samples {
		w.Push(types.NewLineSample(time.Unix(int64(i), 0), 100, lines))
	}

	return w
}

func (suite *TriggerTestSuite) composite() *Composite {
	detector, err := crossover.NewDetector(crossover.Tolerance{})
	suite.Require().NoError(err)

	evaluator, err := signal.NewEvaluator(detector, []signal.Gate{
		signal.CrossoverGate(false, crossover.LinePair{A: "fast", B: "slow"}),
	})
	suite.Require().NoError(err)

	c, err := NewComposite(evaluator)
	suite.Require().NoError(err)

	return c
}

func (suite *TriggerTestSuite) TestOneShotSequence() {
	inner := mocks.NewMockTrigger(suite.ctrl)
	gomock.InOrder(
		inner.EXPECT().Scan(gomock.Any()).Return(types.SignalTypeLong, nil),
		inner.EXPECT().Scan(gomock.Any()).Return(types.SignalTypeLong, nil),
		inner.EXPECT().Scan(gomock.Any()).Return(types.SignalTypeShort, nil),
		inner.EXPECT().Scan(gomock.Any()).Return(types.SignalTypeShort, nil),
		inner.EXPECT().Scan(gomock.Any()).Return(types.SignalTypeLong, nil),
	)

	oneShot := NewOneShot(inner)
	expected := []types.SignalType{
		types.SignalTypeLong,
		types.SignalTypeNoSignal,
		types.SignalTypeShort,
		types.SignalTypeNoSignal,
		types.SignalTypeLong,
	}

	for i, want := range expected {
		got, err := oneShot.Scan(signal.Input{})
		suite.NoError(err)
		suite.Equal(want, got, "step %d", i)
	}
}

func (suite *TriggerTestSuite) TestOneShotReset() {
	inner := mocks.NewMockTrigger(suite.ctrl)
	inner.EXPECT().Scan(gomock.Any()).Return(types.SignalTypeShort, nil).Times(3)

	oneShot := NewOneShot(inner)

	got, _ := oneShot.Scan(signal.Input{})
	suite.Equal(types.SignalTypeShort, got)

	got, _ = oneShot.Scan(signal.Input{})
	suite.Equal(types.SignalTypeNoSignal, got)

	oneShot.Reset()

	got, _ = oneShot.Scan(signal.Input{})
	suite.Equal(types.SignalTypeShort, got)
}

func (suite *TriggerTestSuite) TestOneShotPropagatesError() {
	inner := mocks.NewMockTrigger(suite.ctrl)
	inner.EXPECT().Scan(gomock.Any()).Return(types.SignalTypeNoSignal, errors.New("boom"))

	_, err := NewOneShot(inner).Scan(signal.Input{})
	suite.EqualError(err, "boom")
}

func (suite *TriggerTestSuite) TestOneShotNoSignalBetween() {
	inner := mocks.NewMockTrigger(suite.ctrl)
	gomock.InOrder(
		inner.EXPECT().Scan(gomock.Any()).Return(types.SignalTypeLong, nil),
		inner.EXPECT().Scan(gomock.Any()).Return(types.SignalTypeNoSignal, nil),
		inner.EXPECT().Scan(gomock.Any()).Return(types.SignalTypeLong, nil),
	)

	oneShot := NewOneShot(inner)
	for _, want := range []types.SignalType{types.SignalTypeLong, types.SignalTypeNoSignal, types.SignalTypeLong} {
		got, err := oneShot.Scan(signal.Input{})
		suite.NoError(err)
		suite.Equal(want, got)
	}
}

func (suite *TriggerTestSuite) TestCompositeBullish() {
	w := suite.window(
		map[types.LineName]float64{"fast": 10, "slow": 12},
		map[types.LineName]float64{"fast": 13, "slow": 11},
	)

	got, err := suite.composite().Scan(signal.Input{Window: w})
	suite.NoError(err)
	suite.Equal(types.SignalTypeLong, got)
}

func (suite *TriggerTestSuite) TestCompositeBearish() {
	w := suite.window(
		map[types.LineName]float64{"fast": 13, "slow": 11},
		map[types.LineName]float64{"fast": 10, "slow": 12},
	)

	got, err := suite.composite().Scan(signal.Input{Window: w})
	suite.NoError(err)
	suite.Equal(types.SignalTypeShort, got)
}

func (suite *TriggerTestSuite) TestCompositeSkipsHeldDirection() {
	bullish := suite.window(
		map[types.LineName]float64{"fast": 10, "slow": 12},
		map[types.LineName]float64{"fast": 13, "slow": 11},
	)
	bearish := suite.window(
		map[types.LineName]float64{"fast": 13, "slow": 11},
		map[types.LineName]float64{"fast": 10, "slow": 12},
	)

	c := suite.composite()

	got, err := c.Scan(signal.Input{Window: bullish, Holding: types.HoldingLong})
	suite.NoError(err)
	suite.Equal(types.SignalTypeNoSignal, got)

	got, err = c.Scan(signal.Input{Window: bullish, Holding: types.HoldingShort})
	suite.NoError(err)
	suite.Equal(types.SignalTypeLong, got)

	got, err = c.Scan(signal.Input{Window: bearish, Holding: types.HoldingShort})
	suite.NoError(err)
	suite.Equal(types.SignalTypeNoSignal, got)

	got, err = c.Scan(signal.Input{Window: bearish, Holding: types.HoldingLong})
	suite.NoError(err)
	suite.Equal(types.SignalTypeShort, got)
}

func (suite *TriggerTestSuite) TestCompositeMissingLine() {
	w := suite.window(
		map[types.LineName]float64{"fast": 10},
		map[types.LineName]float64{"fast": 13},
	)

	_, err := suite.composite().Scan(signal.Input{Window: w})
	suite.Error(err)
	suite.True(apperrors.HasCode(err, apperrors.ErrCodeMissingLine))
}

func (suite *TriggerTestSuite) TestNewCompositeNilEvaluator() {
	_, err := NewComposite(nil)
	suite.True(apperrors.HasCode(err, apperrors.ErrCodeMissingParameter))
}

func (suite *TriggerTestSuite) TestRSI() {
	rsi, err := NewRSI(DefaultRSIConfig())
	suite.Require().NoError(err)
	suite.Equal([]types.LineName{"rsi"}, rsi.Lines())

	tests := []struct {
		name     string
		value    float64
		holding  types.HoldingSign
		expected types.SignalType
	}{
		{name: "overbought", value: 75, expected: types.SignalTypeShort},
		{name: "oversold", value: 25, expected: types.SignalTypeLong},
		{name: "middle", value: 50, expected: types.SignalTypeNoSignal},
		{name: "band edge", value: 70, expected: types.SignalTypeNoSignal},
		{name: "invested", value: 80, holding: types.HoldingLong, expected: types.SignalTypeNoSignal},
	}

	for _, tt := range tests {
		w := suite.window(map[types.LineName]float64{"rsi": 50}, map[types.LineName]float64{"rsi": tt.value})

		got, err := rsi.Scan(signal.Input{Window: w, Holding: tt.holding})
		suite.NoError(err)
		suite.Equal(tt.expected, got, tt.name)
	}
}

func (suite *TriggerTestSuite) TestRSINotReady() {
	rsi, _ := NewRSI(DefaultRSIConfig())
	w := suite.window(map[types.LineName]float64{"rsi": 90})

	got, err := rsi.Scan(signal.Input{Window: w})
	suite.NoError(err)
	suite.Equal(types.SignalTypeNoSignal, got)
}

func (suite *TriggerTestSuite) TestRSIInvalidConfig() {
	_, err := NewRSI(RSIConfig{Line: "rsi", Overbought: 30, Oversold: 70})
	suite.True(apperrors.HasCode(err, apperrors.ErrCodeInvalidThreshold))

	_, err = NewRSI(RSIConfig{Overbought: 70, Oversold: 30})
	suite.True(apperrors.HasCode(err, apperrors.ErrCodeMissingParameter))
}

func (suite *TriggerTestSuite) TestRSIMissingLine() {
	rsi, _ := NewRSI(DefaultRSIConfig())
	w := suite.window(map[types.LineName]float64{}, map[types.LineName]float64{})

	_, err := rsi.Scan(signal.Input{Window: w})
	suite.True(apperrors.HasCode(err, apperrors.ErrCodeMissingLine))
}
