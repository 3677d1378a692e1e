// Package signal combines crossover detectors and auxiliary gates into a
// single directional verdict per instrument per step.
package signal

import (
	"fmt"
	"math"
	"slices"

	"github.com/rxtech-lab/argo-trend/internal/crossover"
	"github.com/rxtech-lab/argo-trend/internal/types"
	"github.com/rxtech-lab/argo-trend/pkg/errors"
)

// Input is everything the evaluator reads for one instrument at one step.
type Input struct {
	// Window holds the recent line samples, newest first
	Window crossover.History
	// Holding is the sign of the current position. The evaluator ignores it;
	// triggers use it to skip same-direction branches.
	Holding types.HoldingSign
	// Volume is the current participation measure
	Volume float64
	// VolumeHistory holds previous participation values newest first, excluding Volume
	VolumeHistory []float64
}

// GateResult is the outcome of one gate.
type GateResult struct {
	Kind   GateKind
	Passed bool
	Reason string
}

// Evaluation is the outcome of every gate for one polarity.
type Evaluation struct {
	Polarity types.Direction
	Passed   bool
	Gates    []GateResult
}

// Direction returns the polarity when every gate passed and None otherwise.
func (e Evaluation) Direction() types.Direction {
	if e.Passed {
		return e.Polarity
	}

	return types.DirectionNone
}

// Evaluator ANDs a fixed set of gates. It holds no per-instrument state and
// may be shared by every instrument of a universe.
type Evaluator struct {
	detector *crossover.Detector
	gates    []Gate
}

// NewEvaluator validates the gates and builds an evaluator.
func NewEvaluator(detector *crossover.Detector, gates []Gate) (*Evaluator, error) {
	if detector == nil {
		return nil, errors.New(errors.ErrCodeMissingParameter, "evaluator needs a crossover detector")
	}

	if len(gates) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidGate, "evaluator needs at least one gate")
	}

	for i, gate := range gates {
		if err := gate.validate(); err != nil {
			return nil, errors.Wrapf(errors.ErrCodeInvalidGate, err, "gate %d (%s) is invalid", i, gate.Kind)
		}
	}

	return &Evaluator{
		detector: detector,
		gates:    slices.Clone(gates),
	}, nil
}

// Lines returns the sorted set of lines referenced by any gate, excluding price.
func (e *Evaluator) Lines() []types.LineName {
	seen := make(map[types.LineName]struct{})

	for _, gate := range e.gates {
		for _, line := range gate.lines() {
			if line != types.LinePrice {
				seen[line] = struct{}{}
			}
		}
	}

	out := make([]types.LineName, 0, len(seen))
	for line := range seen {
		out = append(out, line)
	}

	slices.Sort(out)

	return out
}

// Validate returns a configuration error when a gate references a line that
// is not part of the configured line set.
func (e *Evaluator) Validate(configured []types.LineName) error {
	for _, line := range e.Lines() {
		if !slices.Contains(configured, line) {
			return errors.Newf(errors.ErrCodeInvalidConfiguration, "gate references line %q which is not a configured line", line)
		}
	}

	return nil
}

// NeedsParticipation reports whether a participation gate is configured.
func (e *Evaluator) NeedsParticipation() bool {
	return e.ParticipationLength() > 0
}

// ParticipationLength is the longest trailing history any participation gate uses.
func (e *Evaluator) ParticipationLength() int {
	length := 0

	for _, gate := range e.gates {
		if gate.Kind == GateKindParticipation {
			length = max(length, gate.Participation.AverageLength)
		}
	}

	return length
}

// Evaluate runs every gate for polarity. An unready window fails the
// evaluation without an error.
func (e *Evaluator) Evaluate(in Input, polarity types.Direction) (Evaluation, error) {
	evaluation := Evaluation{
		Polarity: polarity,
		Gates:    make([]GateResult, 0, len(e.gates)),
	}

	if !polarity.IsTrending() {
		return evaluation, nil
	}

	if in.Window == nil || !in.Window.IsReady() {
		return evaluation, nil
	}

	current, err := in.Window.At(0)
	if err != nil {
		return evaluation, err
	}

	passed := true

	for _, gate := range e.gates {
		result, err := e.evaluateGate(gate, in, current, polarity)
		if err != nil {
			return Evaluation{Polarity: polarity}, err
		}

		passed = passed && result.Passed
		evaluation.Gates = append(evaluation.Gates, result)
	}

	evaluation.Passed = passed

	return evaluation, nil
}

func (e *Evaluator) evaluateGate(gate Gate, in Input, current types.LineSample, polarity types.Direction) (GateResult, error) {
	switch gate.Kind {
	case GateKindCrossover:
		return e.evaluateCrossover(gate.Crossover, in, polarity)
	case GateKindBreakout:
		return evaluateBreakout(gate.Breakout, current, polarity)
	case GateKindStrength:
		return evaluateStrength(gate.Strength, current, polarity)
	case GateKindLevel:
		return evaluateLevel(gate.Level, current, polarity)
	case GateKindParticipation:
		return evaluateParticipation(gate.Participation, in), nil
	default:
		return GateResult{}, errors.Newf(errors.ErrCodeInvalidGate, "unknown gate kind %q", gate.Kind)
	}
}

func (e *Evaluator) evaluateCrossover(params *CrossoverParams, in Input, polarity types.Direction) (GateResult, error) {
	for _, pair := range params.Pairs {
		result, err := e.detector.Detect(in.Window, pair, polarity)
		if err != nil {
			return GateResult{}, err
		}

		if result == types.CrossoverStrong || (params.AcceptNeutral && result == types.CrossoverNeutral) {
			return GateResult{
				Kind:   GateKindCrossover,
				Passed: true,
				Reason: fmt.Sprintf("%s %s cross on %s", result, polarity, pair),
			}, nil
		}
	}

	return GateResult{Kind: GateKindCrossover, Reason: fmt.Sprintf("no %s cross", polarity)}, nil
}

func evaluateBreakout(params *BreakoutParams, current types.LineSample, polarity types.Direction) (GateResult, error) {
	values, err := lineValues(current, params.Edges)
	if err != nil {
		return GateResult{}, err
	}

	upper, lower := slices.Max(values), slices.Min(values)
	result := GateResult{Kind: GateKindBreakout}

	if polarity == types.DirectionBullish {
		result.Passed = current.Price > upper
		result.Reason = fmt.Sprintf("price %.4f vs upper edge %.4f", current.Price, upper)
	} else {
		result.Passed = current.Price < lower
		result.Reason = fmt.Sprintf("price %.4f vs lower edge %.4f", current.Price, lower)
	}

	return result, nil
}

func evaluateStrength(params *StrengthParams, current types.LineSample, polarity types.Direction) (GateResult, error) {
	values, err := lineValues(current, []types.LineName{params.Strength, params.Positive, params.Negative})
	if err != nil {
		return GateResult{}, err
	}

	strength, positive, negative := values[0], values[1], values[2]

	agrees := positive > negative
	if polarity == types.DirectionBearish {
		agrees = negative > positive
	}

	return GateResult{
		Kind:   GateKindStrength,
		Passed: strength > params.Threshold && agrees,
		Reason: fmt.Sprintf("strength=%.4f threshold=%.4f positive=%.4f negative=%.4f", strength, params.Threshold, positive, negative),
	}, nil
}

func evaluateLevel(params *LevelParams, current types.LineSample, polarity types.Direction) (GateResult, error) {
	level, ok := current.Value(params.Line)
	if !ok {
		return GateResult{}, errors.Newf(errors.ErrCodeMissingLine, "level gate line %q is missing", params.Line)
	}

	side := params.BullishSide
	if side == "" {
		side = SideBelow
	}

	if polarity == types.DirectionBearish {
		side = side.Opposite()
	}

	passed := current.Price < level
	if side == SideAbove {
		passed = current.Price > level
	}

	return GateResult{
		Kind:   GateKindLevel,
		Passed: passed,
		Reason: fmt.Sprintf("price %.4f must be %s %s %.4f", current.Price, side, params.Line, level),
	}, nil
}

func evaluateParticipation(params *ParticipationParams, in Input) GateResult {
	history := in.VolumeHistory
	if len(history) > params.AverageLength {
		history = history[:params.AverageLength]
	}

	if len(history) == 0 {
		return GateResult{Kind: GateKindParticipation, Reason: "no participation history"}
	}

	mean := average(history)
	if in.Volume > mean {
		return GateResult{
			Kind:   GateKindParticipation,
			Passed: true,
			Reason: fmt.Sprintf("volume %.4f above average %.4f", in.Volume, mean),
		}
	}

	recent := history[:min(params.Lookback, len(history))]
	for k, v := range recent {
		if v > mean {
			return GateResult{
				Kind:   GateKindParticipation,
				Passed: true,
				Reason: fmt.Sprintf("volume %d steps back %.4f above average %.4f", k+1, v, mean),
			}
		}
	}

	return GateResult{Kind: GateKindParticipation, Reason: fmt.Sprintf("volume %.4f not above average %.4f", in.Volume, mean)}
}

func lineValues(sample types.LineSample, names []types.LineName) ([]float64, error) {
	values := make([]float64, len(names))

	for i, name := range names {
		v, ok := sample.Value(name)
		if !ok {
			return nil, errors.Newf(errors.ErrCodeMissingLine, "line %q is missing", name)
		}

		if math.IsNaN(v) {
			return nil, errors.Newf(errors.ErrCodeInvalidReading, "line %q is NaN", name)
		}

		values[i] = v
	}

	return values, nil
}

func average(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}

	return sum / float64(len(values))
}
