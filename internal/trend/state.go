// Package trend holds the per-instrument trend state and the universe arena
// that owns every state of a run.
package trend

import (
	"github.com/rxtech-lab/argo-trend/internal/crossover"
	"github.com/rxtech-lab/argo-trend/internal/signal"
	"github.com/rxtech-lab/argo-trend/internal/snapshot"
	"github.com/rxtech-lab/argo-trend/internal/trigger"
	"github.com/rxtech-lab/argo-trend/internal/types"
	"github.com/rxtech-lab/argo-trend/pkg/errors"
)

// Options configures a State.
type Options struct {
	// WindowSize is the capacity of the line window. Zero means the minimum of 2.
	WindowSize int
	// RequiredLines must be present in every reading
	RequiredLines []types.LineName
	// ParticipationLength is the capacity of the volume history. Zero disables it.
	ParticipationLength int
}

// State is the trend state of one instrument. It is owned by exactly one
// goroutine at a time and holds no locks.
type State struct {
	symbol  string
	trigger trigger.Trigger
	lines   []types.LineName

	window  *snapshot.Window[types.LineSample]
	volumes *snapshot.Window[float64]

	holding         types.HoldingSign
	indicatorsReady bool
	direction       types.Direction
}

func NewState(symbol string, trig trigger.Trigger, opts Options) (*State, error) {
	if symbol == "" {
		return nil, errors.New(errors.ErrCodeMissingParameter, "trend state needs a symbol")
	}

	if trig == nil {
		return nil, errors.Newf(errors.ErrCodeMissingParameter, "trend state for %s needs a trigger", symbol)
	}

	size := opts.WindowSize
	if size == 0 {
		size = snapshot.MinLineCapacity
	}

	window, err := snapshot.NewLineWindow(size)
	if err != nil {
		return nil, err
	}

	state := &State{
		symbol:    symbol,
		trigger:   trig,
		lines:     opts.RequiredLines,
		window:    window,
		direction: types.DirectionNone,
	}

	if opts.ParticipationLength > 0 {
		state.volumes, err = snapshot.New[float64](opts.ParticipationLength)
		if err != nil {
			return nil, err
		}
	}

	return state, nil
}

// Update records one reading and recomputes the direction. It returns whether
// the instrument is ready after the update. Not being ready is not an error;
// the direction is None until it is. A reading flagged as indicators-ready that
// lacks a required line is an error.
func (s *State) Update(reading types.Reading) (bool, error) {
	if reading.Symbol != "" && reading.Symbol != s.symbol {
		return false, errors.Newf(errors.ErrCodeInvalidReading, "reading for %s delivered to %s", reading.Symbol, s.symbol)
	}

	sample := reading.Sample()
	if err := sample.MustHave(s.lines...); err != nil {
		if reading.IndicatorsReady {
			return false, errors.Wrapf(errors.ErrCodeMissingLine, err, "reading for %s is incomplete", s.symbol)
		}
	} else {
		// warm-up readings without every line never enter the window
		s.window.Push(sample)
	}

	s.holding = reading.Holding
	s.indicatorsReady = reading.IndicatorsReady
	s.direction = types.DirectionNone

	ready := s.IsReady()
	if ready {
		in := signal.Input{
			Window:  s.window,
			Holding: s.holding,
			Volume:  reading.Volume,
		}
		if s.volumes != nil {
			in.VolumeHistory = s.volumes.Values()
		}

		sig, err := s.trigger.Scan(in)
		if err != nil {
			return false, errors.Wrapf(errors.ErrCodeStepFailed, err, "trigger failed for %s", s.symbol)
		}

		s.direction = sig.Direction()
	}

	// history excludes the step being evaluated
	if s.volumes != nil {
		s.volumes.Push(reading.Volume)
	}

	return ready, nil
}

// IsReady reports whether indicators are warmed up, the line window is full
// and, when participation is tracked, its history is full.
func (s *State) IsReady() bool {
	if !s.indicatorsReady || !s.window.IsReady() {
		return false
	}

	return s.volumes == nil || s.volumes.IsReady()
}

// RequireReady returns a NotReadyError naming the first history that is
// still short, in the order the checks gate readiness.
func (s *State) RequireReady() error {
	switch {
	case s.IsReady():
		return nil
	case !s.window.IsReady():
		return errors.NewNotReadyError(s.symbol, "line window", s.window.Len(), s.window.Cap())
	case s.volumes != nil && !s.volumes.IsReady():
		return errors.NewNotReadyError(s.symbol, "participation history", s.volumes.Len(), s.volumes.Cap())
	default:
		return errors.NewNotReadyError(s.symbol, "indicators", 0, 1)
	}
}

func (s *State) Symbol() string {
	return s.symbol
}

func (s *State) Direction() types.Direction {
	return s.direction
}

func (s *State) Holding() types.HoldingSign {
	return s.holding
}

// Window gives read-only access to the line window.
func (s *State) Window() crossover.History {
	return s.window
}

// Reset clears every window and the trigger memory.
func (s *State) Reset() {
	s.window.Reset()
	if s.volumes != nil {
		s.volumes.Reset()
	}

	if resetter, ok := s.trigger.(trigger.Resetter); ok {
		resetter.Reset()
	}

	s.holding = types.HoldingFlat
	s.indicatorsReady = false
	s.direction = types.DirectionNone
}
