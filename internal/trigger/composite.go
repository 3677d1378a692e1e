package trigger

import (
	"github.com/rxtech-lab/argo-trend/internal/signal"
	"github.com/rxtech-lab/argo-trend/internal/types"
	"github.com/rxtech-lab/argo-trend/pkg/errors"
)

// Composite emits Long when every gate passes for the bullish polarity and
// Short when every gate passes for the bearish polarity. The bullish branch
// is skipped while long and the bearish branch while short, so an open
// position is never signalled again in its own direction.
type Composite struct {
	evaluator *signal.Evaluator
}

func NewComposite(evaluator *signal.Evaluator) (*Composite, error) {
	if evaluator == nil {
		return nil, errors.New(errors.ErrCodeMissingParameter, "composite trigger needs an evaluator")
	}

	return &Composite{evaluator: evaluator}, nil
}

func (c *Composite) Scan(in signal.Input) (types.SignalType, error) {
	if in.Holding != types.HoldingLong {
		evaluation, err := c.evaluator.Evaluate(in, types.DirectionBullish)
		if err != nil {
			return types.SignalTypeNoSignal, err
		}

		if evaluation.Passed {
			return types.SignalTypeLong, nil
		}
	}

	if in.Holding != types.HoldingShort {
		evaluation, err := c.evaluator.Evaluate(in, types.DirectionBearish)
		if err != nil {
			return types.SignalTypeNoSignal, err
		}

		if evaluation.Passed {
			return types.SignalTypeShort, nil
		}
	}

	return types.SignalTypeNoSignal, nil
}
