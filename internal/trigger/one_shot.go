package trigger

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-trend/internal/signal"
	"github.com/rxtech-lab/argo-trend/internal/types"
)

// OneShot converts a level-triggered signal into an edge-triggered one: the
// wrapped signal is emitted only when it differs from the signal the wrapped
// trigger produced on the previous step.
//
// The previous step is the previous Scan. A state skips Scan while it is not
// ready, so a signal seen before an indicator gap still suppresses the same
// signal after it.
type OneShot struct {
	inner Trigger
	last  optional.Option[types.SignalType]
}

func NewOneShot(inner Trigger) *OneShot {
	return &OneShot{
		inner: inner,
		last:  optional.None[types.SignalType](),
	}
}

func (o *OneShot) Scan(in signal.Input) (types.SignalType, error) {
	current, err := o.inner.Scan(in)
	if err != nil {
		return types.SignalTypeNoSignal, err
	}

	previous := o.last
	o.last = optional.Some(current)

	if previous.IsSome() && previous.Unwrap() == current {
		return types.SignalTypeNoSignal, nil
	}

	return current, nil
}

// Reset forgets the previous signal and resets the wrapped trigger when it has memory.
func (o *OneShot) Reset() {
	o.last = optional.None[types.SignalType]()

	if resetter, ok := o.inner.(Resetter); ok {
		resetter.Reset()
	}
}
