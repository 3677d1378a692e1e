// Package trigger turns the state of one instrument into a per-step signal.
package trigger

import (
	"github.com/rxtech-lab/argo-trend/internal/signal"
	"github.com/rxtech-lab/argo-trend/internal/types"
)

// Trigger produces the signal of one instrument for the current step.
// Implementations may keep state across steps and are owned by a single
// instrument.
type Trigger interface {
	Scan(in signal.Input) (types.SignalType, error)
}

// Resetter is implemented by triggers that remember previous steps.
type Resetter interface {
	Reset()
}

// Factory creates a fresh trigger for a newly registered instrument.
type Factory func() Trigger
