package engine

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rxtech-lab/argo-trend/internal/datasource"
	"github.com/rxtech-lab/argo-trend/internal/trend"
	"github.com/rxtech-lab/argo-trend/internal/types"
)

// Lifecycle callback types for run phases
// All callbacks with error return can abort execution if they return an error

// OnRunStartCallback is called once the data source is initialized and before the first step.
// runID is a unique identifier for this run, generated before processing starts.
type OnRunStartCallback func(runID string, symbols []string, totalSteps int) error

// OnStepCallback is called after every completed step.
type OnStepCallback func(current int, total int, result types.StepResult) error

// OnRunEndCallback is called when the run ends (always called via defer).
type OnRunEndCallback func(stats types.RunStatistics, err error)

// LifecycleCallbacks holds all lifecycle callback functions for the trend engine.
// All fields are pointers - nil means no callback will be invoked.
type LifecycleCallbacks struct {
	OnRunStart *OnRunStartCallback
	OnStep     *OnStepCallback
	OnRunEnd   *OnRunEndCallback
}

//nolint:interfacebloat // Engine is a core interface that naturally requires multiple methods
type Engine interface {
	// Initialize the engine with the given configuration content.
	Initialize(config string) error
	// InitializeFromFile reads the configuration file at path and initializes the engine with it.
	InitializeFromFile(path string) error
	// SetDataSource sets the replay source used by Run.
	SetDataSource(source datasource.ReadingSource) error
	// Register adds an instrument to the universe. Instruments are ranked in registration order.
	Register(symbol string) error
	// Step consumes the readings of one time step and returns the verdicts, the
	// selection and the resulting allocation actions.
	Step(ctx context.Context, batch types.StepBatch) (types.StepResult, error)
	// Run replays the data file at dataPath through Step.
	// The context can be used to cancel the run between steps.
	Run(ctx context.Context, dataPath string, callbacks LifecycleCallbacks) (types.RunStatistics, error)
	// Universe gives access to the per instrument trend states.
	Universe() *trend.Universe
	// Gatherer returns the registry holding the engine metrics.
	Gatherer() prometheus.Gatherer
	// GetConfigSchema returns the schema of the engine configuration
	GetConfigSchema() (string, error)
}
