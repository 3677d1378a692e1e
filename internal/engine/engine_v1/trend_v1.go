package engine

import (
	"context"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rxtech-lab/argo-trend/internal/allocation"
	"github.com/rxtech-lab/argo-trend/internal/crossover"
	"github.com/rxtech-lab/argo-trend/internal/datasource"
	"github.com/rxtech-lab/argo-trend/internal/engine"
	"github.com/rxtech-lab/argo-trend/internal/logger"
	"github.com/rxtech-lab/argo-trend/internal/metrics"
	"github.com/rxtech-lab/argo-trend/internal/ranking"
	"github.com/rxtech-lab/argo-trend/internal/signal"
	"github.com/rxtech-lab/argo-trend/internal/trend"
	"github.com/rxtech-lab/argo-trend/internal/trigger"
	"github.com/rxtech-lab/argo-trend/internal/types"
	"github.com/rxtech-lab/argo-trend/internal/version"
	"github.com/rxtech-lab/argo-trend/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

type TrendEngineV1 struct {
	config     TrendEngineV1Config
	configPath string
	log        *logger.Logger
	registry   *prometheus.Registry
	metrics    *metrics.Metrics
	datasource datasource.ReadingSource

	universe     *trend.Universe
	newTrigger   trigger.Factory
	stateOptions trend.Options
	ranker       *ranking.Ranker
	planner      *allocation.Planner
	capital      decimal.Decimal
	initialized  bool
}

// NewTrendEngineV1 creates an engine that logs to stdout once initialized.
func NewTrendEngineV1() engine.Engine {
	return NewTrendEngineV1WithLogger(nil)
}

// NewTrendEngineV1WithLogger creates an engine using log. A nil logger is
// replaced by a production logger during Initialize.
func NewTrendEngineV1WithLogger(log *logger.Logger) *TrendEngineV1 {
	registry := prometheus.NewRegistry()

	return &TrendEngineV1{
		config:       EmptyConfig(),
		configPath:   "",
		log:          log,
		registry:     registry,
		metrics:      metrics.NewMetrics(registry),
		datasource:   nil,
		universe:     trend.NewUniverse(),
		newTrigger:   nil,
		stateOptions: trend.Options{},
		ranker:       nil,
		planner:      nil,
		capital:      decimal.Zero,
		initialized:  false,
	}
}

// Initialize implements engine.Engine.
func (e *TrendEngineV1) Initialize(config string) error {
	// parse the config on top of the defaults
	e.config = EmptyConfig()
	if err := yaml.Unmarshal([]byte(config), &e.config); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse trend engine config", err)
	}

	if err := e.config.Validate(); err != nil {
		return err
	}

	// initialize the logger
	if e.log == nil {
		var loggerError error

		e.log, loggerError = logger.NewLogger()
		if loggerError != nil {
			return loggerError
		}
	}

	factory, options, err := e.buildTrigger()
	if err != nil {
		return err
	}

	ranker, err := ranking.NewRanker(e.config.MaxPositions)
	if err != nil {
		return err
	}

	planner, err := allocation.NewPlanner(decimal.NewFromFloat(e.config.PositionFraction), e.config.ExitRule())
	if err != nil {
		return err
	}

	e.newTrigger = factory
	e.stateOptions = options
	e.ranker = ranker
	e.planner = planner
	e.capital = decimal.NewFromFloat(e.config.InitialCapital)
	e.universe = trend.NewUniverse()
	e.initialized = true

	for _, symbol := range e.config.Universe {
		if err := e.Register(symbol); err != nil {
			e.initialized = false

			return err
		}
	}

	e.log.Info("Trend engine initialized",
		zap.String("version", version.GetVersion()),
		zap.String("trigger", string(e.config.Trigger.Kind)),
		zap.Bool("one_shot", e.config.Trigger.OneShot),
		zap.Int("gates", len(e.config.Gates)),
		zap.Int("universe", e.universe.Len()),
		zap.Int("max_positions", e.config.MaxPositions),
		zap.String("position_fraction", e.planner.Fraction().String()),
		zap.Int("workers", e.config.Workers),
	)

	return nil
}

// InitializeFromFile implements engine.Engine.
func (e *TrendEngineV1) InitializeFromFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read config %s", path)
	}

	if err := e.Initialize(string(content)); err != nil {
		return err
	}

	e.configPath = path

	return nil
}

// buildTrigger validates the line references of the configured trigger and
// returns a factory producing one trigger per instrument.
func (e *TrendEngineV1) buildTrigger() (trigger.Factory, trend.Options, error) {
	options := trend.Options{WindowSize: e.config.WindowSize}

	var base trigger.Trigger

	switch e.config.Trigger.Kind {
	case TriggerKindComposite:
		detector, err := crossover.NewDetector(e.config.Tolerance)
		if err != nil {
			return nil, options, err
		}

		evaluator, err := signal.NewEvaluator(detector, e.config.Gates)
		if err != nil {
			return nil, options, err
		}

		if err := evaluator.Validate(e.config.Lines); err != nil {
			return nil, options, err
		}

		composite, err := trigger.NewComposite(evaluator)
		if err != nil {
			return nil, options, err
		}

		base = composite
		options.RequiredLines = evaluator.Lines()
		options.ParticipationLength = evaluator.ParticipationLength()
	case TriggerKindRSI:
		rsi, err := trigger.NewRSI(e.config.RSIConfig())
		if err != nil {
			return nil, options, err
		}

		for _, line := range rsi.Lines() {
			if !slices.Contains(e.config.Lines, line) {
				return nil, options, errors.Newf(errors.ErrCodeInvalidConfiguration, "rsi trigger references line %q which is not a configured line", line)
			}
		}

		base = rsi
		options.RequiredLines = rsi.Lines()
	default:
		return nil, options, errors.Newf(errors.ErrCodeInvalidConfiguration, "unknown trigger kind %q", e.config.Trigger.Kind)
	}

	// composite and rsi triggers are stateless and shared; one-shot memory is per instrument
	oneShot := e.config.Trigger.OneShot
	factory := func() trigger.Trigger {
		if oneShot {
			return trigger.NewOneShot(base)
		}

		return base
	}

	return factory, options, nil
}

// SetDataSource implements engine.Engine.
func (e *TrendEngineV1) SetDataSource(source datasource.ReadingSource) error {
	if source == nil {
		return errors.New(errors.ErrCodeMissingParameter, "data source is nil")
	}

	e.datasource = source

	return nil
}

// Register implements engine.Engine.
func (e *TrendEngineV1) Register(symbol string) error {
	if !e.initialized {
		return errors.New(errors.ErrCodeEngineNotInitialized, "engine is not initialized")
	}

	state, err := trend.NewState(symbol, e.newTrigger(), e.stateOptions)
	if err != nil {
		return err
	}

	if _, err := e.universe.Add(state); err != nil {
		return err
	}

	return nil
}

// Step implements engine.Engine.
func (e *TrendEngineV1) Step(ctx context.Context, batch types.StepBatch) (types.StepResult, error) {
	if !e.initialized {
		return types.StepResult{}, errors.New(errors.ErrCodeEngineNotInitialized, "engine is not initialized")
	}

	start := time.Now()

	result, err := e.step(ctx, batch)
	if err != nil {
		e.metrics.ObserveError()
		e.log.Error("Step failed",
			zap.Time("time", batch.Time),
			zap.Error(err),
		)

		return types.StepResult{}, err
	}

	e.metrics.ObserveStep(result, e.universe.Len(), time.Since(start))

	return result, nil
}

func (e *TrendEngineV1) step(ctx context.Context, batch types.StepBatch) (types.StepResult, error) {
	if err := ctx.Err(); err != nil {
		return types.StepResult{}, err
	}

	e.universe.BeginStep()

	// resolve every reading to its slot before touching any state
	slots := make([]int, len(batch.Readings))
	delivered := make(map[int]struct{}, len(batch.Readings))

	for i, reading := range batch.Readings {
		slot, ok := e.universe.Slot(reading.Symbol)
		if !ok {
			if !e.config.AutoRegister {
				return types.StepResult{}, errors.Newf(errors.ErrCodeUnknownInstrument, "instrument %s is not tracked", reading.Symbol)
			}

			if err := e.Register(reading.Symbol); err != nil {
				return types.StepResult{}, err
			}

			slot, _ = e.universe.Slot(reading.Symbol)

			e.log.Debug("Registered instrument", zap.String("symbol", reading.Symbol), zap.Int("slot", slot))
		}

		if _, dup := delivered[slot]; dup {
			return types.StepResult{}, errors.Newf(errors.ErrCodeInvalidReading, "instrument %s delivered twice in one step", reading.Symbol)
		}

		delivered[slot] = struct{}{}
		slots[i] = slot
	}

	// instruments without a reading keep their state but cannot be selected
	for slot, symbol := range e.universe.Symbols() {
		if _, ok := delivered[slot]; !ok {
			if err := e.universe.Exclude(symbol); err != nil {
				return types.StepResult{}, err
			}
		}
	}

	if err := e.update(ctx, batch.Readings, slots); err != nil {
		return types.StepResult{}, err
	}

	result := types.StepResult{
		Time:       batch.Time,
		Directions: make(map[string]types.Direction, len(batch.Readings)),
		Ready:      make(map[string]bool, len(batch.Readings)),
		Selected:   nil,
		Actions:    nil,
	}

	for _, slot := range slots {
		state := e.universe.At(slot)
		result.Directions[state.Symbol()] = state.Direction()
		result.Ready[state.Symbol()] = state.IsReady()

		if !state.IsReady() {
			e.logWarmup(batch.Time, state)
		}
	}

	held := batch.Held(e.universe.Held())
	result.Selected = e.ranker.Select(e.universe.Candidates(), held)
	result.Actions = e.planner.Plan(e.capital, result.Selected, batch.Readings)

	e.log.Debug("Step processed",
		zap.Time("time", batch.Time),
		zap.Int("readings", len(batch.Readings)),
		zap.Int("held", held),
		zap.Int("selected", len(result.Selected)),
		zap.Int("actions", len(result.Actions)),
	)

	for _, selection := range result.Selected {
		e.log.Info("Instrument selected",
			zap.Time("time", batch.Time),
			zap.String("symbol", selection.Symbol),
			zap.String("direction", string(selection.Direction)),
			zap.Int("rank", selection.Rank),
		)
	}

	return result, nil
}

// logWarmup reports which history of a not ready instrument is still short.
func (e *TrendEngineV1) logWarmup(at time.Time, state *trend.State) {
	if !e.log.Core().Enabled(zap.DebugLevel) {
		return
	}

	notReady, ok := errors.AsNotReady(state.RequireReady())
	if !ok {
		return
	}

	e.log.Debug("Instrument warming up",
		zap.Time("time", at),
		zap.String("symbol", notReady.Symbol),
		zap.String("history", notReady.History),
		zap.Int("have", notReady.Have),
		zap.Int("need", notReady.Need),
	)
}

// update runs the per instrument phase. Every state is owned by exactly one
// goroutine for the step and the call returns only after all of them finish.
func (e *TrendEngineV1) update(ctx context.Context, readings []types.Reading, slots []int) error {
	workers := e.config.Workers
	if workers <= 1 || len(readings) < 2 {
		for i, reading := range readings {
			if _, err := e.universe.At(slots[i]).Update(reading); err != nil {
				return err
			}
		}

		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, reading := range readings {
		state := e.universe.At(slots[i])

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			_, err := state.Update(reading)

			return err
		})
	}

	return g.Wait()
}

// Run implements engine.Engine.
func (e *TrendEngineV1) Run(ctx context.Context, dataPath string, callbacks engine.LifecycleCallbacks) (stats types.RunStatistics, runErr error) {
	if err := e.preRunCheck(); err != nil {
		return types.RunStatistics{}, err
	}

	stats = types.RunStatistics{
		ID:            uuid.New().String(),
		Timestamp:     time.Now(),
		EngineVersion: version.GetVersion(),
		ConfigPath:    e.configPath,
		DataPath:      dataPath,
		Steps:         0,
		Symbols:       make(map[string]*types.SymbolStatistics),
	}

	defer func() {
		if callbacks.OnRunEnd != nil {
			(*callbacks.OnRunEnd)(stats, runErr)
		}
	}()

	if err := e.datasource.Initialize(dataPath); err != nil {
		return stats, errors.Wrapf(errors.ErrCodeDataSourceUnavailable, err, "failed to open %s", dataPath)
	}

	if err := e.datasource.Validate(e.config.Lines); err != nil {
		return stats, err
	}

	// instruments present in the file but not configured are appended in symbol order
	if len(e.config.Universe) == 0 {
		symbols, err := e.datasource.Symbols()
		if err != nil {
			return stats, errors.Wrap(errors.ErrCodeQueryFailed, "failed to list symbols", err)
		}

		for _, symbol := range symbols {
			if _, ok := e.universe.Slot(symbol); ok {
				continue
			}

			if err := e.Register(symbol); err != nil {
				return stats, err
			}
		}
	}

	total, err := e.datasource.Count(e.config.StartTime, e.config.EndTime)
	if err != nil {
		return stats, errors.Wrap(errors.ErrCodeQueryFailed, "failed to count steps", err)
	}

	e.log.Info("Running trend engine",
		zap.String("run_id", stats.ID),
		zap.String("config", e.configPath),
		zap.String("data", dataPath),
		zap.Int("steps", total),
		zap.Int("universe", e.universe.Len()),
	)

	if callbacks.OnRunStart != nil {
		if err := (*callbacks.OnRunStart)(stats.ID, e.universe.Symbols(), total); err != nil {
			return stats, err
		}
	}

	current := 0

	for batch, err := range e.datasource.ReadAll(e.config.StartTime, e.config.EndTime) {
		if err != nil {
			return stats, errors.Wrap(errors.ErrCodeQueryFailed, "failed to read step", err)
		}

		if err := ctx.Err(); err != nil {
			return stats, err
		}

		result, err := e.Step(ctx, batch)
		if err != nil {
			return stats, err
		}

		stats.Record(result)

		current++

		if callbacks.OnStep != nil {
			if err := (*callbacks.OnStep)(current, total, result); err != nil {
				return stats, err
			}
		}
	}

	e.log.Info("Trend engine run finished",
		zap.String("run_id", stats.ID),
		zap.Int("steps", stats.Steps),
	)

	return stats, nil
}

func (e *TrendEngineV1) preRunCheck() error {
	if !e.initialized {
		return errors.New(errors.ErrCodeEngineNotInitialized, "engine is not initialized")
	}

	if e.datasource == nil {
		return errors.New(errors.ErrCodeMissingParameter, "data source is not set")
	}

	return nil
}

// Universe implements engine.Engine.
func (e *TrendEngineV1) Universe() *trend.Universe {
	return e.universe
}

// Gatherer implements engine.Engine.
func (e *TrendEngineV1) Gatherer() prometheus.Gatherer {
	return e.registry
}

// Config returns the active configuration.
func (e *TrendEngineV1) Config() TrendEngineV1Config {
	return e.config
}

// GetConfigSchema implements engine.Engine.
func (e *TrendEngineV1) GetConfigSchema() (string, error) {
	config := e.config

	schema, err := config.GenerateSchemaJSON()
	if err != nil {
		return "", fmt.Errorf("failed to generate schema: %w", err)
	}

	return schema, nil
}

// SetTimeRange overrides the replay range of the configuration.
func (e *TrendEngineV1) SetTimeRange(start optional.Option[time.Time], end optional.Option[time.Time]) error {
	if start.IsSome() && end.IsSome() && end.Unwrap().Before(start.Unwrap()) {
		return errors.New(errors.ErrCodeInvalidParameter, "end time must not be before start time")
	}

	e.config.StartTime = start
	e.config.EndTime = end

	return nil
}
