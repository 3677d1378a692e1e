package engine

import (
	"encoding/json"
	"reflect"
	"slices"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-trend/internal/allocation"
	"github.com/rxtech-lab/argo-trend/internal/crossover"
	"github.com/rxtech-lab/argo-trend/internal/signal"
	"github.com/rxtech-lab/argo-trend/internal/snapshot"
	"github.com/rxtech-lab/argo-trend/internal/trigger"
	"github.com/rxtech-lab/argo-trend/internal/types"
	"github.com/rxtech-lab/argo-trend/internal/version"
	"github.com/rxtech-lab/argo-trend/pkg/errors"
)

// SchemaName is the file name the config schema is published under.
const SchemaName = "trend-engine-v1-config.json"

type TriggerKind string

const (
	// TriggerKindComposite evaluates the configured gates for both polarities
	TriggerKindComposite TriggerKind = "composite"
	// TriggerKindRSI is the overbought/oversold mean-reversion trigger
	TriggerKindRSI TriggerKind = "rsi"
)

type TriggerConfig struct {
	Kind TriggerKind `yaml:"kind" json:"kind" jsonschema:"title=Kind,description=Signal source of every instrument,enum=composite,enum=rsi,default=composite" validate:"required,oneof=composite rsi"`
	// OneShot suppresses a signal that repeats the previous step
	OneShot bool              `yaml:"one_shot" json:"one_shot" jsonschema:"title=One shot,description=Emit a signal only when it differs from the previous step,default=false"`
	RSI     *trigger.RSIConfig `yaml:"rsi,omitempty" json:"rsi,omitempty" jsonschema:"title=RSI,description=Bands of the rsi trigger"`
}

type TrendEngineV1Config struct {
	Version          string                     `yaml:"version" json:"version" jsonschema:"title=Version,description=Engine version the config was written for" validate:"required"`
	Lines            []types.LineName           `yaml:"lines" json:"lines" jsonschema:"title=Lines,description=Every line supplied by the indicator layer" validate:"required,min=1,dive,required"`
	Universe         []string                   `yaml:"universe" json:"universe" jsonschema:"title=Universe,description=Instruments registered at setup in ranking order" validate:"dive,required"`
	AutoRegister     bool                       `yaml:"auto_register" json:"auto_register" jsonschema:"title=Auto register,description=Register unknown instruments on first reading instead of failing,default=false"`
	WindowSize       int                        `yaml:"window_size" json:"window_size" jsonschema:"title=Window size,description=Samples kept per instrument,minimum=2,default=2" validate:"gte=2"`
	Tolerance        crossover.Tolerance        `yaml:"tolerance" json:"tolerance" jsonschema:"title=Tolerance,description=Distance at which uncrossed lines count as touching"`
	Gates            []signal.Gate              `yaml:"gates" json:"gates" jsonschema:"title=Gates,description=Conditions that must all pass for a trend verdict" validate:"dive"`
	Trigger          TriggerConfig              `yaml:"trigger" json:"trigger" jsonschema:"title=Trigger"`
	MaxPositions     int                        `yaml:"max_positions" json:"max_positions" jsonschema:"title=Max positions,description=Upper bound of concurrently held instruments,minimum=1,default=5" validate:"gte=1"`
	PositionFraction float64                    `yaml:"position_fraction" json:"position_fraction" jsonschema:"title=Position fraction,description=Fraction of the portfolio value per new position,exclusiveMinimum=0,maximum=1,default=0.2" validate:"gt=0,lte=1"`
	InitialCapital   float64                    `yaml:"initial_capital" json:"initial_capital" jsonschema:"title=Initial Capital,description=Portfolio value used to size actions,minimum=0" validate:"gte=0"`
	Exit             *allocation.ExitRule       `yaml:"exit,omitempty" json:"exit,omitempty" jsonschema:"title=Exit,description=Liquidate held instruments whose trend strength falls below a threshold"`
	Workers          int                        `yaml:"workers" json:"workers" jsonschema:"title=Workers,description=Goroutines updating instruments in one step; 0 or 1 runs sequentially,minimum=0,default=1" validate:"gte=0"`
	StartTime        optional.Option[time.Time] `yaml:"start_time" json:"start_time" jsonschema:"title=Start Time,description=Optional start time of the replay"`
	EndTime          optional.Option[time.Time] `yaml:"end_time" json:"end_time" jsonschema:"title=End Time,description=Optional end time of the replay"`
}

// configDocument is the on-disk layout of TrendEngineV1Config.
type configDocument struct {
	Version          string               `yaml:"version"`
	Lines            []types.LineName     `yaml:"lines"`
	Universe         []string             `yaml:"universe"`
	AutoRegister     bool                 `yaml:"auto_register"`
	WindowSize       int                  `yaml:"window_size"`
	Tolerance        crossover.Tolerance  `yaml:"tolerance"`
	Gates            []signal.Gate        `yaml:"gates"`
	Trigger          TriggerConfig        `yaml:"trigger"`
	MaxPositions     int                  `yaml:"max_positions"`
	PositionFraction float64              `yaml:"position_fraction"`
	InitialCapital   float64              `yaml:"initial_capital"`
	Exit             *allocation.ExitRule `yaml:"exit"`
	Workers          int                  `yaml:"workers"`
	StartTime        *time.Time           `yaml:"start_time,omitempty"`
	EndTime          *time.Time           `yaml:"end_time,omitempty"`
}

func (c *TrendEngineV1Config) document() configDocument {
	doc := configDocument{
		Version:          c.Version,
		Lines:            c.Lines,
		Universe:         c.Universe,
		AutoRegister:     c.AutoRegister,
		WindowSize:       c.WindowSize,
		Tolerance:        c.Tolerance,
		Gates:            c.Gates,
		Trigger:          c.Trigger,
		MaxPositions:     c.MaxPositions,
		PositionFraction: c.PositionFraction,
		InitialCapital:   c.InitialCapital,
		Exit:             c.Exit,
		Workers:          c.Workers,
	}

	if c.StartTime.IsSome() {
		start := c.StartTime.Unwrap()
		doc.StartTime = &start
	}

	if c.EndTime.IsSome() {
		end := c.EndTime.Unwrap()
		doc.EndTime = &end
	}

	return doc
}

// UnmarshalYAML implements custom unmarshaling for TrendEngineV1Config.
// Keys missing from the document keep their current value.
func (c *TrendEngineV1Config) UnmarshalYAML(unmarshal func(interface{}) error) error {
	doc := c.document()
	if err := unmarshal(&doc); err != nil {
		return err
	}

	c.Version = doc.Version
	c.Lines = doc.Lines
	c.Universe = doc.Universe
	c.AutoRegister = doc.AutoRegister
	c.WindowSize = doc.WindowSize
	c.Tolerance = doc.Tolerance
	c.Gates = doc.Gates
	c.Trigger = doc.Trigger
	c.MaxPositions = doc.MaxPositions
	c.PositionFraction = doc.PositionFraction
	c.InitialCapital = doc.InitialCapital
	c.Exit = doc.Exit
	c.Workers = doc.Workers
	c.StartTime = optional.None[time.Time]()
	c.EndTime = optional.None[time.Time]()

	if doc.StartTime != nil {
		c.StartTime = optional.Some(*doc.StartTime)
	}

	if doc.EndTime != nil {
		c.EndTime = optional.Some(*doc.EndTime)
	}

	return nil
}

// MarshalYAML writes optional times as plain timestamps.
func (c TrendEngineV1Config) MarshalYAML() (interface{}, error) {
	return c.document(), nil
}

// Validate checks struct constraints and the cross-field rules.
func (c *TrendEngineV1Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid trend engine config", err)
	}

	if err := version.CheckConfigCompatibility(version.GetVersion(), c.Version); err != nil {
		return err
	}

	if c.StartTime.IsSome() && c.EndTime.IsSome() && c.EndTime.Unwrap().Before(c.StartTime.Unwrap()) {
		return errors.New(errors.ErrCodeInvalidConfiguration, "end_time must not be before start_time")
	}

	if c.WindowSize < snapshot.MinLineCapacity {
		return errors.Newf(errors.ErrCodeInvalidConfiguration, "window_size must be at least %d", snapshot.MinLineCapacity)
	}

	if c.Trigger.Kind == TriggerKindComposite && len(c.Gates) == 0 {
		return errors.New(errors.ErrCodeInvalidConfiguration, "composite trigger needs at least one gate")
	}

	// the planner reads the exit line from the reading, so it must be loaded
	if c.Exit != nil && !slices.Contains(c.Lines, c.Exit.StrengthLine) {
		return errors.Newf(errors.ErrCodeInvalidConfiguration, "exit strength line %q is not in lines", c.Exit.StrengthLine)
	}

	return nil
}

// RSIConfig returns the configured rsi bands or the defaults.
func (c *TrendEngineV1Config) RSIConfig() trigger.RSIConfig {
	if c.Trigger.RSI != nil {
		return *c.Trigger.RSI
	}

	return trigger.DefaultRSIConfig()
}

// ExitRule returns the exit rule as an option.
func (c *TrendEngineV1Config) ExitRule() optional.Option[allocation.ExitRule] {
	if c.Exit == nil {
		return optional.None[allocation.ExitRule]()
	}

	return optional.Some(*c.Exit)
}

// GenerateSchema generates a JSON schema for the TrendEngineV1Config
func (c *TrendEngineV1Config) GenerateSchema() (*jsonschema.Schema, error) {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  false,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t.String() == "optional.Option[time.Time]" {
				return &jsonschema.Schema{
					Type:   "string",
					Format: "date-time",
				}
			}

			return nil
		},
	}

	schema := reflector.Reflect(c)

	schema.Title = "trend-engine-v1-config"
	schema.Description = "Configuration schema for TrendEngineV1"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema, nil
}

// GenerateSchemaJSON generates a JSON schema string for the TrendEngineV1Config
func (c *TrendEngineV1Config) GenerateSchemaJSON() (string, error) {
	schema, err := c.GenerateSchema()
	if err != nil {
		return "", err
	}

	schemaBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", err
	}

	return string(schemaBytes), nil
}

// TestConfig returns a small composite config over two crossover pairs and a
// strength gate, without participation so instruments are ready after two steps.
func TestConfig(universe ...string) TrendEngineV1Config {
	config := EmptyConfig()
	config.Lines = []types.LineName{"tenkan", "kijun", "adx", "plus_di", "minus_di"}
	config.Universe = universe
	config.Gates = []signal.Gate{
		signal.CrossoverGate(false,
			crossover.LinePair{A: "tenkan", B: "kijun"},
			crossover.LinePair{A: "kijun", B: types.LinePrice},
		),
		signal.StrengthGate(20, "adx", "plus_di", "minus_di"),
	}
	config.MaxPositions = 2
	config.InitialCapital = 10000
	config.Exit = nil

	return config
}

// EmptyConfig returns a TrendEngineV1Config with default values: the
// cloud/strength/level/participation gate set of the trend strategy.
func EmptyConfig() TrendEngineV1Config {
	return TrendEngineV1Config{
		Version:      version.GetVersion(),
		Lines:        []types.LineName{"tenkan", "kijun", "senkou_a", "senkou_b", "adx", "plus_di", "minus_di", "vwap"},
		Universe:     nil,
		AutoRegister: false,
		WindowSize:   snapshot.MinLineCapacity,
		Tolerance: crossover.Tolerance{
			Absolute: 0,
			Relative: 0.0005,
		},
		Gates: []signal.Gate{
			signal.CrossoverGate(false,
				crossover.LinePair{A: "tenkan", B: "kijun"},
				crossover.LinePair{A: "kijun", B: types.LinePrice},
				crossover.LinePair{A: "senkou_a", B: "senkou_b"},
			),
			signal.BreakoutGate("senkou_a", "senkou_b"),
			signal.StrengthGate(20, "adx", "plus_di", "minus_di"),
			signal.LevelGate("vwap", signal.SideBelow),
			signal.ParticipationGate(250, 5),
		},
		Trigger: TriggerConfig{
			Kind:    TriggerKindComposite,
			OneShot: false,
			RSI:     nil,
		},
		MaxPositions:     5,
		PositionFraction: 0.2,
		InitialCapital:   0,
		Exit: &allocation.ExitRule{
			StrengthLine: "adx",
			Threshold:    20,
		},
		Workers:   1,
		StartTime: optional.None[time.Time](),
		EndTime:   optional.None[time.Time](),
	}
}
