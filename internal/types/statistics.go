package types

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// SymbolStatistics counts verdicts and selections for one instrument over a run.
type SymbolStatistics struct {
	// Steps in which the instrument was ready
	ReadySteps int `yaml:"ready_steps"`
	// Bullish verdicts
	Bullish int `yaml:"bullish"`
	// Bearish verdicts
	Bearish int `yaml:"bearish"`
	// Times the ranker selected the instrument
	Selected int `yaml:"selected"`
	// Liquidate actions emitted for the instrument
	Liquidations int `yaml:"liquidations"`
}

type RunStatistics struct {
	// ID is the unique identifier for this run.
	ID string `yaml:"id" json:"id"`
	// Timestamp is when this run was executed.
	Timestamp time.Time `yaml:"timestamp" json:"timestamp"`
	// EngineVersion is the version of the engine that produced the run
	EngineVersion string `yaml:"engine_version" json:"engine_version"`
	// ConfigPath is the path to the engine configuration.
	ConfigPath string `yaml:"config_path" json:"config_path"`
	// DataPath is the path to the replay data file.
	DataPath string `yaml:"data_path" json:"data_path"`
	// Steps processed.
	Steps int `yaml:"steps" json:"steps"`
	// Symbols holds per instrument counters.
	Symbols map[string]*SymbolStatistics `yaml:"symbols" json:"symbols"`
}

// Symbol returns the counters of symbol, creating them on first use.
func (r *RunStatistics) Symbol(symbol string) *SymbolStatistics {
	if r.Symbols == nil {
		r.Symbols = make(map[string]*SymbolStatistics)
	}

	stats, ok := r.Symbols[symbol]
	if !ok {
		stats = &SymbolStatistics{}
		r.Symbols[symbol] = stats
	}

	return stats
}

// Record folds one step result into the statistics.
func (r *RunStatistics) Record(result StepResult) {
	r.Steps++

	for symbol, ready := range result.Ready {
		stats := r.Symbol(symbol)
		if ready {
			stats.ReadySteps++
		}
	}

	for symbol, direction := range result.Directions {
		stats := r.Symbol(symbol)

		switch direction {
		case DirectionBullish:
			stats.Bullish++
		case DirectionBearish:
			stats.Bearish++
		}
	}

	for _, selection := range result.Selected {
		r.Symbol(selection.Symbol).Selected++
	}

	for _, action := range result.Actions {
		if action.Kind == ActionKindLiquidate {
			r.Symbol(action.Symbol).Liquidations++
		}
	}
}

func WriteRunStatistics(path string, stats RunStatistics) error {
	// Marshal the struct to YAML
	data, err := yaml.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to marshal run statistics to YAML: %w", err)
	}

	// Write the YAML data to the file
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write run statistics to file: %w", err)
	}

	return nil
}
