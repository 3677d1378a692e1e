package types

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"gopkg.in/yaml.v3"
)

type StatisticsTestSuite struct {
	suite.Suite
	tempDir string
}

func TestStatisticsSuite(t *testing.T) {
	suite.Run(t, new(StatisticsTestSuite))
}

func (suite *StatisticsTestSuite) SetupTest() {
	tempDir, err := os.MkdirTemp("", "statistics_test")
	suite.NoError(err)
	suite.tempDir = tempDir
}

func (suite *StatisticsTestSuite) TearDownTest() {
	os.RemoveAll(suite.tempDir)
}

func (suite *StatisticsTestSuite) TestRecord() {
	stats := RunStatistics{}

	stats.Record(StepResult{
		Directions: map[string]Direction{"A": DirectionBullish, "B": DirectionNone, "C": DirectionBearish},
		Ready:      map[string]bool{"A": true, "B": false, "C": true},
		Selected:   []Selection{{Symbol: "A", Direction: DirectionBullish, Rank: 1}},
	})
	stats.Record(StepResult{
		Directions: map[string]Direction{"A": DirectionBullish},
		Ready:      map[string]bool{"A": true},
		Actions:    []Action{{Symbol: "A", Kind: ActionKindLiquidate}},
	})

	suite.Equal(2, stats.Steps)
	suite.Equal(2, stats.Symbols["A"].ReadySteps)
	suite.Equal(2, stats.Symbols["A"].Bullish)
	suite.Equal(1, stats.Symbols["A"].Selected)
	suite.Equal(1, stats.Symbols["A"].Liquidations)
	suite.Equal(0, stats.Symbols["B"].ReadySteps)
	suite.Equal(1, stats.Symbols["C"].Bearish)
}

func (suite *StatisticsTestSuite) TestWriteRunStatistics() {
	stats := RunStatistics{
		ID:            "run-1",
		Timestamp:     time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		EngineVersion: "v1.0.0",
		ConfigPath:    "config.yaml",
		DataPath:      "data.parquet",
		Steps:         10,
		Symbols: map[string]*SymbolStatistics{
			"SPY": {ReadySteps: 8, Bullish: 2, Bearish: 1, Selected: 3},
		},
	}

	filePath := filepath.Join(suite.tempDir, "stats.yaml")
	err := WriteRunStatistics(filePath, stats)
	suite.NoError(err)

	data, err := os.ReadFile(filePath)
	suite.NoError(err)

	var read RunStatistics
	suite.NoError(yaml.Unmarshal(data, &read))
	suite.Equal("run-1", read.ID)
	suite.Equal(10, read.Steps)
	suite.Equal(3, read.Symbols["SPY"].Selected)
	suite.Contains(string(data), "engine_version: v1.0.0")
}

func (suite *StatisticsTestSuite) TestWriteRunStatisticsInvalidPath() {
	err := WriteRunStatistics(filepath.Join(suite.tempDir, "missing", "stats.yaml"), RunStatistics{})
	suite.Error(err)
	suite.Contains(err.Error(), "failed to write run statistics")
}

func (suite *StatisticsTestSuite) TestActionDecimalMarshal() {
	action := Action{
		Symbol:   "SPY",
		Kind:     ActionKindEnterLong,
		Fraction: decimal.RequireFromString("0.2"),
		Notional: decimal.RequireFromString("2000.00"),
	}

	data, err := yaml.Marshal(action)
	suite.NoError(err)
	suite.Contains(string(data), "kind: enter_long")
	suite.Contains(string(data), "0.2")
}
