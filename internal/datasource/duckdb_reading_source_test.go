package datasource

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-trend/internal/logger"
	"github.com/rxtech-lab/argo-trend/internal/types"
	"github.com/rxtech-lab/argo-trend/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type DuckDBReadingSourceTestSuite struct {
	suite.Suite
	tempDir string
	source  *DuckDBReadingSource
}

func TestDuckDBReadingSourceSuite(t *testing.T) {
	suite.Run(t, new(DuckDBReadingSourceTestSuite))
}

const readingsCSV = `time,symbol,price,volume,holding,ready,tenkan,kijun
2024-01-01 09:30:00,SPY,470.5,1000,0,false,,
2024-01-01 09:30:00,AAPL,190.1,500,1,true,189.0,188.5
2024-01-01 09:31:00,SPY,471.0,1100,0,true,470.0,469.0
2024-01-01 09:31:00,AAPL,190.4,550,1,true,189.2,188.7
2024-01-01 09:32:00,SPY,471.5,900,-2,true,470.5,469.5
`

func (suite *DuckDBReadingSourceTestSuite) SetupTest() {
	tempDir, err := os.MkdirTemp("", "reading_source_test")
	suite.Require().NoError(err)
	suite.tempDir = tempDir

	source, err := NewReadingSource(logger.NewNopLogger())
	suite.Require().NoError(err)
	suite.source = source
}

func (suite *DuckDBReadingSourceTestSuite) TearDownTest() {
	suite.source.Close()
	os.RemoveAll(suite.tempDir)
}

func (suite *DuckDBReadingSourceTestSuite) writeFile(name, content string) string {
	path := filepath.Join(suite.tempDir, name)
	suite.Require().NoError(os.WriteFile(path, []byte(content), 0644))

	return path
}

func (suite *DuckDBReadingSourceTestSuite) collect(start, end optional.Option[time.Time]) []types.StepBatch {
	var batches []types.StepBatch

	for batch, err := range suite.source.ReadAll(start, end) {
		suite.Require().NoError(err)
		batches = append(batches, batch)
	}

	return batches
}

func (suite *DuckDBReadingSourceTestSuite) TestReadAllGroupsByTime() {
	suite.Require().NoError(suite.source.Initialize(suite.writeFile("readings.csv", readingsCSV)))
	suite.Require().NoError(suite.source.Validate([]types.LineName{"tenkan", "kijun", types.LinePrice}))

	batches := suite.collect(optional.None[time.Time](), optional.None[time.Time]())
	suite.Require().Len(batches, 3)

	first := batches[0]
	suite.Equal(time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC), first.Time.UTC())
	suite.Require().Len(first.Readings, 2)

	// ordered by symbol within a step
	aapl, spy := first.Readings[0], first.Readings[1]
	suite.Equal("AAPL", aapl.Symbol)
	suite.Equal(types.HoldingLong, aapl.Holding)
	suite.True(aapl.IndicatorsReady)
	suite.InDelta(189.0, aapl.Lines["tenkan"], 1e-9)
	suite.InDelta(190.1, aapl.Price, 1e-9)

	suite.Equal("SPY", spy.Symbol)
	suite.False(spy.IndicatorsReady)
	suite.Empty(spy.Lines)
	suite.InDelta(1000.0, spy.Volume, 1e-9)

	last := batches[2]
	suite.Require().Len(last.Readings, 1)
	suite.Equal(types.HoldingShort, last.Readings[0].Holding)
	suite.True(last.HeldPositions.IsNone())
}

func (suite *DuckDBReadingSourceTestSuite) TestTimeRange() {
	suite.Require().NoError(suite.source.Initialize(suite.writeFile("readings.csv", readingsCSV)))
	suite.Require().NoError(suite.source.Validate([]types.LineName{"tenkan"}))

	start := optional.Some(time.Date(2024, 1, 1, 9, 31, 0, 0, time.UTC))
	end := optional.Some(time.Date(2024, 1, 1, 9, 31, 0, 0, time.UTC))

	batches := suite.collect(start, end)
	suite.Require().Len(batches, 1)
	suite.Len(batches[0].Readings, 2)

	count, err := suite.source.Count(start, optional.None[time.Time]())
	suite.NoError(err)
	suite.Equal(2, count)

	count, err = suite.source.Count(optional.None[time.Time](), optional.None[time.Time]())
	suite.NoError(err)
	suite.Equal(3, count)
}

func (suite *DuckDBReadingSourceTestSuite) TestEarlyStop() {
	suite.Require().NoError(suite.source.Initialize(suite.writeFile("readings.csv", readingsCSV)))
	suite.Require().NoError(suite.source.Validate(nil))

	seen := 0
	for _, err := range suite.source.ReadAll(optional.None[time.Time](), optional.None[time.Time]()) {
		suite.Require().NoError(err)

		seen++

		break
	}

	suite.Equal(1, seen)
}

func (suite *DuckDBReadingSourceTestSuite) TestSymbols() {
	suite.Require().NoError(suite.source.Initialize(suite.writeFile("readings.csv", readingsCSV)))

	symbols, err := suite.source.Symbols()
	suite.NoError(err)
	suite.Equal([]string{"AAPL", "SPY"}, symbols)
}

func (suite *DuckDBReadingSourceTestSuite) TestMissingLineColumn() {
	suite.Require().NoError(suite.source.Initialize(suite.writeFile("readings.csv", readingsCSV)))

	err := suite.source.Validate([]types.LineName{"tenkan", "vwap", "adx"})
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeMissingColumn))
	suite.Contains(err.Error(), "vwap, adx")
}

func (suite *DuckDBReadingSourceTestSuite) TestMissingRequiredColumn() {
	path := suite.writeFile("no_volume.csv", "time,symbol,price\n2024-01-01 09:30:00,SPY,1\n")

	err := suite.source.Initialize(path)
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeMissingColumn))
	suite.Contains(err.Error(), "volume")
}

func (suite *DuckDBReadingSourceTestSuite) TestOptionalColumnsAbsent() {
	path := suite.writeFile("minimal.csv", "time,symbol,price,volume,rsi\n2024-01-01 09:30:00,SPY,1,2,55\n")

	suite.Require().NoError(suite.source.Initialize(path))
	suite.Require().NoError(suite.source.Validate([]types.LineName{"rsi"}))

	batches := suite.collect(optional.None[time.Time](), optional.None[time.Time]())
	suite.Require().Len(batches, 1)

	reading := batches[0].Readings[0]
	suite.Equal(types.HoldingFlat, reading.Holding)
	suite.True(reading.IndicatorsReady)
	suite.InDelta(55.0, reading.Lines["rsi"], 1e-9)
}

func (suite *DuckDBReadingSourceTestSuite) TestUnsupportedFormat() {
	err := suite.source.Initialize(filepath.Join(suite.tempDir, "readings.json"))
	suite.True(errors.HasCode(err, errors.ErrCodeUnsupportedFormat))
}

func (suite *DuckDBReadingSourceTestSuite) TestMissingFile() {
	err := suite.source.Initialize(filepath.Join(suite.tempDir, "missing.parquet"))
	suite.True(errors.HasCode(err, errors.ErrCodeDataSourceUnavailable))
}

func (suite *DuckDBReadingSourceTestSuite) TestValidateBeforeInitialize() {
	err := suite.source.Validate([]types.LineName{"tenkan"})
	suite.True(errors.HasCode(err, errors.ErrCodeDataSourceUnavailable))
}

func (suite *DuckDBReadingSourceTestSuite) TestParquet() {
	csvPath := suite.writeFile("readings.csv", readingsCSV)
	parquetPath := filepath.Join(suite.tempDir, "readings.parquet")

	db, err := sql.Open("duckdb", "")
	suite.Require().NoError(err)
	defer db.Close()

	_, err = db.Exec("COPY (SELECT * FROM read_csv_auto('" + csvPath + "')) TO '" + parquetPath + "' (FORMAT PARQUET)")
	suite.Require().NoError(err)

	suite.Require().NoError(suite.source.Initialize(parquetPath))
	suite.Require().NoError(suite.source.Validate([]types.LineName{"kijun"}))

	batches := suite.collect(optional.None[time.Time](), optional.None[time.Time]())
	suite.Len(batches, 3)
	suite.InDelta(188.5, batches[0].Readings[0].Lines["kijun"], 1e-9)
}
