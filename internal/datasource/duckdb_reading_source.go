package datasource

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-trend/internal/logger"
	"github.com/rxtech-lab/argo-trend/internal/types"
	"github.com/rxtech-lab/argo-trend/pkg/errors"
	"go.uber.org/zap"
)

const readingsView = "readings"

type DuckDBReadingSource struct {
	db      *sql.DB
	logger  *logger.Logger
	sq      squirrel.StatementBuilderType
	columns []string
	lines   []types.LineName
}

// NewReadingSource creates an in-memory DuckDB database used to query replay files.
func NewReadingSource(logger *logger.Logger) (*DuckDBReadingSource, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to open duckdb", err)
	}

	return &DuckDBReadingSource{
		db:     db,
		logger: logger,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}, nil
}

// Initialize implements ReadingSource.
func (d *DuckDBReadingSource) Initialize(path string) error {
	d.logger.Debug("Initializing DuckDB reading source", zap.String("path", path))

	var reader string

	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet":
		reader = "read_parquet"
	case ".csv":
		reader = "read_csv_auto"
	default:
		return errors.Newf(errors.ErrCodeUnsupportedFormat, "unsupported replay file %s, expected .parquet or .csv", path)
	}

	// First drop the view if it exists
	_, err := d.db.Exec(fmt.Sprintf(`DROP VIEW IF EXISTS %s;`, readingsView))
	if err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to drop existing view", err)
	}

	// Squirrel doesn't support CREATE VIEW
	query := fmt.Sprintf(`
		CREATE VIEW %s AS
		SELECT * FROM %s('%s');
	`, readingsView, reader, strings.ReplaceAll(path, "'", "''"))

	if _, err = d.db.Exec(query); err != nil {
		return errors.Wrapf(errors.ErrCodeDataSourceUnavailable, err, "failed to open replay file %s", path)
	}

	columns, err := d.loadColumns()
	if err != nil {
		return err
	}

	for _, required := range []string{ColumnTime, ColumnSymbol, ColumnPrice, ColumnVolume} {
		if !slices.Contains(columns, required) {
			return errors.Newf(errors.ErrCodeMissingColumn, "replay file %s has no %q column", path, required)
		}
	}

	d.columns = columns
	d.lines = nil

	return nil
}

func (d *DuckDBReadingSource) loadColumns() ([]string, error) {
	query, args, err := d.sq.
		Select("column_name").
		From("information_schema.columns").
		Where(squirrel.Eq{"table_name": readingsView}).
		OrderBy("ordinal_position").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build column query", err)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to read columns", err)
	}
	defer rows.Close()

	var columns []string

	for rows.Next() {
		var column string
		if err := rows.Scan(&column); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan column name", err)
		}

		columns = append(columns, strings.ToLower(column))
	}

	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "error iterating columns", err)
	}

	return columns, nil
}

// Validate implements ReadingSource.
func (d *DuckDBReadingSource) Validate(lines []types.LineName) error {
	if d.columns == nil {
		return errors.New(errors.ErrCodeDataSourceUnavailable, "reading source is not initialized")
	}

	var missing []string

	for _, line := range lines {
		if line == types.LinePrice {
			continue
		}

		if !slices.Contains(d.columns, strings.ToLower(string(line))) {
			missing = append(missing, string(line))
		}
	}

	if len(missing) > 0 {
		return errors.Newf(errors.ErrCodeMissingColumn, "replay file has no column for lines: %s", strings.Join(missing, ", "))
	}

	d.lines = slices.DeleteFunc(slices.Clone(lines), func(line types.LineName) bool {
		return line == types.LinePrice
	})

	return nil
}

// Symbols implements ReadingSource.
func (d *DuckDBReadingSource) Symbols() ([]string, error) {
	query, args, err := d.sq.
		Select(ColumnSymbol).
		Distinct().
		From(readingsView).
		OrderBy("symbol").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build symbol query", err)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to get symbols", err)
	}
	defer rows.Close()

	var symbols []string

	for rows.Next() {
		var symbol string
		if err := rows.Scan(&symbol); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan symbol", err)
		}

		symbols = append(symbols, symbol)
	}

	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "error iterating symbols", err)
	}

	return symbols, nil
}

// Count implements ReadingSource.
func (d *DuckDBReadingSource) Count(start optional.Option[time.Time], end optional.Option[time.Time]) (int, error) {
	query, args, err := d.sq.
		Select("COUNT(DISTINCT time)").
		From(readingsView).
		Where(timeRange(start, end)).
		ToSql()
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build count query", err)
	}

	var count int
	if err := d.db.QueryRow(query, args...).Scan(&count); err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to count steps", err)
	}

	return count, nil
}

// ReadAll implements ReadingSource. Rows are grouped into one batch per
// distinct time; within a batch readings are ordered by symbol.
func (d *DuckDBReadingSource) ReadAll(start optional.Option[time.Time], end optional.Option[time.Time]) func(yield func(types.StepBatch, error) bool) {
	return func(yield func(types.StepBatch, error) bool) {
		d.logger.Debug("Reading all steps from DuckDB", zap.Int("lines", len(d.lines)))

		query, args, err := d.readQuery(start, end)
		if err != nil {
			yield(types.StepBatch{}, err)

			return
		}

		rows, err := d.db.Query(query, args...)
		if err != nil {
			yield(types.StepBatch{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query readings", err))

			return
		}
		defer rows.Close()

		hasHolding := slices.Contains(d.columns, ColumnHolding)
		hasReady := slices.Contains(d.columns, ColumnReady)

		var batch types.StepBatch

		for rows.Next() {
			reading, err := d.scanReading(rows, hasHolding, hasReady)
			if err != nil {
				yield(types.StepBatch{}, err)

				return
			}

			if len(batch.Readings) > 0 && !reading.Time.Equal(batch.Time) {
				if !yield(batch, nil) {
					return
				}

				batch = types.StepBatch{}
			}

			batch.Time = reading.Time
			batch.Readings = append(batch.Readings, reading)
		}

		if err := rows.Err(); err != nil {
			yield(types.StepBatch{}, errors.Wrap(errors.ErrCodeQueryFailed, "error iterating readings", err))

			return
		}

		if len(batch.Readings) > 0 {
			yield(batch, nil)
		}
	}
}

func (d *DuckDBReadingSource) readQuery(start optional.Option[time.Time], end optional.Option[time.Time]) (string, []any, error) {
	columns := []string{
		ColumnTime,
		ColumnSymbol,
		"CAST(price AS DOUBLE)",
		"CAST(volume AS DOUBLE)",
	}

	if slices.Contains(d.columns, ColumnHolding) {
		columns = append(columns, "CAST(holding AS DOUBLE)")
	}

	if slices.Contains(d.columns, ColumnReady) {
		columns = append(columns, "CAST(ready AS BOOLEAN)")
	}

	for _, line := range d.lines {
		columns = append(columns, fmt.Sprintf("CAST(%s AS DOUBLE)", quoteIdentifier(string(line))))
	}

	query, args, err := d.sq.
		Select(columns...).
		From(readingsView).
		Where(timeRange(start, end)).
		OrderBy("time ASC", "symbol ASC").
		ToSql()
	if err != nil {
		return "", nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build reading query", err)
	}

	return query, args, nil
}

func (d *DuckDBReadingSource) scanReading(rows *sql.Rows, hasHolding, hasReady bool) (types.Reading, error) {
	var (
		reading types.Reading
		holding sql.NullFloat64
		ready   sql.NullBool
	)

	values := make([]sql.NullFloat64, len(d.lines))
	dest := []any{&reading.Time, &reading.Symbol, &reading.Price, &reading.Volume}

	if hasHolding {
		dest = append(dest, &holding)
	}

	if hasReady {
		dest = append(dest, &ready)
	}

	for i := range values {
		dest = append(dest, &values[i])
	}

	if err := rows.Scan(dest...); err != nil {
		return types.Reading{}, errors.Wrap(errors.ErrCodeInvalidReading, "failed to scan reading", err)
	}

	reading.Holding = types.HoldingFromQuantity(holding.Float64)
	reading.IndicatorsReady = !ready.Valid || ready.Bool
	reading.Lines = make(map[types.LineName]float64, len(d.lines))

	for i, line := range d.lines {
		// a null line is an indicator still warming up
		if !values[i].Valid {
			reading.IndicatorsReady = false

			continue
		}

		reading.Lines[line] = values[i].Float64
	}

	return reading, nil
}

// Close implements ReadingSource.
func (d *DuckDBReadingSource) Close() error {
	if d.db != nil {
		return d.db.Close()
	}

	return nil
}

func timeRange(start optional.Option[time.Time], end optional.Option[time.Time]) squirrel.And {
	conditions := squirrel.And{}

	if start.IsSome() {
		conditions = append(conditions, squirrel.GtOrEq{ColumnTime: start.Unwrap()})
	}

	if end.IsSome() {
		conditions = append(conditions, squirrel.LtOrEq{ColumnTime: end.Unwrap()})
	}

	return conditions
}

func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
