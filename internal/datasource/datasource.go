// Package datasource replays per-step readings from columnar files.
package datasource

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-trend/internal/types"
)

// Column names every replay file must provide.
const (
	ColumnTime   = "time"
	ColumnSymbol = "symbol"
	ColumnPrice  = "price"
	ColumnVolume = "volume"
)

// Optional columns. A missing holding column means flat; a missing ready
// column means indicators are ready whenever every line is present.
const (
	ColumnHolding = "holding"
	ColumnReady   = "ready"
)

type ReadingSource interface {
	// Initialize opens the replay file at path (parquet or csv)
	Initialize(path string) error
	// Validate checks that the file has a column for every line and remembers the lines to read
	Validate(lines []types.LineName) error
	// Symbols returns the distinct symbols in the file, sorted
	Symbols() ([]string, error)
	// Count returns the number of distinct steps in the range
	Count(start optional.Option[time.Time], end optional.Option[time.Time]) (int, error)
	// ReadAll yields one batch per step in time order
	ReadAll(start optional.Option[time.Time], end optional.Option[time.Time]) func(yield func(types.StepBatch, error) bool)
	// Close releases the underlying database
	Close() error
}
