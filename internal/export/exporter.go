// Package export flattens the jobs of a Coordinate team into a CSV stream:
// it resolves the team's custom field schema into a stable column ordering,
// walks the paginated job listing, and writes one row per job in delivery
// order.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sort"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/coordex/internal/interfaces"
)

// defaultProgressInterval is how many rows pass between progress ticks.
const defaultProgressInterval = 10

// Exporter streams a team's jobs to a CSV sink.
type Exporter struct {
	source           interfaces.CoordinateService
	logger           arbor.ILogger
	progress         func()
	progressInterval int
}

// Option configures the Exporter.
type Option func(*Exporter)

// WithLogger sets a logger.
func WithLogger(logger arbor.ILogger) Option {
	return func(e *Exporter) {
		e.logger = logger
	}
}

// WithProgress installs a tick callback invoked when the schema is resolved,
// when iteration starts, and after every Nth row. It is an observability side
// channel only; it never touches the data path.
func WithProgress(tick func()) Option {
	return func(e *Exporter) {
		e.progress = tick
	}
}

// WithProgressInterval sets N for the every-Nth-row progress tick.
func WithProgressInterval(n int) Option {
	return func(e *Exporter) {
		if n > 0 {
			e.progressInterval = n
		}
	}
}

// New creates an Exporter over the given job source.
func New(source interfaces.CoordinateService, opts ...Option) *Exporter {
	e := &Exporter{
		source:           source,
		progressInterval: defaultProgressInterval,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Export writes a header row and one row per job to w and returns the number
// of data rows written (header excluded). Rows go out in server delivery
// order, one write per job. The CSV writer is flushed on failure paths too,
// so an interrupted run leaves a truncated but well-formed file behind.
func (e *Exporter) Export(ctx context.Context, teamID string, w io.Writer) (int, error) {
	defs, err := e.source.GetCustomFieldDefs(ctx, teamID)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch custom field definitions: %w", err)
	}
	e.tick()

	fieldIDs, fieldNames := sortedFields(defs)

	if e.logger != nil {
		e.logger.Debug().
			Str("team_id", teamID).
			Int("custom_fields", len(fieldIDs)).
			Msg("Resolved custom field schema")
	}

	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(headerRow(fieldNames)); err != nil {
		return 0, fmt.Errorf("failed to write header: %w", err)
	}
	e.tick()

	count := 0
	it := e.source.Jobs(ctx, teamID)
	for it.Next() {
		if err := writer.Write(flattenJob(it.Job(), fieldIDs)); err != nil {
			return count, fmt.Errorf("failed to write row: %w", err)
		}
		count++

		if count%e.progressInterval == 0 {
			e.tick()
		}
	}
	if err := it.Err(); err != nil {
		return count, fmt.Errorf("job listing failed after %d jobs: %w", count, err)
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return count, fmt.Errorf("failed to flush output: %w", err)
	}

	if e.logger != nil {
		e.logger.Info().
			Str("team_id", teamID).
			Int("jobs", count).
			Msg("Export complete")
	}

	return count, nil
}

// sortedFields orders the schema by ascending numeric ID. The ordering fixes
// the trailing columns of every row, so it must not depend on map iteration
// order.
func sortedFields(defs map[int64]string) ([]int64, []string) {
	ids := make([]int64, 0, len(defs))
	for id := range defs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = defs[id]
	}

	return ids, names
}

func (e *Exporter) tick() {
	if e.progress != nil {
		e.progress()
	}
}
