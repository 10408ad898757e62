// Package interfaces defines the service contracts shared across the
// application. Consumers depend on these rather than on concrete clients.
package interfaces

import (
	"context"

	"github.com/ternarybob/coordex/internal/models"
)

// JobIterator walks a paginated job listing one job at a time. Usage follows
// bufio.Scanner: Next advances and reports whether a job is available, Job
// returns the current job, and Err reports the error that stopped the walk.
// The sequence is consumed in server delivery order and is not rewindable.
type JobIterator interface {
	Next() bool
	Job() *models.Job
	Err() error
}

// CoordinateService is the data-access contract for a Coordinate team: the
// custom field schema plus the complete job listing.
type CoordinateService interface {
	// GetCustomFieldDefs fetches the team's custom field definitions as a
	// mapping from numeric field ID to field name.
	GetCustomFieldDefs(ctx context.Context, teamID string) (map[int64]string, error)

	// Jobs returns a fresh iterator over every job in the team. Each call
	// restarts the paginated walk from the beginning.
	Jobs(ctx context.Context, teamID string) JobIterator
}
