package export

import (
	"strconv"
	"strings"
	"time"

	"github.com/ternarybob/coordex/internal/models"
)

// listSeparator joins multi-line values (address lines, notes) into one cell.
const listSeparator = " / "

// baseHeader is the fixed leading column set. Custom field names follow, in
// ascending field-ID order.
var baseHeader = []string{
	"Job ID",
	"Last update",
	"Title",
	"Assignee",
	"Progress",
	"Address",
	"Lat",
	"Lon",
	"Contact name",
	"Contact phone",
	"Notes",
}

// headerRow builds the header: the fixed columns plus the sorted custom field
// names.
func headerRow(fieldNames []string) []string {
	header := make([]string, 0, len(baseHeader)+len(fieldNames))
	header = append(header, baseHeader...)
	header = append(header, fieldNames...)
	return header
}

// flattenJob projects one job onto the resolved column ordering. Missing
// optional fields become empty cells; a malformed job never aborts the run.
func flattenJob(job *models.Job, fieldIDs []int64) []string {
	state := job.State

	row := make([]string, 0, len(baseHeader)+len(fieldIDs))
	row = append(row,
		job.ID,
		formatLastUpdate(job.LastUpdate()),
		state.Title,
		state.Assignee,
		state.Progress,
		strings.Join(state.Location.AddressLine, listSeparator),
		formatCoordinate(state.Location.Lat),
		formatCoordinate(state.Location.Lng),
		state.CustomerName,
		state.CustomerPhoneNumber,
		strings.Join(state.Note, listSeparator),
	)

	values := state.CustomFieldValues()
	for _, id := range fieldIDs {
		row = append(row, values[id])
	}

	return row
}

// formatLastUpdate renders an epoch-millisecond timestamp as a UTC calendar
// time. Zero means no update was ever recorded and renders empty, which keeps
// it distinct from a genuine epoch-start timestamp.
func formatLastUpdate(millis int64) string {
	if millis == 0 {
		return ""
	}
	return time.UnixMilli(millis).UTC().Format("2006-01-02 15:04:05") + " UTC"
}

// formatCoordinate renders a latitude or longitude, empty when absent.
func formatCoordinate(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'g', -1, 64)
}
