package models

import "encoding/json"

// Job is a single Coordinate job as returned by the jobs.list API. Only the
// fields named in the list projection are populated: the identifier, the
// current state, and the timestamps of the change history.
type Job struct {
	ID        string      `json:"id"`
	State     JobState    `json:"state"`
	JobChange []JobChange `json:"jobChange"`
}

// JobChange carries the timestamp of one change-history entry, in epoch
// milliseconds. The API encodes it as a decimal string.
type JobChange struct {
	Timestamp json.Number `json:"timestamp"`
}

// LastUpdate returns the maximum change timestamp in epoch milliseconds, or 0
// when the job has no parseable change history.
func (j *Job) LastUpdate() int64 {
	var last int64
	for _, c := range j.JobChange {
		if ts, err := c.Timestamp.Int64(); err == nil && ts > last {
			last = ts
		}
	}
	return last
}

// JobState is the nested mutable state of a job. Every field is optional on
// the wire; zero values stand in for anything the server omits.
type JobState struct {
	Title               string       `json:"title"`
	Assignee            string       `json:"assignee"`
	Progress            string       `json:"progress"`
	CustomerName        string       `json:"customerName"`
	CustomerPhoneNumber string       `json:"customerPhoneNumber"`
	Location            Location     `json:"location"`
	Note                []string     `json:"note"`
	CustomFields        CustomFields `json:"customFields"`
}

// Location is the job site. Lat and Lng are pointers so an absent coordinate
// can be told apart from a genuine zero.
type Location struct {
	AddressLine []string `json:"addressLine"`
	Lat         *float64 `json:"lat"`
	Lng         *float64 `json:"lng"`
}

// CustomFields wraps the list of custom field values set on a job.
type CustomFields struct {
	CustomField []CustomFieldValue `json:"customField"`
}

// CustomFieldValue is one dynamic field value, keyed by the numeric ID of its
// team-level definition.
type CustomFieldValue struct {
	CustomFieldID json.Number `json:"customFieldId"`
	Value         string      `json:"value"`
}

// CustomFieldValues returns the job's custom field values keyed by numeric
// field ID. Entries with a missing or unparseable ID land under key 0.
func (s *JobState) CustomFieldValues() map[int64]string {
	values := make(map[int64]string, len(s.CustomFields.CustomField))
	for _, f := range s.CustomFields.CustomField {
		id, err := f.CustomFieldID.Int64()
		if err != nil {
			id = 0
		}
		values[id] = f.Value
	}
	return values
}
