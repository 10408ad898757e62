package models

import (
	"encoding/json"
	"testing"
)

func TestJobLastUpdate(t *testing.T) {
	tests := []struct {
		name    string
		changes []JobChange
		want    int64
	}{
		{"no change history", nil, 0},
		{"empty change history", []JobChange{}, 0},
		{"missing timestamp", []JobChange{{}}, 0},
		{"single change", []JobChange{{Timestamp: "1000"}}, 1000},
		{"maximum wins", []JobChange{{Timestamp: "1000"}, {Timestamp: "5000"}, {Timestamp: "3000"}}, 5000},
		{"unparseable entries ignored", []JobChange{{Timestamp: "not-a-number"}, {Timestamp: "42"}}, 42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := Job{ID: "J1", JobChange: tt.changes}
			if got := job.LastUpdate(); got != tt.want {
				t.Errorf("LastUpdate() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCustomFieldValues(t *testing.T) {
	state := JobState{
		CustomFields: CustomFields{
			CustomField: []CustomFieldValue{
				{CustomFieldID: "7", Value: "High"},
				{CustomFieldID: "12", Value: "North"},
				{Value: "orphaned"}, // missing ID lands under 0
			},
		},
	}

	values := state.CustomFieldValues()

	if len(values) != 3 {
		t.Fatalf("expected 3 values, got %d", len(values))
	}
	if values[7] != "High" {
		t.Errorf("values[7] = %q, want %q", values[7], "High")
	}
	if values[12] != "North" {
		t.Errorf("values[12] = %q, want %q", values[12], "North")
	}
	if values[0] != "orphaned" {
		t.Errorf("values[0] = %q, want %q", values[0], "orphaned")
	}
}

func TestCustomFieldValuesEmptyState(t *testing.T) {
	var state JobState
	if values := state.CustomFieldValues(); len(values) != 0 {
		t.Errorf("expected no values for empty state, got %v", values)
	}
}

func TestJobUnmarshal(t *testing.T) {
	raw := `{
		"id": "J1",
		"state": {
			"title": "Fix leak",
			"assignee": "a@x.com",
			"progress": "COMPLETED",
			"location": {"addressLine": ["1 Main St", "Apt 2"], "lat": 40.1, "lng": -73.9},
			"customerName": "Bob",
			"customerPhoneNumber": "555-1234",
			"note": ["urgent", "done"],
			"customFields": {"customField": [{"customFieldId": 7, "value": "High"}]}
		},
		"jobChange": [{"timestamp": "1000"}, {"timestamp": "5000"}]
	}`

	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if job.ID != "J1" {
		t.Errorf("ID = %q, want %q", job.ID, "J1")
	}
	if job.State.Title != "Fix leak" {
		t.Errorf("Title = %q, want %q", job.State.Title, "Fix leak")
	}
	if job.LastUpdate() != 5000 {
		t.Errorf("LastUpdate() = %d, want 5000", job.LastUpdate())
	}
	if job.State.Location.Lat == nil || *job.State.Location.Lat != 40.1 {
		t.Errorf("Lat = %v, want 40.1", job.State.Location.Lat)
	}
	if job.State.Location.Lng == nil || *job.State.Location.Lng != -73.9 {
		t.Errorf("Lng = %v, want -73.9", job.State.Location.Lng)
	}
	if len(job.State.Note) != 2 {
		t.Errorf("Note = %v, want two entries", job.State.Note)
	}

	// Numeric and string-encoded custom field IDs both parse.
	values := job.State.CustomFieldValues()
	if values[7] != "High" {
		t.Errorf("custom field 7 = %q, want %q", values[7], "High")
	}
}

func TestJobUnmarshalSparse(t *testing.T) {
	var job Job
	if err := json.Unmarshal([]byte(`{"id": "J2", "state": {}}`), &job); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if job.ID != "J2" {
		t.Errorf("ID = %q, want %q", job.ID, "J2")
	}
	if job.LastUpdate() != 0 {
		t.Errorf("LastUpdate() = %d, want 0", job.LastUpdate())
	}
	if job.State.Location.Lat != nil {
		t.Errorf("Lat = %v, want nil", job.State.Location.Lat)
	}
	if len(job.State.CustomFieldValues()) != 0 {
		t.Error("expected no custom field values on sparse job")
	}
}
