package models

import "encoding/json"

// CustomFieldDef is a team-level custom field definition. The numeric ID is
// unique within a team and keys the values attached to individual jobs.
type CustomFieldDef struct {
	ID   json.Number `json:"id"`
	Name string      `json:"name"`
}

// CustomFieldDefList is the response body of the custom_fields listing.
type CustomFieldDefList struct {
	Items []CustomFieldDef `json:"items"`
}
