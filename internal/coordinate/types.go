package coordinate

import "fmt"

// APIError represents an error from the Coordinate API.
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Coordinate API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}
