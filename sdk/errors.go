package codetester

import "fmt"

// APIError is returned when the codetester API responds with a non-success status.
// Result is set when a synchronous evaluation failed to reach the judge (HTTP 502).
type APIError struct {
	StatusCode int
	Message    string
	Result     *RunResult
}

func (e *APIError) Error() string {
	return fmt.Sprintf("codetester: HTTP %d: %s", e.StatusCode, e.Message)
}
