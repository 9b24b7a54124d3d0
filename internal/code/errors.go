package code

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrUnknownLanguage is returned when a language name is not in the catalog.
	ErrUnknownLanguage = errors.New("unknown language")
	// ErrInvalidFunctionName is returned when a call spec names something that
	// cannot be spliced into a call expression.
	ErrInvalidFunctionName = errors.New("invalid function name")
)

// TransportError reports a failed request to the judging service: a network
// error, a non-success HTTP status, or a response body we could not read.
// It is never retried by this package.
type TransportError struct {
	Op         string // "submit" or "fetch"
	StatusCode int    // zero when no response was received
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("judge0 %s: HTTP %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("judge0 %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError reports a response field that was not valid transport encoding.
type DecodeError struct {
	Field string
	Err   error
}

func (e *DecodeError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("decode: %v", e.Err)
	}
	return fmt.Sprintf("decode %s: %v", e.Field, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// TimeoutError is returned when a submission does not reach a terminal status
// within the runner's maximum wait.
type TimeoutError struct {
	Token    string
	Waited   time.Duration
	StatusID int
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("submission %s still %s after %s",
		e.Token, StatusDescription(e.StatusID), e.Waited.Round(time.Millisecond))
}
