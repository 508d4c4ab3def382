package dictionary

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyWord is returned when no word was given
	ErrEmptyWord = errors.New("no word provided")

	// ErrWordNotFound is returned when neither the dictionary nor the
	// fallback translator produced a result
	ErrWordNotFound = errors.New("word not found and fallback translation failed")

	// ErrInvalidResponse indicates an upstream payload could not be used
	ErrInvalidResponse = errors.New("invalid response from dictionary api")
)

// StatusError is an upstream HTTP error status
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.StatusCode, e.URL)
}

// Temporary reports whether retrying may succeed
func (e *StatusError) Temporary() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}

// IsStatusError reports whether err carries an upstream HTTP status
func IsStatusError(err error) bool {
	var se *StatusError
	return errors.As(err, &se)
}
