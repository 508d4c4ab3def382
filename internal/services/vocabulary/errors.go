package vocabulary

import "errors"

var (
	// ErrWordNotFound is returned when a vocabulary entry does not exist
	ErrWordNotFound = errors.New("word not found in vocabulary")

	// ErrDuplicateWord is returned when the German word is already saved,
	// ignoring case
	ErrDuplicateWord = errors.New("word already exists in vocabulary")

	// ErrMissingFields is returned when german or english is empty
	ErrMissingFields = errors.New("missing required data: german and english fields")

	// ErrInvalidDetails is returned when details is not a JSON document
	ErrInvalidDetails = errors.New("details must be valid JSON")
)
