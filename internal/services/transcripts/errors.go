package transcripts

import (
	"errors"
	"fmt"

	"github.com/killallgit/wortschatz-api/internal/engine"
	"github.com/killallgit/wortschatz-api/internal/services/workers"
	"github.com/killallgit/wortschatz-api/pkg/audio"
)

var (
	// ErrNotFound is returned when a transcript or its audio does not exist
	ErrNotFound = errors.New("transcript not found")

	// ErrUnsupportedFormat is returned for uploads that cannot be decoded
	ErrUnsupportedFormat = audio.ErrUnsupportedFormat

	// ErrEngineUnavailable is returned when no engine is loaded
	ErrEngineUnavailable = engine.ErrEngineUnavailable

	// ErrBusy is returned when the processing queue is full
	ErrBusy = workers.ErrQueueFull
)

// StageError records the pipeline state an ingestion failed to reach
type StageError struct {
	Stage State
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("ingest failed before %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// FailedStage returns the state an ingestion error stopped at, or Received
// if err did not come from Ingest
func FailedStage(err error) State {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return Received
}
