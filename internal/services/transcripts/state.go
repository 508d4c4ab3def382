package transcripts

import (
	"log"
	"time"

	"github.com/killallgit/wortschatz-api/internal/metrics"
)

// State is a step of the ingestion pipeline
type State int

const (
	Received State = iota
	Normalized
	Transcribed
	Sanitized
	RowReserved
	FileRelocated
	Committed
	Failed
)

var stateNames = [...]string{
	Received:      "received",
	Normalized:    "normalized",
	Transcribed:   "transcribed",
	Sanitized:     "sanitized",
	RowReserved:   "row_reserved",
	FileRelocated: "file_relocated",
	Committed:     "committed",
	Failed:        "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Terminal reports whether no further transition is possible
func (s State) Terminal() bool {
	return s == Committed || s == Failed
}

// run tracks one upload through the pipeline
type run struct {
	name    string
	state   State
	entered time.Time
	history []State
}

func newRun(name string) *run {
	return &run{name: name, state: Received, entered: time.Now(), history: []State{Received}}
}

// advance moves to next, which must directly follow the current state
func (r *run) advance(next State) {
	if r.state.Terminal() || next != r.state+1 {
		log.Printf("[ERROR] Ingest %s: invalid transition %s -> %s", r.name, r.state, next)
		return
	}
	metrics.RecordStageDuration(next.String(), time.Since(r.entered).Seconds())
	metrics.RecordStage(next.String(), true)
	log.Printf("[DEBUG] Ingest %s: %s -> %s", r.name, r.state, next)

	r.state = next
	r.entered = time.Now()
	r.history = append(r.history, next)
}

// fail moves to Failed and returns err annotated with the state that was
// not reached
func (r *run) fail(err error) error {
	if r.state.Terminal() {
		return err
	}
	attempted := r.state + 1
	metrics.RecordStage(attempted.String(), false)
	metrics.RecordStage(Failed.String(), false)
	log.Printf("[WARN] Ingest %s: %s -> %s: %v", r.name, r.state, Failed, err)

	r.state = Failed
	r.history = append(r.history, Failed)
	return &StageError{Stage: attempted, Err: err}
}
