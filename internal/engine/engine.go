// Package engine defines the speech recognition boundary. An Engine is loaded
// once at startup and shared through a Handle that remembers whether loading
// succeeded.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/killallgit/wortschatz-api/pkg/audio"
)

// Result is an engine's native transcript tree. Backends use at least the
// keys "text", "language" and "segments"; segments carry "start", "end",
// "text" and, where the backend supports it, "words".
type Result map[string]any

// Engine transcribes normalized samples
type Engine interface {
	Name() string
	Transcribe(ctx context.Context, samples audio.Samples, language string) (Result, error)
}

// Prober is implemented by engines that can verify their model or server at
// startup
type Prober interface {
	Probe(ctx context.Context) error
}

// ErrEngineUnavailable means the engine failed to load and no transcription
// will be attempted
var ErrEngineUnavailable = errors.New("transcription engine unavailable")

// TranscriptionError wraps a failure during inference. The engine remains
// usable for later requests.
type TranscriptionError struct {
	Engine string
	Err    error
}

func (e *TranscriptionError) Error() string {
	return fmt.Sprintf("%s transcription failed: %v", e.Engine, e.Err)
}

func (e *TranscriptionError) Unwrap() error { return e.Err }

// Handle is the process-wide reference to the loaded engine
type Handle struct {
	engine  Engine
	loadErr error
}

// Load probes e and returns a Handle recording the outcome. A failed probe
// does not return an error; the Handle reports it from Available instead.
func Load(ctx context.Context, e Engine) *Handle {
	if e == nil {
		return Unavailable(errors.New("no engine configured"))
	}
	h := &Handle{engine: e}
	if p, ok := e.(Prober); ok {
		if err := p.Probe(ctx); err != nil {
			log.Printf("[ERROR] Failed to load %s engine: %v", e.Name(), err)
			h.loadErr = err
			return h
		}
	}
	log.Printf("[INFO] Transcription engine %s loaded", e.Name())
	return h
}

// Unavailable returns a Handle that rejects all work with reason
func Unavailable(reason error) *Handle {
	return &Handle{loadErr: reason}
}

// Name returns the engine name or "none"
func (h *Handle) Name() string {
	if h == nil || h.engine == nil {
		return "none"
	}
	return h.engine.Name()
}

// Available returns nil if transcription can be attempted, otherwise an error
// wrapping ErrEngineUnavailable
func (h *Handle) Available() error {
	if h == nil || h.engine == nil {
		reason := "not loaded"
		if h != nil && h.loadErr != nil {
			reason = h.loadErr.Error()
		}
		return fmt.Errorf("%w: %s", ErrEngineUnavailable, reason)
	}
	if h.loadErr != nil {
		return fmt.Errorf("%w: %v", ErrEngineUnavailable, h.loadErr)
	}
	return nil
}

// Transcribe runs the engine. Failures other than unavailability and
// cancellation come back as *TranscriptionError.
func (h *Handle) Transcribe(ctx context.Context, samples audio.Samples, language string) (Result, error) {
	if err := h.Available(); err != nil {
		return nil, err
	}
	if len(samples) == 0 {
		return nil, &TranscriptionError{Engine: h.Name(), Err: errors.New("no samples")}
	}

	result, err := h.engine.Transcribe(ctx, samples, language)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		var te *TranscriptionError
		if errors.As(err, &te) {
			return nil, err
		}
		return nil, &TranscriptionError{Engine: h.Name(), Err: err}
	}
	if result == nil {
		return nil, &TranscriptionError{Engine: h.Name(), Err: errors.New("empty result")}
	}
	return result, nil
}
