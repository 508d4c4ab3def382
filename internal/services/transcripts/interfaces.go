package transcripts

import (
	"context"
	"io"

	"github.com/killallgit/wortschatz-api/internal/engine"
	"github.com/killallgit/wortschatz-api/internal/models"
	"github.com/killallgit/wortschatz-api/internal/services/workers"
	"github.com/killallgit/wortschatz-api/pkg/audio"
)

// Upload is an incoming file already written to the temp directory
type Upload struct {
	TempPath         string
	OriginalFilename string
}

// TranscriptService defines the operations on the transcript library
type TranscriptService interface {
	// Available reports whether uploads can be accepted at all
	Available() error

	// Receive stores an incoming upload under a unique temp name
	Receive(filename string, r io.Reader) (Upload, error)

	// Ingest runs an upload through normalization, transcription and storage.
	// The temp file is gone when Ingest returns, whatever the outcome.
	Ingest(ctx context.Context, upload Upload) (*models.Transcript, error)

	// List returns every transcript, newest first, without transcript data
	List(ctx context.Context) ([]models.Transcript, error)

	// Get returns a transcript with its data
	Get(ctx context.Context, id uint) (*models.Transcript, error)

	// Delete removes a transcript's audio file and row
	Delete(ctx context.Context, id uint) error

	// AudioPath resolves a stored filename to a file on disk
	AudioPath(filename string) (string, error)
}

// Repository defines transcript persistence
type Repository interface {
	// Transaction runs fn against a repository bound to one database transaction
	Transaction(ctx context.Context, fn func(repo Repository) error) error

	// Create inserts a transcript and assigns its ID
	Create(ctx context.Context, transcript *models.Transcript) error

	// SetFilename changes the audio filename of a stored transcript
	SetFilename(ctx context.Context, id uint, filename string) error

	// GetByID retrieves a transcript with its data
	GetByID(ctx context.Context, id uint) (*models.Transcript, error)

	// List retrieves every transcript ordered by descending ID
	List(ctx context.Context) ([]models.Transcript, error)

	// Delete removes a transcript row
	Delete(ctx context.Context, id uint) error
}

// Normalizer decodes uploads into model input
type Normalizer interface {
	Normalize(ctx context.Context, raw []byte, declaredFilename string) (audio.Samples, error)
}

// Transcriber is the loaded speech recognition engine
type Transcriber interface {
	Name() string
	Available() error
	Transcribe(ctx context.Context, samples audio.Samples, language string) (engine.Result, error)
}

// Executor runs CPU heavy stages off the request goroutine
type Executor interface {
	Do(ctx context.Context, fn workers.Func) error
}

// AudioStore is the permanent audio directory
type AudioStore interface {
	Move(src, name string) (string, error)
	Remove(name string) error
	Path(name string) (string, error)
	Exists(name string) (bool, error)
}

// TempStore is the scratch directory uploads are received into
type TempStore interface {
	Save(name string, r io.Reader) (string, error)
}
