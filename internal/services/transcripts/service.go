package transcripts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/killallgit/wortschatz-api/internal/engine"
	"github.com/killallgit/wortschatz-api/internal/models"
	"github.com/killallgit/wortschatz-api/internal/services/cleanup"
	"github.com/killallgit/wortschatz-api/internal/services/workers"
	"github.com/killallgit/wortschatz-api/internal/storage"
	"github.com/killallgit/wortschatz-api/pkg/audio"
	"github.com/killallgit/wortschatz-api/pkg/sanitize"
)

// DefaultLanguage is the language hint passed to the engine
const DefaultLanguage = "de"

const placeholderPrefix = "pending-"

// Options holds the service's collaborators
type Options struct {
	Repository Repository
	Normalizer Normalizer
	Engine     Transcriber
	Pool       Executor
	Temp       TempStore
	Library    AudioStore
	Language   string
}

// service implements TranscriptService
type service struct {
	repo       Repository
	normalizer Normalizer
	engine     Transcriber
	pool       Executor
	temp       TempStore
	library    AudioStore
	language   string
}

// NewService creates a new transcript service. Without a Pool, stages run on
// the calling goroutine.
func NewService(opts Options) TranscriptService {
	s := &service{
		repo:       opts.Repository,
		normalizer: opts.Normalizer,
		engine:     opts.Engine,
		pool:       opts.Pool,
		temp:       opts.Temp,
		library:    opts.Library,
		language:   opts.Language,
	}
	if s.pool == nil {
		s.pool = inline{}
	}
	if s.language == "" {
		s.language = DefaultLanguage
	}
	return s
}

// inline runs work directly
type inline struct{}

func (inline) Do(ctx context.Context, fn workers.Func) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx)
}

// Available reports whether the engine is loaded
func (s *service) Available() error {
	if s.engine == nil {
		return fmt.Errorf("%w: not configured", ErrEngineUnavailable)
	}
	return s.engine.Available()
}

// Receive stores r under "<uuid>_<secure name>" in the temp directory
func (s *service) Receive(filename string, r io.Reader) (Upload, error) {
	name := uuid.NewString() + "_" + SecureFilename(filename)
	path, err := s.temp.Save(name, r)
	if err != nil {
		return Upload{}, fmt.Errorf("failed to store upload: %w", err)
	}
	log.Printf("[DEBUG] Received upload %q as %s", filename, path)
	return Upload{TempPath: path, OriginalFilename: filename}, nil
}

// Ingest runs the pipeline for one upload
func (s *service) Ingest(ctx context.Context, upload Upload) (*models.Transcript, error) {
	secureName := SecureFilename(upload.OriginalFilename)
	r := newRun(secureName)
	defer cleanup.RemoveFile(upload.TempPath)

	if err := s.Available(); err != nil {
		return nil, r.fail(err)
	}

	raw, err := os.ReadFile(upload.TempPath)
	if err != nil {
		return nil, r.fail(fmt.Errorf("failed to read upload: %w", err))
	}

	var samples audio.Samples
	err = s.pool.Do(ctx, func(ctx context.Context) error {
		var err error
		samples, err = s.normalizer.Normalize(ctx, raw, secureName)
		return err
	})
	if err != nil {
		return nil, r.fail(err)
	}
	r.advance(Normalized)
	log.Printf("[INFO] Normalized %s: %.1fs of audio", secureName, samples.Duration().Seconds())

	var result engine.Result
	err = s.pool.Do(ctx, func(ctx context.Context) error {
		var err error
		result, err = s.engine.Transcribe(ctx, samples, s.language)
		return err
	})
	if err != nil {
		return nil, r.fail(err)
	}
	r.advance(Transcribed)

	data, err := json.Marshal(sanitize.Map(result))
	if err != nil {
		return nil, r.fail(fmt.Errorf("failed to encode transcript: %w", err))
	}
	r.advance(Sanitized)

	transcript, err := s.persist(ctx, r, upload.TempPath, secureName, data)
	if err != nil {
		return nil, err
	}

	log.Printf("[INFO] Stored transcript %d (%s) using %s", transcript.ID, transcript.AudioFilename, s.engine.Name())
	return transcript, nil
}

// persist reserves the row, moves the audio next to it and commits, all in
// one transaction. On failure neither the row nor the moved file remains.
func (s *service) persist(ctx context.Context, r *run, tempPath, secureName string, data []byte) (*models.Transcript, error) {
	transcript := &models.Transcript{
		Title:          Title(secureName),
		AudioFilename:  placeholderPrefix + uuid.NewString(),
		TranscriptJSON: string(data),
	}

	var relocated string
	err := s.repo.Transaction(ctx, func(repo Repository) error {
		if err := repo.Create(ctx, transcript); err != nil {
			return fmt.Errorf("failed to reserve transcript row: %w", err)
		}
		r.advance(RowReserved)

		final := fmt.Sprintf("%d_%s", transcript.ID, secureName)
		if _, err := s.library.Move(tempPath, final); err != nil {
			return fmt.Errorf("failed to relocate audio: %w", err)
		}
		relocated = final
		r.advance(FileRelocated)

		if err := repo.SetFilename(ctx, transcript.ID, final); err != nil {
			return fmt.Errorf("failed to finalize filename: %w", err)
		}
		transcript.AudioFilename = final
		return nil
	})
	if err != nil {
		if relocated != "" {
			if rmErr := s.library.Remove(relocated); rmErr != nil {
				log.Printf("[ERROR] Failed to remove relocated audio %s after rollback: %v", relocated, rmErr)
			}
		}
		return nil, r.fail(err)
	}
	r.advance(Committed)
	return transcript, nil
}

// List returns every transcript, newest first
func (s *service) List(ctx context.Context) ([]models.Transcript, error) {
	return s.repo.List(ctx)
}

// Get returns a transcript with its data
func (s *service) Get(ctx context.Context, id uint) (*models.Transcript, error) {
	if id == 0 {
		return nil, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

// Delete removes the audio file, then the row. A file that is already gone
// is not an error; a row that cannot be deleted is.
func (s *service) Delete(ctx context.Context, id uint) error {
	if id == 0 {
		return ErrNotFound
	}
	return s.repo.Transaction(ctx, func(repo Repository) error {
		transcript, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := s.library.Remove(transcript.AudioFilename); err != nil {
			return fmt.Errorf("failed to remove audio file: %w", err)
		}
		if err := repo.Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to delete transcript row: %w", err)
		}
		log.Printf("[INFO] Deleted transcript %d (%s)", id, transcript.AudioFilename)
		return nil
	})
}

// AudioPath resolves a stored filename to an existing file in the library
func (s *service) AudioPath(filename string) (string, error) {
	path, err := s.library.Path(filename)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidName) {
			return "", ErrNotFound
		}
		return "", err
	}
	exists, err := s.library.Exists(filename)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", ErrNotFound
	}
	return path, nil
}
