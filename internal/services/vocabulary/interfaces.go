package vocabulary

import (
	"context"
	"encoding/json"

	"github.com/killallgit/wortschatz-api/internal/models"
)

// CreateRequest is a word to add to the vocabulary
type CreateRequest struct {
	German  string          `json:"german"`
	English string          `json:"english"`
	Gender  *string         `json:"gender,omitempty"`
	Details json.RawMessage `json:"details,omitempty" swaggertype:"object"`
}

// VocabularyService defines vocabulary operations
type VocabularyService interface {
	// List returns every word ordered by German spelling
	List(ctx context.Context) ([]models.Vocabulary, error)

	// Create saves a new word
	Create(ctx context.Context, req CreateRequest) (*models.Vocabulary, error)

	// Delete removes a word by ID
	Delete(ctx context.Context, id uint) error
}

// Repository defines vocabulary persistence
type Repository interface {
	// List retrieves every word ordered by German spelling
	List(ctx context.Context) ([]models.Vocabulary, error)

	// ExistsGerman checks for a word ignoring case
	ExistsGerman(ctx context.Context, german string) (bool, error)

	// Create inserts a word
	Create(ctx context.Context, word *models.Vocabulary) error

	// Delete removes a word by ID
	Delete(ctx context.Context, id uint) error
}
