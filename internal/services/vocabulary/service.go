package vocabulary

import (
	"context"
	"encoding/json"
	"log"
	"strings"

	"github.com/killallgit/wortschatz-api/internal/models"
)

// service implements VocabularyService
type service struct {
	repo Repository
}

// NewService creates a new vocabulary service
func NewService(repo Repository) VocabularyService {
	return &service{repo: repo}
}

// List returns every word ordered by German spelling
func (s *service) List(ctx context.Context) ([]models.Vocabulary, error) {
	return s.repo.List(ctx)
}

// Create saves a new word after checking it is not already present
func (s *service) Create(ctx context.Context, req CreateRequest) (*models.Vocabulary, error) {
	german := strings.TrimSpace(req.German)
	english := strings.TrimSpace(req.English)
	if german == "" || english == "" {
		return nil, ErrMissingFields
	}

	exists, err := s.repo.ExistsGerman(ctx, german)
	if err != nil {
		return nil, err
	}
	if exists {
		log.Printf("[DEBUG] Vocabulary already contains %q", german)
		return nil, ErrDuplicateWord
	}

	word := &models.Vocabulary{
		German:  german,
		English: english,
		Gender:  normalizeGender(req.Gender),
	}
	if details := strings.TrimSpace(string(req.Details)); details != "" && details != "null" {
		if !json.Valid([]byte(details)) {
			return nil, ErrInvalidDetails
		}
		word.DetailsJSON = &details
	}

	if err := s.repo.Create(ctx, word); err != nil {
		return nil, err
	}

	log.Printf("[INFO] Added %q to vocabulary (id %d)", word.German, word.ID)
	return word, nil
}

// Delete removes a word by ID
func (s *service) Delete(ctx context.Context, id uint) error {
	if id == 0 {
		return ErrWordNotFound
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	log.Printf("[INFO] Deleted vocabulary entry %d", id)
	return nil
}

// normalizeGender drops empty genders and lowercases articles
func normalizeGender(g *string) *string {
	if g == nil {
		return nil
	}
	v := strings.ToLower(strings.TrimSpace(*g))
	if v == "" {
		return nil
	}
	return &v
}
