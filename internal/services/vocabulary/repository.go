package vocabulary

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/killallgit/wortschatz-api/internal/models"
	"gorm.io/gorm"
)

// repository implements Repository
type repository struct {
	db *gorm.DB
}

// NewRepository creates a new vocabulary repository
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// List retrieves every word ordered by German spelling
func (r *repository) List(ctx context.Context) ([]models.Vocabulary, error) {
	var words []models.Vocabulary
	if err := r.db.WithContext(ctx).Order("german COLLATE NOCASE ASC").Find(&words).Error; err != nil {
		return nil, fmt.Errorf("listing vocabulary: %w", err)
	}
	return words, nil
}

// ExistsGerman checks for a word ignoring case
func (r *repository) ExistsGerman(ctx context.Context, german string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Vocabulary{}).
		Where("LOWER(german) = LOWER(?)", german).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("checking vocabulary: %w", err)
	}
	return count > 0, nil
}

// Create inserts a word. A unique index violation becomes ErrDuplicateWord.
func (r *repository) Create(ctx context.Context, word *models.Vocabulary) error {
	if err := r.db.WithContext(ctx).Create(word).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrDuplicateWord
		}
		return fmt.Errorf("creating vocabulary entry: %w", err)
	}
	return nil
}

// Delete removes a word by ID
func (r *repository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Vocabulary{}, id)
	if result.Error != nil {
		return fmt.Errorf("deleting vocabulary entry: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrWordNotFound
	}
	return nil
}
