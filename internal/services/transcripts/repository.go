package transcripts

import (
	"context"
	"errors"

	"github.com/killallgit/wortschatz-api/internal/models"
	"gorm.io/gorm"
)

// repository implements Repository
type repository struct {
	db *gorm.DB
}

// NewRepository creates a new transcript repository
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// Transaction runs fn inside a database transaction. fn's error rolls back.
func (r *repository) Transaction(ctx context.Context, fn func(repo Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&repository{db: tx})
	})
}

// Create inserts a transcript and assigns its ID
func (r *repository) Create(ctx context.Context, transcript *models.Transcript) error {
	return r.db.WithContext(ctx).Create(transcript).Error
}

// SetFilename changes the audio filename of a stored transcript
func (r *repository) SetFilename(ctx context.Context, id uint, filename string) error {
	result := r.db.WithContext(ctx).
		Model(&models.Transcript{}).
		Where("id = ?", id).
		Update("audio_filename", filename)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID retrieves a transcript with its data
func (r *repository) GetByID(ctx context.Context, id uint) (*models.Transcript, error) {
	var transcript models.Transcript
	err := r.db.WithContext(ctx).First(&transcript, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &transcript, nil
}

// List retrieves every transcript ordered by descending ID. Transcript data
// is not loaded.
func (r *repository) List(ctx context.Context) ([]models.Transcript, error) {
	var transcripts []models.Transcript
	err := r.db.WithContext(ctx).
		Select("id", "title", "audio_filename", "created_at").
		Order("id DESC").
		Find(&transcripts).Error
	if err != nil {
		return nil, err
	}
	return transcripts, nil
}

// Delete removes a transcript row
func (r *repository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Transcript{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
