package models

import (
	"encoding/json"
	"time"
)

// Vocabulary is a saved German word with its translation
type Vocabulary struct {
	ID      uint    `gorm:"primarykey" json:"id"`
	German  string  `gorm:"not null;uniqueIndex:idx_vocabulary_german,collate:NOCASE" json:"german"`
	English string  `gorm:"not null" json:"english"`
	Gender  *string `json:"gender"`
	// DetailsJSON holds the dictionary payload the word was saved with
	DetailsJSON *string   `gorm:"type:text;column:details" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName specifies the table name for Vocabulary
func (Vocabulary) TableName() string {
	return "vocabulary"
}

// VocabularyResponse is the external representation of a word
type VocabularyResponse struct {
	ID      uint            `json:"id"`
	German  string          `json:"german"`
	English string          `json:"english"`
	Gender  *string         `json:"gender"`
	Details json.RawMessage `json:"details" swaggertype:"object"`
}

// ToResponse converts the row, decoding stored details
func (v *Vocabulary) ToResponse() VocabularyResponse {
	resp := VocabularyResponse{
		ID:      v.ID,
		German:  v.German,
		English: v.English,
		Gender:  v.Gender,
		Details: json.RawMessage("null"),
	}
	if v.DetailsJSON != nil && json.Valid([]byte(*v.DetailsJSON)) {
		resp.Details = json.RawMessage(*v.DetailsJSON)
	}
	return resp
}
