package models

import (
	"encoding/json"
	"net/url"
	"time"
)

// AudioRoute is the public prefix permanent audio files are served under
const AudioRoute = "/audio/"

// Transcript is a transcribed upload and the permanent audio file backing it
type Transcript struct {
	ID            uint   `gorm:"primarykey" json:"id"`
	Title         string `gorm:"not null" json:"title"`
	AudioFilename string `gorm:"uniqueIndex;not null" json:"audio_filename"`
	// TranscriptJSON is the sanitized engine result, stored as JSON text
	TranscriptJSON string    `gorm:"type:text;not null;default:'{}'" json:"-"`
	CreatedAt      time.Time `json:"created_at"`
}

// TableName specifies the table name for Transcript
func (Transcript) TableName() string {
	return "transcripts"
}

// AudioURL is the path the transcript's audio is streamed from
func (t *Transcript) AudioURL() string {
	return AudioRoute + url.PathEscape(t.AudioFilename)
}

// TranscriptSummary is the list and upload representation
type TranscriptSummary struct {
	ID       uint   `json:"id"`
	Title    string `json:"title"`
	AudioURL string `json:"audio_url"`
}

// TranscriptDetail adds the transcript tree to the summary
type TranscriptDetail struct {
	TranscriptSummary
	TranscriptData json.RawMessage `json:"transcript_data" swaggertype:"object"`
}

// Summary returns the external representation without transcript data
func (t *Transcript) Summary() TranscriptSummary {
	return TranscriptSummary{
		ID:       t.ID,
		Title:    t.Title,
		AudioURL: t.AudioURL(),
	}
}

// Detail returns the external representation including transcript data
func (t *Transcript) Detail() TranscriptDetail {
	data := json.RawMessage(t.TranscriptJSON)
	if len(data) == 0 || !json.Valid(data) {
		data = json.RawMessage("{}")
	}
	return TranscriptDetail{
		TranscriptSummary: t.Summary(),
		TranscriptData:    data,
	}
}
