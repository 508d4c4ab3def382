package types

import (
	"github.com/killallgit/wortschatz-api/internal/database"
	"github.com/killallgit/wortschatz-api/internal/services/dictionary"
	"github.com/killallgit/wortschatz-api/internal/services/transcripts"
	"github.com/killallgit/wortschatz-api/internal/services/vocabulary"
	"github.com/killallgit/wortschatz-api/internal/services/workers"
	"github.com/killallgit/wortschatz-api/pkg/config"
)

// Dependencies holds all the dependencies needed by handlers
type Dependencies struct {
	DB                *database.DB
	TranscriptService transcripts.TranscriptService
	VocabularyService vocabulary.VocabularyService
	DictionaryService dictionary.DictionaryService
	WorkerPool        *workers.Pool
	Config            *config.Config
	Version           string
}
