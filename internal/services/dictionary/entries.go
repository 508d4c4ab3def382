package dictionary

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/killallgit/wortschatz-api/pkg/sanitize"
)

// NotAvailable is the translation reported when no definition exists
const NotAvailable = "N/A"

type entry struct {
	Word      string     `json:"word"`
	Phonetics []phonetic `json:"phonetics"`
	Meanings  []meaning  `json:"meanings"`
}

type phonetic struct {
	Text  string `json:"text"`
	Audio string `json:"audio"`
}

type meaning struct {
	PartOfSpeech string       `json:"partOfSpeech"`
	Definitions  []definition `json:"definitions"`
}

type definition struct {
	Definition string `json:"definition"`
}

// parseEntries decodes a dictionary payload into typed entries and the
// sanitized raw tree returned as details
func parseEntries(body []byte) ([]entry, any, error) {
	var entries []entry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if len(entries) == 0 {
		return nil, nil, fmt.Errorf("%w: no entries", ErrInvalidResponse)
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return entries, sanitize.Value(raw), nil
}

// primaryTranslation is the first clause of the first definition found
func primaryTranslation(e entry) string {
	for _, m := range e.Meanings {
		if len(m.Definitions) == 0 {
			continue
		}
		def := m.Definitions[0].Definition
		def, _, _ = strings.Cut(def, ";")
		def, _, _ = strings.Cut(def, ",")
		return def
	}
	return NotAvailable
}

// articleMarkers maps phonetic spellings of the definite article to the
// article, checked in order
var articleMarkers = []struct {
	marker  string
	article string
}{
	{"dɛr ", "der"},
	{"deːr ", "der"},
	{"diː ", "die"},
	{"das ", "das"},
}

// gender guesses a noun's article from its phonetic transcriptions. Only
// entries whose first meaning is a noun get one.
func gender(e entry) *string {
	if len(e.Meanings) == 0 || e.Meanings[0].PartOfSpeech != "noun" {
		return nil
	}
	for _, p := range e.Phonetics {
		text := strings.ToLower(p.Text)
		for _, am := range articleMarkers {
			if strings.Contains(text, am.marker) {
				article := am.article
				return &article
			}
		}
	}
	return nil
}
