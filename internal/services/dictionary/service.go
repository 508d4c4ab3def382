package dictionary

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/killallgit/wortschatz-api/internal/metrics"
	"github.com/killallgit/wortschatz-api/internal/services/cache"
	"golang.org/x/sync/singleflight"
)

const cacheKeyPrefix = "dictionary:"

// LookupResult is a dictionary answer for one word
type LookupResult struct {
	Original           string  `json:"original"`
	PrimaryTranslation string  `json:"primary_translation"`
	Gender             *string `json:"gender"`
	Details            any     `json:"details" swaggertype:"object"`

	// Source is where the answer came from: dictionary or fallback
	Source string `json:"-"`
}

// DictionaryService defines word lookups
type DictionaryService interface {
	// Lookup finds a translation, falling back to machine translation when
	// the dictionary has no entry
	Lookup(ctx context.Context, word string) (*LookupResult, error)
}

// Dictionary fetches raw dictionary payloads
type Dictionary interface {
	Entries(ctx context.Context, word string) ([]byte, error)
}

// service implements DictionaryService
type service struct {
	dictionary Dictionary
	translator Translator
	cache      cache.Cache
	ttl        time.Duration
	group      singleflight.Group
}

// NewService creates a new dictionary service. cache may be nil.
func NewService(dictionary Dictionary, translator Translator, c cache.Cache, ttl time.Duration) DictionaryService {
	return &service{
		dictionary: dictionary,
		translator: translator,
		cache:      c,
		ttl:        ttl,
	}
}

// Lookup resolves word, serving repeated words from the cache and sharing
// one upstream call between concurrent lookups of the same word. Surrounding
// whitespace is ignored for the lookup; Original echoes word as given.
func (s *service) Lookup(ctx context.Context, word string) (*LookupResult, error) {
	key := strings.TrimSpace(word)
	if key == "" {
		return nil, ErrEmptyWord
	}

	var result LookupResult
	if s.cache != nil && cache.GetJSON(ctx, s.cache, cacheKeyPrefix+key, &result) {
		metrics.RecordLookup("cache", "success")
		result.Original = word
		return &result, nil
	}

	// The shared call must not be canceled by whichever caller started it
	ch := s.group.DoChan(key, func() (any, error) {
		return s.lookup(context.WithoutCancel(ctx), key)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		result = *res.Val.(*LookupResult)
		result.Original = word
		return &result, nil
	}
}

func (s *service) lookup(ctx context.Context, word string) (*LookupResult, error) {
	body, err := s.dictionary.Entries(ctx, word)
	if err != nil {
		if IsStatusError(err) {
			log.Printf("[DEBUG] Dictionary has no entry for %q (%v), trying fallback translator", word, err)
			return s.fallback(ctx, word)
		}
		metrics.RecordLookup("dictionary", "error")
		return nil, fmt.Errorf("dictionary lookup %q: %w", word, err)
	}

	entries, details, err := parseEntries(body)
	if err != nil {
		metrics.RecordLookup("dictionary", "error")
		return nil, fmt.Errorf("dictionary lookup %q: %w", word, err)
	}

	first := entries[0]
	result := &LookupResult{
		Original:           word,
		PrimaryTranslation: primaryTranslation(first),
		Gender:             gender(first),
		Details:            details,
		Source:             "dictionary",
	}
	metrics.RecordLookup("dictionary", "success")
	s.store(ctx, word, result)
	return result, nil
}

func (s *service) fallback(ctx context.Context, word string) (*LookupResult, error) {
	if s.translator == nil {
		metrics.RecordLookup("fallback", "not_found")
		return nil, ErrWordNotFound
	}

	translated, err := s.translator.Translate(ctx, word)
	if err != nil {
		log.Printf("[WARN] Fallback translator failed for %q: %v", word, err)
		metrics.RecordLookup("fallback", "not_found")
		return nil, fmt.Errorf("%w: %v", ErrWordNotFound, err)
	}

	result := &LookupResult{
		Original:           word,
		PrimaryTranslation: translated,
		Source:             "fallback",
	}
	metrics.RecordLookup("fallback", "success")
	s.store(ctx, word, result)
	return result, nil
}

func (s *service) store(ctx context.Context, word string, result *LookupResult) {
	if s.cache == nil {
		return
	}
	if err := cache.SetJSON(ctx, s.cache, cacheKeyPrefix+word, result, s.ttl); err != nil && !errors.Is(err, cache.ErrTooLarge) {
		log.Printf("[WARN] Failed to cache lookup for %q: %v", word, err)
	}
}
