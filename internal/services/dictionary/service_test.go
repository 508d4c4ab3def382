package dictionary

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/killallgit/wortschatz-api/internal/services/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDictionary struct {
	body  []byte
	err   error
	calls atomic.Int32
	gate  chan struct{}
}

func (f *fakeDictionary) Entries(ctx context.Context, word string) ([]byte, error) {
	f.calls.Add(1)
	if f.gate != nil {
		<-f.gate
	}
	return f.body, f.err
}

type fakeTranslator struct {
	out   string
	err   error
	calls int
}

func (f *fakeTranslator) Translate(ctx context.Context, text string) (string, error) {
	f.calls++
	return f.out, f.err
}

func TestLookupDictionaryHit(t *testing.T) {
	dict := &fakeDictionary{body: []byte(hausPayload)}
	svc := NewService(dict, &fakeTranslator{}, nil, 0)

	res, err := svc.Lookup(context.Background(), " Haus ")
	require.NoError(t, err)
	assert.Equal(t, " Haus ", res.Original)
	assert.Equal(t, "house", res.PrimaryTranslation)
	require.NotNil(t, res.Gender)
	assert.Equal(t, "das", *res.Gender)
	assert.NotNil(t, res.Details)
	assert.Equal(t, "dictionary", res.Source)
}

func TestLookupErrors(t *testing.T) {
	tests := []struct {
		name       string
		word       string
		dict       *fakeDictionary
		translator *fakeTranslator
		wantErr    error
		wantResult *LookupResult
	}{
		{
			name:    "empty word",
			word:    "  ",
			dict:    &fakeDictionary{},
			wantErr: ErrEmptyWord,
		},
		{
			name:       "http error falls back to translator",
			word:       "Schmetterling",
			dict:       &fakeDictionary{err: &StatusError{StatusCode: 404}},
			translator: &fakeTranslator{out: "butterfly"},
			wantResult: &LookupResult{Original: "Schmetterling", PrimaryTranslation: "butterfly", Source: "fallback"},
		},
		{
			name:       "fallback failure is not found",
			word:       "Xyzzy",
			dict:       &fakeDictionary{err: &StatusError{StatusCode: 404}},
			translator: &fakeTranslator{err: errors.New("blocked")},
			wantErr:    ErrWordNotFound,
		},
		{
			name:       "network error is unexpected",
			word:       "Haus",
			dict:       &fakeDictionary{err: errors.New("dial tcp: connection refused")},
			translator: &fakeTranslator{out: "house"},
		},
		{
			name:       "unusable payload is unexpected",
			word:       "Haus",
			dict:       &fakeDictionary{body: []byte("[]")},
			translator: &fakeTranslator{out: "house"},
			wantErr:    ErrInvalidResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tr Translator
			if tt.translator != nil {
				tr = tt.translator
			}
			svc := NewService(tt.dict, tr, nil, 0)

			res, err := svc.Lookup(context.Background(), tt.word)
			if tt.wantResult != nil {
				require.NoError(t, err)
				assert.Equal(t, tt.wantResult, res)
				assert.Nil(t, res.Gender)
				assert.Nil(t, res.Details)
				return
			}

			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NotErrorIs(t, err, ErrWordNotFound)
				assert.False(t, IsStatusError(err))
				assert.Zero(t, tt.translator.calls, "only HTTP errors trigger the fallback")
			}
		})
	}
}

func TestLookupUsesCache(t *testing.T) {
	mc := cache.NewMemoryCache(1, time.Hour)
	defer mc.Stop()

	dict := &fakeDictionary{body: []byte(hausPayload)}
	svc := NewService(dict, nil, mc, time.Hour)

	first, err := svc.Lookup(context.Background(), "Haus")
	require.NoError(t, err)
	second, err := svc.Lookup(context.Background(), "Haus")
	require.NoError(t, err)

	assert.Equal(t, int32(1), dict.calls.Load())
	assert.Equal(t, first.PrimaryTranslation, second.PrimaryTranslation)
	assert.Equal(t, first.Gender, second.Gender)
	assert.NotNil(t, second.Details)

	padded, err := svc.Lookup(context.Background(), "Haus\n")
	require.NoError(t, err)
	assert.Equal(t, int32(1), dict.calls.Load(), "padding shares the cache entry")
	assert.Equal(t, "Haus\n", padded.Original)
	assert.Equal(t, "Haus", first.Original)
}

func TestLookupCollapsesConcurrentCalls(t *testing.T) {
	dict := &fakeDictionary{body: []byte(hausPayload), gate: make(chan struct{})}
	svc := NewService(dict, nil, nil, 0)

	const callers = 5
	var wg sync.WaitGroup
	results := make(chan *LookupResult, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := svc.Lookup(context.Background(), "Haus")
			if assert.NoError(t, err) {
				results <- res
			}
		}()
	}

	require.Eventually(t, func() bool { return dict.calls.Load() == 1 }, time.Second, time.Millisecond)
	// let the other callers join the in-flight call
	time.Sleep(50 * time.Millisecond)
	close(dict.gate)
	wg.Wait()
	close(results)

	assert.Equal(t, int32(1), dict.calls.Load())
	var got []*LookupResult
	for r := range results {
		got = append(got, r)
	}
	require.Len(t, got, callers)
	assert.NotSame(t, got[0], got[1], "each caller gets its own copy")
}

func TestLookupCallerCancellation(t *testing.T) {
	dict := &fakeDictionary{body: []byte(hausPayload), gate: make(chan struct{})}
	defer close(dict.gate)
	svc := NewService(dict, nil, nil, 0)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := svc.Lookup(ctx, "Haus")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
