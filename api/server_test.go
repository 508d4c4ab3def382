package api

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/killallgit/wortschatz-api/api/types"
	"github.com/killallgit/wortschatz-api/internal/database"
	"github.com/killallgit/wortschatz-api/internal/engine"
	"github.com/killallgit/wortschatz-api/internal/services/dictionary"
	"github.com/killallgit/wortschatz-api/internal/services/transcripts"
	"github.com/killallgit/wortschatz-api/internal/services/vocabulary"
	"github.com/killallgit/wortschatz-api/internal/storage"
	"github.com/killallgit/wortschatz-api/pkg/audio"
	"github.com/killallgit/wortschatz-api/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// missingWords answers every lookup like an unknown word
type missingWords struct{}

func (missingWords) Entries(ctx context.Context, word string) ([]byte, error) {
	return nil, &dictionary.StatusError{URL: "http://dictionary.test/" + word, StatusCode: http.StatusNotFound}
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Host: "127.0.0.1", Port: 5000, MaxUploadSize: 1 << 20},
		RateLimiting: config.RateLimitConfig{
			Enabled:   true,
			Endpoints: map[string]int{EndpointDefault: 100, EndpointUpload: 100, EndpointDictionary: 100},
		},
		Security:   config.SecurityConfig{EnableCORS: true, CORSOrigins: []string{"*"}},
		Monitoring: config.MonitoringConfig{Enabled: true, MetricsPath: "/metrics"},
	}
}

func setupServer(t *testing.T) *Server {
	gin.SetMode(gin.TestMode)

	db, err := database.Initialize(config.DatabaseConfig{Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate())

	temp, err := storage.NewTemp(t.TempDir())
	require.NoError(t, err)
	library, err := storage.NewLibrary(t.TempDir())
	require.NoError(t, err)

	cfg := testConfig()
	deps := &types.Dependencies{
		DB:     db,
		Config: cfg,
		TranscriptService: transcripts.NewService(transcripts.Options{
			Repository: transcripts.NewRepository(db.DB),
			Normalizer: audio.NewNormalizer(nil, nil),
			Engine:     engine.Unavailable(errors.New("model file missing")),
			Temp:       temp,
			Library:    library,
		}),
		VocabularyService: vocabulary.NewService(vocabulary.NewRepository(db.DB)),
		DictionaryService: dictionary.NewService(missingWords{}, nil, nil, 0),
		Version:           "1.0.0",
	}

	server := NewServer(cfg.Server)
	server.SetDependencies(deps)
	require.NoError(t, server.Initialize())
	t.Cleanup(func() { server.rateLimiter.Stop() })
	return server
}

func TestServerRoutes(t *testing.T) {
	server := setupServer(t)
	assert.Equal(t, "127.0.0.1:5000", server.Addr())

	tests := []struct {
		name           string
		method         string
		path           string
		body           string
		expectedStatus int
		expectedBody   string
	}{
		{"root", http.MethodGet, "/", "", http.StatusOK, ""},
		{"version", http.MethodGet, "/version", "", http.StatusOK, ""},
		{"health degraded without engine", http.MethodGet, "/health", "", http.StatusOK, ""},
		{"metrics", http.MethodGet, "/metrics", "", http.StatusOK, ""},
		{"docs redirect", http.MethodGet, "/docs", "", http.StatusMovedPermanently, ""},
		{"transcripts empty", http.MethodGet, "/api/transcripts", "", http.StatusOK, `[]`},
		{"vocabulary empty", http.MethodGet, "/api/vocabulary", "", http.StatusOK, `[]`},
		{
			"upload without engine", http.MethodPost, "/api/transcripts", "", http.StatusServiceUnavailable,
			`{"error": "Transcription service is unavailable: Model not loaded."}`,
		},
		{
			"lookup unknown word", http.MethodPost, "/api/dictionary_lookup", `{"word": "Xyzzy"}`, http.StatusNotFound,
			`{"error": "Word not found and fallback translation failed."}`,
		},
		{
			"missing transcript", http.MethodGet, "/api/transcripts/1", "", http.StatusNotFound,
			`{"error": "Transcript not found"}`,
		},
		{
			"missing subtitles", http.MethodGet, "/api/transcripts/1/subtitles?format=srt", "", http.StatusNotFound,
			`{"error": "Transcript not found"}`,
		},
		{
			"missing audio", http.MethodGet, "/audio/1_hallo.wav", "", http.StatusNotFound,
			`{"error": "Audio file not found"}`,
		},
		{
			"unknown endpoint", http.MethodGet, "/api/lessons", "", http.StatusNotFound,
			`{"error": "The requested endpoint was not found", "details": {"path": "/api/lessons"}}`,
		},
		{"preflight", http.MethodOptions, "/api/vocabulary", "", http.StatusNoContent, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, bytes.NewBufferString(tt.body))
			if tt.body != "" {
				req.Header.Set("Content-Type", "application/json")
			}
			w := httptest.NewRecorder()
			server.Engine().ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedBody != "" {
				assert.JSONEq(t, tt.expectedBody, w.Body.String())
			}
		})
	}
}

func TestServerInitializeRequiresDependencies(t *testing.T) {
	server := NewServer(config.ServerConfig{Port: 5000})
	defer server.rateLimiter.Stop()
	assert.Error(t, server.Initialize())

	server.SetDependencies(&types.Dependencies{Config: testConfig()})
	assert.Error(t, server.Initialize())
}

func TestServerShutdownBeforeStart(t *testing.T) {
	server := NewServer(config.ServerConfig{Host: "127.0.0.1", Port: 0})
	assert.NoError(t, server.Shutdown(context.Background()))
}
