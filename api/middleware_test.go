package api

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		origins        []string
		method         string
		origin         string
		expectedStatus int
		expectedOrigin string
	}{
		{"preflight any origin", []string{"*"}, http.MethodOptions, "https://example.com", http.StatusNoContent, "*"},
		{"get any origin", []string{"*"}, http.MethodGet, "https://example.com", http.StatusOK, "*"},
		{"no origins configured", nil, http.MethodGet, "https://example.com", http.StatusOK, "*"},
		{"listed origin echoed", []string{"http://localhost:3000/"}, http.MethodGet, "http://localhost:3000", http.StatusOK, "http://localhost:3000"},
		{"unlisted origin", []string{"http://localhost:3000"}, http.MethodGet, "https://evil.example", http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(CORS(tt.origins))
			router.Any("/test", func(c *gin.Context) {
				c.JSON(http.StatusOK, gin.H{"message": "success"})
			})

			req := httptest.NewRequest(tt.method, "/test", nil)
			req.Header.Set("Origin", tt.origin)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedOrigin, w.Header().Get("Access-Control-Allow-Origin"))
			assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Range")
		})
	}
}

func TestRequestSizeLimitWithSize(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name        string
		method      string
		bodySize    int
		expectLimit bool
	}{
		{"post under limit", http.MethodPost, 512, false},
		{"post at limit", http.MethodPost, 1024, false},
		{"post over limit", http.MethodPost, 1025, true},
		{"delete is not limited", http.MethodDelete, 4096, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(RequestSizeLimitWithSize(1024))
			router.Handle(tt.method, "/test", func(c *gin.Context) {
				_, err := io.ReadAll(c.Request.Body)
				var maxErr *http.MaxBytesError
				if errors.As(err, &maxErr) {
					c.Status(http.StatusRequestEntityTooLarge)
					return
				}
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(tt.method, "/test", strings.NewReader(strings.Repeat("a", tt.bodySize)))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if tt.expectLimit {
				assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
			} else {
				assert.Equal(t, http.StatusOK, w.Code)
			}
		})
	}
}

func newLimitedRouter(rl *RateLimiter, rps int) *gin.Engine {
	router := gin.New()
	router.GET("/a", rl.Limit("a", rps), func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/b", rl.Limit("b", rps), func(c *gin.Context) { c.Status(http.StatusOK) })
	return router
}

func hit(router *gin.Engine, path, remoteAddr string) int {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimiter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := NewRateLimiter()
	defer rl.Stop()
	router := newLimitedRouter(rl, 1)

	// burst is twice the rate
	assert.Equal(t, http.StatusOK, hit(router, "/a", "10.0.0.1:1000"))
	assert.Equal(t, http.StatusOK, hit(router, "/a", "10.0.0.1:1001"))
	assert.Equal(t, http.StatusTooManyRequests, hit(router, "/a", "10.0.0.1:1002"))

	// other clients and other endpoints have their own buckets
	assert.Equal(t, http.StatusOK, hit(router, "/a", "10.0.0.2:1000"))
	assert.Equal(t, http.StatusOK, hit(router, "/b", "10.0.0.1:1003"))
}

func TestRateLimiter_Disabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := NewRateLimiter()
	defer rl.Stop()
	router := newLimitedRouter(rl, 0)

	for i := 0; i < 20; i++ {
		assert.Equal(t, http.StatusOK, hit(router, "/a", "10.0.0.1:1000"))
	}
}

func TestRateLimiter_Sweep(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := NewRateLimiter()
	defer rl.Stop()

	now := time.Now()
	rl.now = func() time.Time { return now }
	router := newLimitedRouter(rl, 1)
	hit(router, "/a", "10.0.0.1:1000")
	hit(router, "/b", "10.0.0.1:1000")

	assert.Equal(t, 0, rl.sweep())

	now = now.Add(limiterIdleTimeout + time.Second)
	hit(router, "/b", "10.0.0.1:1000")
	assert.Equal(t, 1, rl.sweep())

	_, ok := rl.limiters.Load("b|10.0.0.1")
	assert.True(t, ok)
}

func TestJSONLogFormatter(t *testing.T) {
	line := jsonLogFormatter(gin.LogFormatterParams{
		TimeStamp:  time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		StatusCode: http.StatusCreated,
		Latency:    1500 * time.Microsecond,
		ClientIP:   "10.0.0.1",
		Method:     http.MethodPost,
		Path:       "/api/transcripts",
		BodySize:   42,
	})

	assert.True(t, strings.HasSuffix(line, "\n"))
	assert.JSONEq(t, `{
		"time": "2024-05-01T12:00:00Z",
		"status": 201,
		"method": "POST",
		"path": "/api/transcripts",
		"client_ip": "10.0.0.1",
		"latency_ms": 1.5,
		"body_size": 42
	}`, line)
}
