package dictionary

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const maxBodySize = 2 << 20

// Config holds configuration for the upstream clients
type Config struct {
	// BaseURL of the dictionary API. Default: https://api.dictionaryapi.dev
	BaseURL string
	// TranslateURL of the fallback translator. Default: https://translate.googleapis.com
	TranslateURL string
	SourceLang   string // Default: de
	TargetLang   string // Default: en

	Timeout      time.Duration // Default: 5s
	MaxRetries   int           // Default: 2
	RetryBackoff time.Duration // Default: 250ms

	// RequestsPerSecond shared by both upstreams. Default: 5
	RequestsPerSecond int
	UserAgent         string
}

func (cfg *Config) applyDefaults() {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.dictionaryapi.dev"
	}
	if cfg.TranslateURL == "" {
		cfg.TranslateURL = "https://translate.googleapis.com"
	}
	if cfg.SourceLang == "" {
		cfg.SourceLang = "de"
	}
	if cfg.TargetLang == "" {
		cfg.TargetLang = "en"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 2
	}
	if cfg.RetryBackoff == 0 {
		cfg.RetryBackoff = 250 * time.Millisecond
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 5
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "WortschatzAPI/1.0"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	cfg.TranslateURL = strings.TrimRight(cfg.TranslateURL, "/")
}

// Client performs rate limited GET requests with retries
type Client struct {
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	config      Config
}

// NewClient creates a new upstream client
func NewClient(cfg Config) *Client {
	cfg.applyDefaults()
	return &Client{
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		rateLimiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.RequestsPerSecond),
		config:      cfg,
	}
}

// Entries fetches the raw dictionary payload for word
func (c *Client) Entries(ctx context.Context, word string) ([]byte, error) {
	u := fmt.Sprintf("%s/api/v2/entries/%s/%s", c.config.BaseURL,
		url.PathEscape(c.config.SourceLang), url.PathEscape(word))
	return c.getWithRetry(ctx, u)
}

// getWithRetry retries 429 and 5xx answers with exponential backoff. The last
// StatusError is returned once attempts run out.
func (c *Client) getWithRetry(ctx context.Context, u string) ([]byte, error) {
	var lastErr error
	backoff := c.config.RetryBackoff

	for attempt := 0; attempt < c.config.MaxRetries; attempt++ {
		body, err := c.get(ctx, u)
		if err == nil {
			return body, nil
		}

		var se *StatusError
		if !errors.As(err, &se) || !se.Temporary() {
			return nil, err
		}
		lastErr = err

		if attempt == c.config.MaxRetries-1 {
			break
		}
		log.Printf("[DEBUG] Retrying %s after status %d (attempt %d)", u, se.StatusCode, attempt+1)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
			backoff *= 2
		}
	}

	return nil, lastErr
}

// get performs a single HTTP request
func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		return nil, &StatusError{URL: u, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return body, nil
}
