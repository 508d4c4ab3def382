package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/killallgit/wortschatz-api/pkg/audio"
	"github.com/orcaman/writerseeker"
)

// RemoteConfig configures an OpenAI compatible transcription server, such as
// faster-whisper-server or a whisper.cpp server build
type RemoteConfig struct {
	BaseURL    string
	APIKey     string
	Model      string
	HealthPath string
	Timeout    time.Duration
}

// Remote posts audio to a transcription server
type Remote struct {
	cfg    RemoteConfig
	client *http.Client
}

// NewRemote creates a remote backend
func NewRemote(cfg RemoteConfig) *Remote {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Minute
	}
	return &Remote{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// Name implements Engine
func (r *Remote) Name() string { return "remote" }

// Probe checks the server's health endpoint
func (r *Remote) Probe(ctx context.Context) error {
	if r.cfg.BaseURL == "" {
		return fmt.Errorf("no transcription server URL configured")
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.cfg.BaseURL+r.cfg.HealthPath, nil)
	if err != nil {
		return err
	}
	r.authorize(req)

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("transcription server unreachable: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("transcription server health check returned %d", resp.StatusCode)
	}
	return nil
}

// Transcribe implements Engine
func (r *Remote) Transcribe(ctx context.Context, samples audio.Samples, language string) (Result, error) {
	wavFile := &writerseeker.WriterSeeker{}
	if err := audio.EncodeWAV(wavFile, samples); err != nil {
		return nil, err
	}

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	part, err := mw.CreateFormFile("file", "audio.wav")
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, wavFile.Reader()); err != nil {
		return nil, fmt.Errorf("reading wav into request: %w", err)
	}

	fields := [][2]string{
		{"model", r.cfg.Model},
		{"response_format", "verbose_json"},
		{"timestamp_granularities[]", "segment"},
		{"timestamp_granularities[]", "word"},
	}
	if language != "" {
		fields = append(fields, [2]string{"language", language})
	}
	for _, f := range fields {
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.BaseURL+"/v1/audio/transcriptions", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	r.authorize(req)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transcription request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("transcription server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	// Numbers stay json.Number until the result is sanitized
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	var result Result
	if err := dec.Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode transcription response: %w", err)
	}
	if _, ok := result["text"]; !ok {
		return nil, fmt.Errorf("transcription response has no text")
	}
	return result, nil
}

func (r *Remote) authorize(req *http.Request) {
	if r.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.cfg.APIKey)
	}
}
