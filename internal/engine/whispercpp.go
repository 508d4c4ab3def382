package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/killallgit/wortschatz-api/pkg/audio"
)

// WhisperCPPConfig configures the whisper.cpp command line backend
type WhisperCPPConfig struct {
	BinaryPath string
	ModelPath  string
	Threads    int
	TempDir    string // Scratch space for the intermediate WAV; empty means os.TempDir
}

// WhisperCPP runs transcription through the whisper.cpp CLI
type WhisperCPP struct {
	cfg WhisperCPPConfig
}

// NewWhisperCPP creates a whisper.cpp backend
func NewWhisperCPP(cfg WhisperCPPConfig) *WhisperCPP {
	if cfg.BinaryPath == "" {
		cfg.BinaryPath = "whisper-cli"
	}
	return &WhisperCPP{cfg: cfg}
}

// Name implements Engine
func (w *WhisperCPP) Name() string { return "whispercpp" }

// Probe checks that the binary and model can be found
func (w *WhisperCPP) Probe(ctx context.Context) error {
	if _, err := exec.LookPath(w.cfg.BinaryPath); err != nil {
		return fmt.Errorf("whisper binary %s not found: %w", w.cfg.BinaryPath, err)
	}
	info, err := os.Stat(w.cfg.ModelPath)
	if err != nil {
		return fmt.Errorf("whisper model %s: %w", w.cfg.ModelPath, err)
	}
	if info.IsDir() || info.Size() == 0 {
		return fmt.Errorf("whisper model %s is not a model file", w.cfg.ModelPath)
	}
	return nil
}

// Transcribe implements Engine
func (w *WhisperCPP) Transcribe(ctx context.Context, samples audio.Samples, language string) (Result, error) {
	dir, err := os.MkdirTemp(w.cfg.TempDir, "whisper-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch dir: %w", err)
	}
	defer os.RemoveAll(dir)

	wavPath := filepath.Join(dir, "input.wav")
	if err := writeWAVFile(wavPath, samples); err != nil {
		return nil, err
	}

	outBase := filepath.Join(dir, "output")
	cmd := exec.CommandContext(ctx, w.cfg.BinaryPath, w.buildArgs(wavPath, outBase, language)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("whisper-cli failed: %w (stderr: %s)", err, strings.TrimSpace(tail(stderr.String(), 1024)))
	}

	data, err := os.ReadFile(outBase + ".json")
	if err != nil {
		return nil, fmt.Errorf("whisper-cli produced no JSON output: %w", err)
	}
	return parseWhisperCPP(data, language)
}

func (w *WhisperCPP) buildArgs(wavPath, outBase, language string) []string {
	args := []string{
		"-m", w.cfg.ModelPath,
		"-f", wavPath,
		"-ojf",
		"-of", outBase,
		"-np",
	}
	if language != "" {
		args = append(args, "-l", language)
	}
	if w.cfg.Threads > 0 {
		args = append(args, "-t", strconv.Itoa(w.cfg.Threads))
	}
	return args
}

func writeWAVFile(path string, samples audio.Samples) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create wav: %w", err)
	}
	if err := audio.EncodeWAV(f, samples); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

type cppOffsets struct {
	From int64 `json:"from"`
	To   int64 `json:"to"`
}

type cppToken struct {
	Text    string     `json:"text"`
	Offsets cppOffsets `json:"offsets"`
	ID      int32      `json:"id"`
	P       float32    `json:"p"`
}

type cppSegment struct {
	Offsets cppOffsets `json:"offsets"`
	Text    string     `json:"text"`
	Tokens  []cppToken `json:"tokens"`
}

type cppOutput struct {
	Result struct {
		Language string `json:"language"`
	} `json:"result"`
	Transcription []cppSegment `json:"transcription"`
}

// parseWhisperCPP reshapes whisper.cpp full JSON into a Result. Values keep
// the CLI's fixed-width types (int32 token ids, float32 probabilities).
func parseWhisperCPP(data []byte, language string) (Result, error) {
	var out cppOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to parse whisper-cli output: %w", err)
	}

	lang := out.Result.Language
	if lang == "" {
		lang = language
	}

	var text strings.Builder
	segments := make([]any, 0, len(out.Transcription))
	for i, seg := range out.Transcription {
		text.WriteString(seg.Text)

		tokenIDs := make([]int32, 0, len(seg.Tokens))
		for _, tok := range seg.Tokens {
			tokenIDs = append(tokenIDs, tok.ID)
		}

		segments = append(segments, map[string]any{
			"id":     int32(i),
			"start":  msToSeconds(seg.Offsets.From),
			"end":    msToSeconds(seg.Offsets.To),
			"text":   seg.Text,
			"tokens": tokenIDs,
			"words":  mergeTokens(seg.Tokens),
		})
	}

	return Result{
		"text":     text.String(),
		"language": lang,
		"segments": segments,
	}, nil
}

// mergeTokens joins sub-word tokens into words. A token starting with a space
// opens a new word; special tokens like [_BEG_] are skipped.
func mergeTokens(tokens []cppToken) []map[string]any {
	words := []map[string]any{}
	var cur map[string]any
	for _, tok := range tokens {
		if tok.Text == "" || strings.HasPrefix(tok.Text, "[_") {
			continue
		}
		if cur == nil || strings.HasPrefix(tok.Text, " ") {
			cur = map[string]any{
				"word":        tok.Text,
				"start":       msToSeconds(tok.Offsets.From),
				"end":         msToSeconds(tok.Offsets.To),
				"probability": tok.P,
			}
			words = append(words, cur)
			continue
		}
		cur["word"] = cur["word"].(string) + tok.Text
		cur["end"] = msToSeconds(tok.Offsets.To)
		if p := cur["probability"].(float32); tok.P < p {
			cur["probability"] = tok.P
		}
	}
	return words
}

func msToSeconds(ms int64) float32 {
	return float32(ms) / 1000
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
