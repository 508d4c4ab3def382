// Package subtitles renders stored transcripts as WebVTT, SubRip or plain text
package subtitles

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

// Format is an export format
type Format string

const (
	FormatVTT  Format = "vtt"
	FormatSRT  Format = "srt"
	FormatText Format = "text"
)

// ErrUnsupportedFormat is returned for any format other than vtt, srt or text
var ErrUnsupportedFormat = errors.New("unsupported subtitle format")

// Cue is one timed line of text
type Cue struct {
	Start time.Duration
	End   time.Duration
	Text  string
}

// ParseFormat accepts a format name case-insensitively. Empty means vtt.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case "":
		return FormatVTT, nil
	case FormatVTT, FormatSRT, FormatText:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
}

// ContentType is the media type served for f
func (f Format) ContentType() string {
	switch f {
	case FormatVTT:
		return "text/vtt; charset=utf-8"
	case FormatSRT:
		return "application/x-subrip; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}

// Extension is the file extension for f, without the dot
func (f Format) Extension() string {
	if f == FormatText {
		return "txt"
	}
	return string(f)
}

type segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// FromTranscript extracts cues from a transcript tree's segments. Segments
// without text are skipped; an end before the start is clamped to the start.
// A tree with text but no segments yields a single untimed cue.
func FromTranscript(data []byte) ([]Cue, error) {
	var tree struct {
		Text     string    `json:"text"`
		Segments []segment `json:"segments"`
	}
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("failed to parse transcript: %w", err)
	}

	cues := make([]Cue, 0, len(tree.Segments))
	for _, seg := range tree.Segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		start := seconds(seg.Start)
		end := seconds(seg.End)
		if end < start {
			end = start
		}
		cues = append(cues, Cue{Start: start, End: end, Text: text})
	}

	if len(cues) == 0 && len(tree.Segments) == 0 {
		if text := strings.TrimSpace(tree.Text); text != "" {
			cues = append(cues, Cue{Text: text})
		}
	}
	return cues, nil
}

func seconds(s float64) time.Duration {
	if s <= 0 {
		return 0
	}
	return time.Duration(s * float64(time.Second)).Round(time.Millisecond)
}

// Render writes cues to w in format f
func Render(w io.Writer, cues []Cue, f Format) error {
	var b strings.Builder

	switch f {
	case FormatVTT:
		b.WriteString("WEBVTT\n")
		for _, cue := range cues {
			fmt.Fprintf(&b, "\n%s --> %s\n%s\n", timestamp(cue.Start, '.'), timestamp(cue.End, '.'), cue.Text)
		}
	case FormatSRT:
		for i, cue := range cues {
			if i > 0 {
				b.WriteString("\n")
			}
			fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n", i+1, timestamp(cue.Start, ','), timestamp(cue.End, ','), cue.Text)
		}
	case FormatText:
		for _, cue := range cues {
			b.WriteString(cue.Text)
			b.WriteString("\n")
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// timestamp formats d as HH:MM:SS.mmm, with sep before the milliseconds
func timestamp(d time.Duration, sep byte) string {
	ms := d.Milliseconds()
	h := ms / 3_600_000
	m := ms / 60_000 % 60
	s := ms / 1000 % 60
	return fmt.Sprintf("%02d:%02d:%02d%c%03d", h, m, s, sep, ms%1000)
}
