package subtitles

import (
	"errors"
	"strings"
	"testing"
	"time"
)

const transcriptJSON = `{
	"text": "Guten Morgen. Wie geht es dir?",
	"language": "de",
	"segments": [
		{"id": 0, "start": 0, "end": 1.5, "text": " Guten Morgen."},
		{"id": 1, "start": 1.5, "end": 3725.25, "text": " Wie geht es dir?"},
		{"id": 2, "start": 3725.25, "end": 3726, "text": "  "}
	]
}`

func TestFromTranscript(t *testing.T) {
	cues, err := FromTranscript([]byte(transcriptJSON))
	if err != nil {
		t.Fatalf("FromTranscript() error = %v", err)
	}

	if len(cues) != 2 {
		t.Fatalf("Expected 2 cues, got %d", len(cues))
	}
	if cues[0].Text != "Guten Morgen." {
		t.Errorf("First cue text mismatch: %q", cues[0].Text)
	}
	if cues[1].End != time.Hour+2*time.Minute+5*time.Second+250*time.Millisecond {
		t.Errorf("Second cue end mismatch: %v", cues[1].End)
	}
}

func TestFromTranscriptEdgeCases(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		wantErr  bool
		wantCues []Cue
	}{
		{"empty tree", `{}`, false, []Cue{}},
		{"text without segments", `{"text": " Hallo "}`, false, []Cue{{Text: "Hallo"}}},
		{"end before start", `{"segments": [{"start": 2, "end": 1, "text": "x"}]}`, false, []Cue{{Start: 2 * time.Second, End: 2 * time.Second, Text: "x"}}},
		{"negative start", `{"segments": [{"start": -1, "end": 0.5, "text": "x"}]}`, false, []Cue{{End: 500 * time.Millisecond, Text: "x"}}},
		{"invalid json", `{`, true, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cues, err := FromTranscript([]byte(tt.data))
			if (err != nil) != tt.wantErr {
				t.Fatalf("FromTranscript() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if len(cues) != len(tt.wantCues) {
				t.Fatalf("Expected %d cues, got %d", len(tt.wantCues), len(cues))
			}
			for i := range cues {
				if cues[i] != tt.wantCues[i] {
					t.Errorf("Cue %d = %+v, want %+v", i, cues[i], tt.wantCues[i])
				}
			}
		})
	}
}

func TestRender(t *testing.T) {
	cues := []Cue{
		{Start: 0, End: 1500 * time.Millisecond, Text: "Guten Morgen."},
		{Start: 1500 * time.Millisecond, End: time.Hour + 2*time.Minute + 5*time.Second + 250*time.Millisecond, Text: "Wie geht es dir?"},
	}

	tests := []struct {
		format Format
		want   string
	}{
		{
			FormatVTT,
			"WEBVTT\n\n00:00:00.000 --> 00:00:01.500\nGuten Morgen.\n\n00:00:01.500 --> 01:02:05.250\nWie geht es dir?\n",
		},
		{
			FormatSRT,
			"1\n00:00:00,000 --> 00:00:01,500\nGuten Morgen.\n\n2\n00:00:01,500 --> 01:02:05,250\nWie geht es dir?\n",
		},
		{
			FormatText,
			"Guten Morgen.\nWie geht es dir?\n",
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			var b strings.Builder
			if err := Render(&b, cues, tt.format); err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			if b.String() != tt.want {
				t.Errorf("Render() = %q, want %q", b.String(), tt.want)
			}
		})
	}

	var b strings.Builder
	if err := Render(&b, cues, Format("ass")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestRenderEmptyVTT(t *testing.T) {
	var b strings.Builder
	if err := Render(&b, nil, FormatVTT); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if b.String() != "WEBVTT\n" {
		t.Errorf("Render() = %q", b.String())
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{"", FormatVTT, false},
		{"vtt", FormatVTT, false},
		{"SRT", FormatSRT, false},
		{" text ", FormatText, false},
		{"json", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatMetadata(t *testing.T) {
	if FormatText.Extension() != "txt" || FormatSRT.Extension() != "srt" {
		t.Errorf("Unexpected extensions: %s %s", FormatText.Extension(), FormatSRT.Extension())
	}
	if !strings.HasPrefix(FormatVTT.ContentType(), "text/vtt") {
		t.Errorf("Unexpected VTT content type: %s", FormatVTT.ContentType())
	}
}
