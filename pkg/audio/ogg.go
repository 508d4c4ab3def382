package audio

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/jfreymuth/oggvorbis"
)

// decodeVorbis reads Ogg Vorbis natively. Other Ogg codecs (Opus, FLAC,
// Speex) are left to the external decoder.
func decodeVorbis(raw []byte) (*pcmData, error) {
	if !bytes.Contains(raw[:min(len(raw), 64)], []byte("\x01vorbis")) {
		return nil, errNotNative
	}

	decoder, err := oggvorbis.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to create OGG decoder: %w", err)
	}

	channels := decoder.Channels()
	var samples []float32
	buffer := make([]float32, 16384)
	for {
		n, err := decoder.Read(buffer)
		samples = append(samples, buffer[:n]...)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read OGG data: %w", err)
		}
	}

	return &pcmData{
		samples:    samples,
		channels:   channels,
		sampleRate: decoder.SampleRate(),
	}, nil
}
