// Package audio turns uploaded audio of any container into the mono 16 kHz
// float samples the speech recognition engines consume.
package audio

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

// SampleRate is the rate every normalized buffer is delivered at
const SampleRate = 16000

// Samples holds mono PCM at SampleRate, each value in [-1, 1]
type Samples []float32

// Duration reports the playback length of s
func (s Samples) Duration() time.Duration {
	return time.Duration(len(s)) * time.Second / SampleRate
}

// ErrUnsupportedFormat is returned when the upload cannot be decoded as audio.
// Callers should treat it as a client error.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// DecodeError describes why a container could not be decoded. It matches
// ErrUnsupportedFormat with errors.Is.
type DecodeError struct {
	MIME string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("cannot decode %s: %v", e.MIME, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Is reports whether target is ErrUnsupportedFormat
func (e *DecodeError) Is(target error) bool {
	return target == ErrUnsupportedFormat
}

// ExternalDecoder decodes containers without a native Go decoder into signed
// 16-bit mono PCM. Input it cannot decode must be reported with an error
// wrapping invalid, which the Normalizer passes in to tell it apart from
// infrastructure failures.
type ExternalDecoder interface {
	DecodePCM16(ctx context.Context, data []byte, name string, sampleRate int) ([]int16, error)
}

// Normalizer converts raw uploads into Samples
type Normalizer struct {
	external ExternalDecoder
	invalid  error
}

// NewNormalizer creates a Normalizer. external may be nil, in which case only
// WAV and Ogg Vorbis are accepted; invalid is the sentinel external wraps for
// undecodable input.
func NewNormalizer(external ExternalDecoder, invalid error) *Normalizer {
	return &Normalizer{external: external, invalid: invalid}
}

// Normalize decodes raw into mono samples at SampleRate. declaredFilename is
// only a hint; the container is sniffed from the bytes.
func (n *Normalizer) Normalize(ctx context.Context, raw []byte, declaredFilename string) (Samples, error) {
	if len(raw) == 0 {
		return nil, &DecodeError{MIME: "empty", Err: errors.New("no data")}
	}

	mtype := mimetype.Detect(raw)
	log.Printf("[DEBUG] Normalizing %s (%d bytes, detected %s, declared %s)",
		declaredFilename, len(raw), mtype.String(), strings.ToLower(filepath.Ext(declaredFilename)))

	var (
		pcm  *pcmData
		err  error
		kind = mtype.String()
	)

	switch {
	case mtype.Is("audio/wav"):
		pcm, err = decodeWAV(raw)
	case mtype.Is("audio/ogg"):
		pcm, err = decodeVorbis(raw)
	case isDecodable(mtype):
		err = errNotNative
	default:
		return nil, &DecodeError{MIME: kind, Err: errors.New("not an audio container")}
	}

	if errors.Is(err, errNotNative) {
		return n.decodeExternal(ctx, raw, declaredFilename, kind)
	}
	if err != nil {
		return nil, &DecodeError{MIME: kind, Err: err}
	}

	samples := pcm.normalize()
	if len(samples) == 0 {
		return nil, &DecodeError{MIME: kind, Err: errors.New("no audio frames decoded")}
	}
	return samples, nil
}

func (n *Normalizer) decodeExternal(ctx context.Context, raw []byte, name, kind string) (Samples, error) {
	if n.external == nil {
		return nil, &DecodeError{MIME: kind, Err: errors.New("no decoder available for container")}
	}

	pcm, err := n.external.DecodePCM16(ctx, raw, name, SampleRate)
	if err != nil {
		if n.invalid != nil && errors.Is(err, n.invalid) {
			return nil, &DecodeError{MIME: kind, Err: err}
		}
		return nil, fmt.Errorf("external decode of %s: %w", kind, err)
	}

	samples := make(Samples, len(pcm))
	for i, v := range pcm {
		samples[i] = float32(v) / 32768
	}
	if len(samples) == 0 {
		return nil, &DecodeError{MIME: kind, Err: errors.New("no audio frames decoded")}
	}
	return samples, nil
}

// isDecodable accepts anything that plausibly carries an audio stream
func isDecodable(m *mimetype.MIME) bool {
	for p := m; p != nil; p = p.Parent() {
		s := p.String()
		if strings.HasPrefix(s, "audio/") || strings.HasPrefix(s, "video/") || s == "application/ogg" {
			return true
		}
	}
	// Binary mimetype could not classify, e.g. raw ADTS or AMR frames
	return m.String() == "application/octet-stream"
}
