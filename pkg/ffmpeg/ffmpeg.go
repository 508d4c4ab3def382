package ffmpeg

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// maxStderr caps how much ffmpeg diagnostic output is kept on failure
const maxStderr = 2048

// FFmpeg wraps the ffmpeg binary for decoding containers Go cannot read natively
type FFmpeg struct {
	ffmpegPath string
	timeout    time.Duration
}

// New creates a new FFmpeg instance
func New(ffmpegPath string, timeout time.Duration) *FFmpeg {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &FFmpeg{
		ffmpegPath: ffmpegPath,
		timeout:    timeout,
	}
}

// ValidateBinary checks if ffmpeg is available
func (f *FFmpeg) ValidateBinary() error {
	if _, err := exec.LookPath(f.ffmpegPath); err != nil {
		return fmt.Errorf("%w: %s", ErrFFmpegNotFound, f.ffmpegPath)
	}
	return nil
}

// DecodePCM16 pipes data through ffmpeg and returns signed 16-bit mono samples
// at sampleRate. name is only used for error context.
//
// Input ffmpeg cannot demux or decode is reported as ErrInvalidAudioFile.
func (f *FFmpeg) DecodePCM16(ctx context.Context, data []byte, name string, sampleRate int) ([]int16, error) {
	if err := f.ValidateBinary(); err != nil {
		return nil, err
	}

	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	args := []string{
		"-hide_banner",
		"-loglevel", "error",
		"-i", "pipe:0",
		"-vn",         // Ignore cover art and video streams
		"-f", "s16le", // Signed 16-bit little-endian
		"-acodec", "pcm_s16le",
		"-ac", "1", // Convert to mono
		"-ar", strconv.Itoa(sampleRate),
		"pipe:1",
	}

	cmd := exec.CommandContext(ctx, f.ffmpegPath, args...)
	cmd.Stdin = bytes.NewReader(data)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			if errors.Is(ctxErr, context.DeadlineExceeded) {
				return nil, NewProcessingError("pcm_decode", name, ErrProcessingTimeout, "")
			}
			return nil, ctxErr
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, NewProcessingError("pcm_decode", name,
				fmt.Errorf("%w: %v", ErrInvalidAudioFile, err), trimStderr(stderr.String()))
		}
		return nil, NewProcessingError("pcm_decode", name, err, trimStderr(stderr.String()))
	}

	samples := bytesToInt16(stdout.Bytes())
	if len(samples) == 0 {
		return nil, NewProcessingError("pcm_decode", name,
			fmt.Errorf("%w: no audio frames decoded", ErrInvalidAudioFile), trimStderr(stderr.String()))
	}
	return samples, nil
}

// bytesToInt16 converts little-endian byte pairs to int16 samples; a trailing
// odd byte is dropped
func bytesToInt16(b []byte) []int16 {
	out := make([]int16, len(b)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(b[2*i:]))
	}
	return out
}

func trimStderr(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > maxStderr {
		return s[:maxStderr] + "..."
	}
	return s
}
