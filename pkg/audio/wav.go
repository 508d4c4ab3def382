package audio

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const wavFormatPCM = 1

// decodeWAV reads integer PCM WAV natively. Float and compressed WAV codecs
// are handed to the external decoder.
func decodeWAV(raw []byte) (*pcmData, error) {
	decoder := wav.NewDecoder(bytes.NewReader(raw))
	if !decoder.IsValidFile() {
		return nil, errors.New("invalid WAV header")
	}
	if decoder.WavAudioFormat != wavFormatPCM {
		return nil, errNotNative
	}

	format := decoder.Format()
	bitDepth := int(decoder.BitDepth)
	if format == nil || format.NumChannels <= 0 || format.SampleRate <= 0 {
		return nil, errors.New("WAV header has no channel or rate information")
	}
	switch bitDepth {
	case 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("unsupported WAV bit depth %d", bitDepth)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read PCM buffer: %w", err)
	}
	if buf == nil || len(buf.Data) == 0 {
		return nil, errors.New("WAV file has no samples")
	}

	return &pcmData{
		samples:    intToFloat(buf, bitDepth),
		channels:   format.NumChannels,
		sampleRate: format.SampleRate,
	}, nil
}

// intToFloat scales integer samples by 2^(bits-1). 8-bit WAV is unsigned
// and centered on 128.
func intToFloat(buf *goaudio.IntBuffer, bitDepth int) []float32 {
	out := make([]float32, len(buf.Data))
	if bitDepth == 8 {
		for i, v := range buf.Data {
			out[i] = float32(v-128) / 128
		}
		return out
	}
	scale := float32(int64(1) << (bitDepth - 1))
	for i, v := range buf.Data {
		out[i] = float32(v) / scale
	}
	return out
}

// EncodeWAV renders samples as a 16-bit mono WAV at SampleRate into w
func EncodeWAV(w io.WriteSeeker, samples Samples) error {
	encoder := wav.NewEncoder(w, SampleRate, 16, 1, wavFormatPCM)

	data := make([]int, len(samples))
	for i, v := range samples {
		data[i] = int(clamp(v) * 32767)
	}
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: SampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}

	if err := encoder.Write(buf); err != nil {
		return fmt.Errorf("encoder write buffer: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("encoder close: %w", err)
	}
	return nil
}
