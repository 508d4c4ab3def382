package audio

import (
	"context"
	"errors"
	"encoding/binary"
	"io"
	"math"
	"os"
	"testing"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/orcaman/writerseeker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errFakeInvalid = errors.New("fake: invalid input")

type fakeDecoder struct {
	calls   int
	samples []int16
	err     error
}

func (f *fakeDecoder) DecodePCM16(ctx context.Context, data []byte, name string, sampleRate int) ([]int16, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.samples, nil
}

// makeWAV encodes interleaved 16-bit samples into an in-memory WAV file
func makeWAV(t *testing.T, rate, channels int, data []int) []byte {
	t.Helper()
	ws := &writerseeker.WriterSeeker{}
	enc := wav.NewEncoder(ws, rate, 16, channels, 1)
	require.NoError(t, enc.Write(&goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: rate},
		Data:           data,
		SourceBitDepth: 16,
	}))
	require.NoError(t, enc.Close())
	raw, err := io.ReadAll(ws.Reader())
	require.NoError(t, err)
	return raw
}

func TestNormalizeWAV(t *testing.T) {
	tests := []struct {
		name     string
		rate     int
		channels int
		data     []int
		wantLen  int
		check    func(t *testing.T, s Samples)
	}{
		{
			name:     "mono 16k passes through scaled",
			rate:     16000,
			channels: 1,
			data:     []int{0, 16384, -16384, -32768, 32767},
			wantLen:  5,
			check: func(t *testing.T, s Samples) {
				assert.InDelta(t, 0.0, s[0], 1e-6)
				assert.InDelta(t, 0.5, s[1], 1e-6)
				assert.InDelta(t, -0.5, s[2], 1e-6)
				assert.InDelta(t, -1.0, s[3], 1e-6)
				assert.InDelta(t, 32767.0/32768.0, s[4], 1e-6)
			},
		},
		{
			name:     "stereo is averaged",
			rate:     16000,
			channels: 2,
			data:     []int{16384, 0, -16384, -16384, 32767, -32768},
			wantLen:  3,
			check: func(t *testing.T, s Samples) {
				assert.InDelta(t, 0.25, s[0], 1e-6)
				assert.InDelta(t, -0.5, s[1], 1e-6)
				assert.InDelta(t, 0.0, s[2], 1e-4)
			},
		},
		{
			name:     "8k is upsampled",
			rate:     8000,
			channels: 1,
			data:     make([]int, 8000),
			wantLen:  16000,
		},
		{
			name:     "48k stereo is downsampled",
			rate:     48000,
			channels: 2,
			data:     make([]int, 2*48000*3),
			wantLen:  48000,
		},
	}

	n := NewNormalizer(nil, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := makeWAV(t, tt.rate, tt.channels, tt.data)

			samples, err := n.Normalize(context.Background(), raw, "hallo.wav")
			require.NoError(t, err)
			assert.Len(t, samples, tt.wantLen)
			for _, v := range samples {
				assert.True(t, v >= -1 && v <= 1, "sample %f out of range", v)
			}
			if tt.check != nil {
				tt.check(t, samples)
			}
		})
	}
}

func TestNormalizeThreeSecondWAV(t *testing.T) {
	data := make([]int, 3*SampleRate)
	for i := range data {
		data[i] = int(10000 * math.Sin(2*math.Pi*440*float64(i)/SampleRate))
	}
	raw := makeWAV(t, SampleRate, 1, data)

	samples, err := NewNormalizer(nil, nil).Normalize(context.Background(), raw, "hallo.wav")
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, samples.Duration())
}

func TestNormalizeRejectsNonAudio(t *testing.T) {
	dec := &fakeDecoder{samples: []int16{1}}
	n := NewNormalizer(dec, errFakeInvalid)

	tests := []struct {
		name string
		raw  []byte
	}{
		{"empty", nil},
		{"text renamed to mp3", []byte("Dies ist nur eine Textdatei, keine Audiodatei.\n")},
		{"json", []byte(`{"segments": []}`)},
		{"png", []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01")},
		{"truncated wav", append([]byte("RIFF\x24\x00\x00\x00WAVE"), []byte("junkjunkjunk")...)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := n.Normalize(context.Background(), tt.raw, "fake.mp3")
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrUnsupportedFormat)

			var decErr *DecodeError
			assert.True(t, errors.As(err, &decErr))
		})
	}
	assert.Zero(t, dec.calls, "external decoder must not see non-audio input")
}

func TestNormalizeExternal(t *testing.T) {
	mp3 := append([]byte("ID3\x04\x00\x00\x00\x00\x00\x00"), make([]byte, 64)...)

	t.Run("decoded samples are scaled", func(t *testing.T) {
		dec := &fakeDecoder{samples: []int16{16384, -32768, 0}}
		samples, err := NewNormalizer(dec, errFakeInvalid).Normalize(context.Background(), mp3, "lied.mp3")
		require.NoError(t, err)
		assert.Equal(t, Samples{0.5, -1, 0}, samples)
		assert.Equal(t, 1, dec.calls)
	})

	t.Run("invalid input is unsupported", func(t *testing.T) {
		dec := &fakeDecoder{err: errors.Join(errFakeInvalid, errors.New("moov atom not found"))}
		_, err := NewNormalizer(dec, errFakeInvalid).Normalize(context.Background(), mp3, "lied.mp3")
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})

	t.Run("infrastructure failure is not unsupported", func(t *testing.T) {
		dec := &fakeDecoder{err: errors.New("ffmpeg binary not found")}
		_, err := NewNormalizer(dec, errFakeInvalid).Normalize(context.Background(), mp3, "lied.mp3")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrUnsupportedFormat)
	})

	t.Run("no external decoder", func(t *testing.T) {
		_, err := NewNormalizer(nil, nil).Normalize(context.Background(), mp3, "lied.mp3")
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})

	t.Run("empty decode", func(t *testing.T) {
		dec := &fakeDecoder{samples: []int16{}}
		_, err := NewNormalizer(dec, errFakeInvalid).Normalize(context.Background(), mp3, "lied.mp3")
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})
}

// oggPage wraps payload in a single Ogg page with a zero checksum, enough
// for container sniffing but rejected by a real demuxer
func oggPage(payload []byte) []byte {
	page := []byte("OggS\x00\x02")
	page = binary.LittleEndian.AppendUint64(page, 0)
	page = binary.LittleEndian.AppendUint32(page, 1) // serial
	page = binary.LittleEndian.AppendUint32(page, 0) // sequence
	page = binary.LittleEndian.AppendUint32(page, 0) // checksum
	page = append(page, 1, byte(len(payload)))
	return append(page, payload...)
}

func TestNormalizeOgg(t *testing.T) {
	t.Run("vorbis is decoded natively", func(t *testing.T) {
		raw, err := os.ReadFile("testdata/mono_1s.ogg")
		require.NoError(t, err)
		dec := &fakeDecoder{samples: []int16{1}}

		samples, err := NewNormalizer(dec, errFakeInvalid).Normalize(context.Background(), raw, "hallo.ogg")
		require.NoError(t, err)
		assert.Zero(t, dec.calls)
		assert.InDelta(t, float64(time.Second), float64(samples.Duration()), float64(10*time.Millisecond))

		var peak float32
		for _, v := range samples {
			assert.True(t, v >= -1 && v <= 1, "sample %f out of range", v)
			peak = max(peak, v, -v)
		}
		assert.Greater(t, peak, float32(0.01), "decoded audio is not silent")
	})

	t.Run("opus goes to the external decoder", func(t *testing.T) {
		head := append([]byte("OpusHead\x01\x01\x38\x01\x80\x3e\x00\x00\x00\x00"), make([]byte, 8)...)
		dec := &fakeDecoder{samples: []int16{16384, 0}}

		samples, err := NewNormalizer(dec, errFakeInvalid).Normalize(context.Background(), oggPage(head), "hallo.opus")
		require.NoError(t, err)
		assert.Equal(t, 1, dec.calls)
		assert.Equal(t, Samples{0.5, 0}, samples)
	})

	t.Run("corrupt vorbis is unsupported", func(t *testing.T) {
		ident := append([]byte("\x01vorbis\x00\x00\x00\x00\x01\x44\xac\x00\x00"), make([]byte, 16)...)
		dec := &fakeDecoder{samples: []int16{1}}

		_, err := NewNormalizer(dec, errFakeInvalid).Normalize(context.Background(), oggPage(ident), "hallo.ogg")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
		assert.Zero(t, dec.calls, "broken vorbis is not retried externally")
	})
}

func TestEncodeWAVRoundTrip(t *testing.T) {
	in := Samples{0, 0.25, -0.25, 0.999, -0.999}
	ws := &writerseeker.WriterSeeker{}
	require.NoError(t, EncodeWAV(ws, in))

	raw, err := io.ReadAll(ws.Reader())
	require.NoError(t, err)

	out, err := NewNormalizer(nil, nil).Normalize(context.Background(), raw, "roundtrip.wav")
	require.NoError(t, err)
	require.Len(t, out, len(in))
	for i := range in {
		assert.InDelta(t, in[i], out[i], 1e-3)
	}
}

func TestDownmix(t *testing.T) {
	assert.Equal(t, []float32{0.5, 0}, downmix([]float32{1, 0, 0.5, -0.5}, 2))
	assert.Equal(t, []float32{1}, downmix([]float32{1, 1, 1, 0.5}, 3), "partial frame dropped")
	assert.Equal(t, []float32{0.1, 0.2}, downmix([]float32{0.1, 0.2}, 1))
}

func TestResample(t *testing.T) {
	up := resample([]float32{0, 1}, 8000, 16000)
	assert.Equal(t, []float32{0, 0.5, 1, 1}, up)

	down := resample([]float32{0, 0.5, 1, 0.5}, 32000, 16000)
	assert.Equal(t, []float32{0, 1}, down)

	same := []float32{0.3}
	assert.Equal(t, same, resample(same, 16000, 16000))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, float32(1), clamp(1.2))
	assert.Equal(t, float32(-1), clamp(-3))
	assert.Equal(t, float32(0.5), clamp(0.5))
}
