package audio

import "errors"

// errNotNative means the container is recognized but its codec needs the
// external decoder
var errNotNative = errors.New("codec has no native decoder")

// pcmData is interleaved float PCM as decoded, before down-mix and resample
type pcmData struct {
	samples    []float32
	channels   int
	sampleRate int
}

// normalize down-mixes, resamples to SampleRate and clamps to [-1, 1]
func (p *pcmData) normalize() Samples {
	if p == nil || p.channels <= 0 || p.sampleRate <= 0 {
		return nil
	}
	mono := downmix(p.samples, p.channels)
	out := resample(mono, p.sampleRate, SampleRate)
	for i, v := range out {
		out[i] = clamp(v)
	}
	return out
}

// downmix averages each frame's channels; a trailing partial frame is dropped
func downmix(interleaved []float32, channels int) []float32 {
	if channels == 1 {
		out := make([]float32, len(interleaved))
		copy(out, interleaved)
		return out
	}
	frames := len(interleaved) / channels
	out := make([]float32, frames)
	for f := 0; f < frames; f++ {
		var sum float32
		base := f * channels
		for c := 0; c < channels; c++ {
			sum += interleaved[base+c]
		}
		out[f] = sum / float32(channels)
	}
	return out
}

// resample converts between rates by linear interpolation
func resample(in []float32, from, to int) []float32 {
	if from == to || len(in) == 0 {
		return in
	}
	outLen := int(int64(len(in)) * int64(to) / int64(from))
	if outLen == 0 {
		outLen = 1
	}
	out := make([]float32, outLen)
	step := float64(from) / float64(to)
	last := len(in) - 1
	for i := range out {
		pos := float64(i) * step
		idx := int(pos)
		if idx >= last {
			out[i] = in[last]
			continue
		}
		frac := float32(pos - float64(idx))
		out[i] = in[idx] + (in[idx+1]-in[idx])*frac
	}
	return out
}

func clamp(v float32) float32 {
	switch {
	case v > 1:
		return 1
	case v < -1:
		return -1
	default:
		return v
	}
}
