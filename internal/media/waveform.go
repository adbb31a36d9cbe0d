package media

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/clipforge/clipforge/internal/taskpool"
)

// Waveform handler errors.
var (
	ErrNoSamples      = errors.New("waveform request contains no samples")
	ErrBadBucketCount = errors.New("waveform bucket count must be positive")
)

// WaveformRequest asks for min/max peak extraction over decoded PCM samples,
// reduced to a fixed number of buckets for timeline rendering.
type WaveformRequest struct {
	// Samples are interleaved PCM samples normalized to [-1, 1].
	Samples []float64 `json:"samples"`

	// Channels is the interleave factor. Zero or one means mono.
	Channels int `json:"channels"`

	// Buckets is the number of peak pairs to produce, typically the pixel
	// width of the waveform view.
	Buckets int `json:"buckets"`
}

// Peak is the extrema of one waveform bucket.
type Peak struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// WaveformResult carries the reduced waveform.
type WaveformResult struct {
	Peaks []Peak `json:"peaks"`
}

// WaveformHandler reduces PCM samples to per-bucket peaks. Interleaved
// channels are mixed down before reduction. Progress is reported roughly
// once per percent of buckets processed.
func WaveformHandler(ctx context.Context, payload any, progress taskpool.ProgressFunc) (any, error) {
	req, ok := payload.(WaveformRequest)
	if !ok {
		return nil, fmt.Errorf("waveform handler: unexpected payload type %T", payload)
	}
	if len(req.Samples) == 0 {
		return nil, ErrNoSamples
	}
	if req.Buckets <= 0 {
		return nil, ErrBadBucketCount
	}

	channels := req.Channels
	if channels < 1 {
		channels = 1
	}
	if len(req.Samples)%channels != 0 {
		return nil, fmt.Errorf("sample count %d is not a multiple of channel count %d",
			len(req.Samples), channels)
	}

	mono := mixdown(req.Samples, channels)

	buckets := req.Buckets
	if buckets > len(mono) {
		buckets = len(mono)
	}

	peaks := make([]Peak, buckets)
	reportEvery := buckets / 100
	if reportEvery == 0 {
		reportEvery = 1
	}

	for b := 0; b < buckets; b++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		start := b * len(mono) / buckets
		end := (b + 1) * len(mono) / buckets

		peak := Peak{Min: math.Inf(1), Max: math.Inf(-1)}
		for _, s := range mono[start:end] {
			if s < peak.Min {
				peak.Min = s
			}
			if s > peak.Max {
				peak.Max = s
			}
		}
		peaks[b] = peak

		if b%reportEvery == 0 {
			progress("extracting peaks", float64(b)/float64(buckets))
		}
	}

	progress("extracting peaks", 1)
	return WaveformResult{Peaks: peaks}, nil
}

// mixdown averages interleaved channels into a mono signal.
func mixdown(samples []float64, channels int) []float64 {
	if channels == 1 {
		return samples
	}

	frames := len(samples) / channels
	mono := make([]float64, frames)
	for f := 0; f < frames; f++ {
		var sum float64
		for c := 0; c < channels; c++ {
			sum += samples[f*channels+c]
		}
		mono[f] = sum / float64(channels)
	}
	return mono
}
