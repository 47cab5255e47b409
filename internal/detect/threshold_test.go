package detect

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBright(t *testing.T) {
	samples := []Sample{
		{Timestamp: 0.0, Brightness: 10},
		{Timestamp: 0.1, Brightness: 50}, // equal to threshold: excluded
		{Timestamp: 0.2, Brightness: 50.01},
		{Timestamp: 0.3, Brightness: 255},
		{Timestamp: 0.4, Brightness: 49.99},
		{Timestamp: 0.5, Brightness: 80},
	}

	got := slices.Collect(Bright(slices.Values(samples), 50))
	assert.Equal(t, []float64{0.2, 0.3, 0.5}, got)
}

func TestBrightMatchesBruteForce(t *testing.T) {
	samples := make([]Sample, 0, 256)
	for i := 0; i < 256; i++ {
		// deterministic pseudo-noise over the full luma range
		samples = append(samples, Sample{Timestamp: float64(i) / 25, Brightness: float64((i * 37) % 256)})
	}

	for _, threshold := range []float64{0, 50, 127.5, 200, 255} {
		var want []float64
		for _, s := range samples {
			if s.Brightness > threshold {
				want = append(want, s.Timestamp)
			}
		}
		got := slices.Collect(Bright(slices.Values(samples), threshold))
		assert.Equal(t, want, got, "threshold %v", threshold)
	}
}

func TestBrightEmpty(t *testing.T) {
	got := slices.Collect(Bright(slices.Values([]Sample(nil)), 50))
	assert.Empty(t, got)
}
