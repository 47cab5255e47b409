package util

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFrameRate(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"25/1", 25},
		{"30000/1001", 29.97002997002997},
		{"24", 24},
		{" 60/1 ", 60},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFrameRate(tt.in)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestParseFrameRateInvalid(t *testing.T) {
	for _, in := range []string{"", "0/0", "25/0", "0/1", "-25", "abc", "1/2/3", "x/1"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseFrameRate(in)
			assert.Error(t, err)
		})
	}
}

func TestFormatSeconds(t *testing.T) {
	assert.Equal(t, "00:00:09.500", FormatSeconds(9.5))
	assert.Equal(t, "01:02:05.250", FormatSeconds(3725.25))
	assert.Equal(t, "00:00:00.000", FormatDuration(0))
	assert.Equal(t, 1500*time.Millisecond, Seconds(1.5))
}

func TestFormatFloat(t *testing.T) {
	assert.Equal(t, "9.5", FormatFloat(9.5))
	assert.Equal(t, "0.0000001", FormatFloat(1e-7))
	assert.Equal(t, "12", FormatFloat(12))
}

func TestOutputPath(t *testing.T) {
	suffix := " - Lightning Trimmed.mp4"
	assert.Equal(t, filepath.Join("videos", "storm - Lightning Trimmed.mp4"),
		OutputPath(filepath.Join("videos", "storm.mov"), suffix))
	assert.Equal(t, "storm.2024 - Lightning Trimmed.mp4", OutputPath("storm.2024.mp4", suffix))
	assert.Equal(t, "clip - Lightning Trimmed.mp4", OutputPath("clip", suffix))
}

func TestFileHelpers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.mp4")

	assert.False(t, FileExists(path))
	assert.False(t, FileExists(dir), "directories are not files")
	assert.Zero(t, FileSize(path))
	require.NoError(t, RemoveIfExists(path))

	require.NoError(t, os.WriteFile(path, []byte("data"), 0o644))
	assert.True(t, FileExists(path))
	assert.Equal(t, int64(4), FileSize(path))

	require.NoError(t, RemoveIfExists(path))
	assert.False(t, FileExists(path))
}
