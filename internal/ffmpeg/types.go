package ffmpeg

import (
	"io"
	"time"
)

// VideoInfo contains metadata about a video file
type VideoInfo struct {
	FilePath   string
	Duration   time.Duration
	Size       int64
	Width      int
	Height     int
	FrameRate  string // rational as reported by ffprobe, e.g. "30000/1001"
	FPS        float64
	VideoCodec string
	HasAudio   bool
	AudioCodec string
}

// Progress represents ffmpeg progress data
type Progress struct {
	Frame      int
	FPS        float64
	Bitrate    string
	OutTime    time.Duration
	Speed      string
	Percentage float64
}

// ProgressFunc is a callback for progress updates during ffmpeg operations.
// Called once per -progress block while the operation executes.
type ProgressFunc func(*Progress)

// RunOptions configures ffmpeg execution
type RunOptions struct {
	Args []string

	// ProgressHandler enables -progress reporting on stderr.
	ProgressHandler ProgressFunc
	// Duration of the expected output, used to fill Progress.Percentage.
	Duration time.Duration

	// LogHandler receives every stderr line that is not a progress key.
	LogHandler func(line string)

	// StderrConsumer takes over stderr as a raw stream. When set,
	// ProgressHandler and LogHandler are not called for stderr. Whatever the
	// consumer leaves unread is drained so the child never blocks.
	StderrConsumer func(r io.Reader) error
}

// Default encoding settings
const (
	DefaultAudioCodec   = "aac"
	DefaultAudioBitrate = "192k"

	// diagnosticLines is how much stderr is kept for error reports
	diagnosticLines = 40
)
