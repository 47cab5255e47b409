package pipeline

import (
	"context"
	"io"
	"time"

	"github.com/keagan/lightningtrim/internal/config"
	"github.com/keagan/lightningtrim/internal/detect"
	"github.com/keagan/lightningtrim/internal/ffmpeg"
)

// Prober resolves stream metadata, most importantly the frame rate
type Prober interface {
	ProbeVideo(ctx context.Context, path string) (*ffmpeg.VideoInfo, error)
}

// Analyzer streams per-frame brightness output to consume
type Analyzer interface {
	AnalyzeBrightness(ctx context.Context, input string, consume func(io.Reader) error) error
}

// Renderer encodes the kept segments into one file
type Renderer interface {
	RenderSegments(ctx context.Context, req ffmpeg.RenderRequest) error
}

// Outcome is how a successful run ended
type Outcome int

const (
	// OutcomeNoEvents means no frame crossed the threshold. Nothing is rendered.
	OutcomeNoEvents Outcome = iota + 1
	// OutcomeDetected means segments were computed and rendering was skipped.
	OutcomeDetected
	// OutcomeRendered means the trimmed output was written.
	OutcomeRendered
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNoEvents:
		return "no_events_found"
	case OutcomeDetected:
		return "segments_built"
	case OutcomeRendered:
		return "render_succeeded"
	default:
		return "unknown"
	}
}

// Options configures a pipeline
type Options struct {
	Detection    config.DetectionConfig
	OutputSuffix string
	// OutputPath overrides the name derived from the input.
	OutputPath string
}

// Result summarizes one run
type Result struct {
	RunID        string
	Input        string
	Output       string
	Outcome      Outcome
	FrameRate    float64
	Samples      int
	BrightFrames int
	Events       []detect.Event
	Segments     []detect.Segment
	States       []State
	Elapsed      time.Duration
}

// KeptSeconds is the total length of all segments
func (r *Result) KeptSeconds() float64 {
	return detect.TotalDuration(r.Segments)
}
