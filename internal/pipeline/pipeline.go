package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"slices"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/keagan/lightningtrim/internal/config"
	"github.com/keagan/lightningtrim/internal/detect"
	"github.com/keagan/lightningtrim/internal/ffmpeg"
	"github.com/keagan/lightningtrim/pkg/util"
	"github.com/rs/zerolog"
)

// Pipeline runs detection and rendering for one video at a time.
// It keeps no state between runs.
type Pipeline struct {
	logger   zerolog.Logger
	opts     Options
	prober   Prober
	analyzer Analyzer
	renderer Renderer
}

// New creates a pipeline from its collaborators. renderer may be nil when
// only Detect is used.
func New(logger zerolog.Logger, opts Options, prober Prober, analyzer Analyzer, renderer Renderer) *Pipeline {
	return &Pipeline{
		logger:   logger.With().Str("component", "pipeline").Logger(),
		opts:     opts,
		prober:   prober,
		analyzer: analyzer,
		renderer: renderer,
	}
}

// NewFromConfig wires the ffmpeg-backed pipeline for this platform
func NewFromConfig(logger zerolog.Logger, cfg *config.Config) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, &Error{Kind: KindConfiguration, Stage: StageConfig, Err: err}
	}

	exec, err := ffmpeg.New(logger, ffmpeg.Options{
		FFmpegPath:  cfg.FFmpeg.FFmpegPath,
		FFprobePath: cfg.FFmpeg.FFprobePath,
		Threads:     cfg.FFmpeg.Threads,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize ffmpeg: %w", err)
	}

	profile, err := ffmpeg.ProfileFor(runtime.GOOS, cfg.FFmpeg.Profile)
	if err != nil {
		return nil, &Error{Kind: KindConfiguration, Stage: StageConfig, Err: err}
	}

	renderer := ffmpeg.NewRenderer(exec, profile)
	logger.Debug().
		Str("profile", renderer.Profile().Name).
		Strs("video_args", renderer.Profile().VideoArgs).
		Msg("encoder profile selected")

	opts := Options{
		Detection:    cfg.Detection,
		OutputSuffix: cfg.Output.Suffix,
	}
	return New(logger, opts, exec, exec, renderer), nil
}

// WithOutput returns a copy of the pipeline writing to path
func (p *Pipeline) WithOutput(path string) *Pipeline {
	cp := *p
	cp.opts.OutputPath = path
	return &cp
}

// Run detects strikes in input and renders the trimmed output.
// Finding no strikes is a successful run with OutcomeNoEvents.
func (p *Pipeline) Run(ctx context.Context, input string) (*Result, error) {
	return p.run(ctx, input, true)
}

// Detect stops after the segments are built; nothing is rendered
func (p *Pipeline) Detect(ctx context.Context, input string) (*Result, error) {
	return p.run(ctx, input, false)
}

func (p *Pipeline) run(ctx context.Context, input string, render bool) (*Result, error) {
	start := time.Now()
	r := &run{
		Pipeline: p,
		m:        newMachine(),
		result: &Result{
			RunID: uuid.NewString(),
			Input: input,
		},
	}
	r.logger = p.logger.With().Str("run_id", r.result.RunID).Logger()

	r.logger.Info().
		Str("input", input).
		Float64("threshold", p.opts.Detection.BrightnessThreshold).
		Float64("pre_roll", p.opts.Detection.PreRoll).
		Float64("post_roll", p.opts.Detection.PostRoll).
		Msg("starting run")

	err := r.execute(ctx, render)
	r.result.States = slices.Clone(r.m.history)
	r.result.Elapsed = time.Since(start)

	if err != nil {
		r.logger.Error().
			Err(err).
			Str("state", string(r.m.current)).
			Msg("run failed")
		return r.result, err
	}

	r.logger.Info().
		Stringer("outcome", r.result.Outcome).
		Dur("elapsed", r.result.Elapsed).
		Msg("run complete")
	return r.result, nil
}

// run is the state of a single invocation
type run struct {
	*Pipeline
	logger zerolog.Logger
	m      *machine
	result *Result
}

func (r *run) to(next State) {
	if err := r.m.to(next); err != nil {
		// transitions are fixed in code; reaching this is a bug
		panic(err)
	}
	r.logger.Debug().Str("state", string(next)).Msg("state transition")
}

// fail records a terminal state for err and returns it
func (r *run) fail(err *Error) error {
	if err.Kind == KindCancelled {
		r.to(StateCancelled)
	} else if r.m.current == StateRendering {
		r.to(StateRenderFailed)
	} else {
		r.to(StateFailed)
	}
	return err
}

func (r *run) execute(ctx context.Context, render bool) error {
	d := r.opts.Detection
	if err := validateDetection(d); err != nil {
		return r.fail(&Error{Kind: KindConfiguration, Stage: StageConfig, Err: err})
	}
	if r.result.Input == "" {
		return r.fail(&Error{Kind: KindConfiguration, Stage: StageConfig, Err: errors.New("input path cannot be empty")})
	}
	if render && r.renderer == nil {
		return r.fail(&Error{Kind: KindConfiguration, Stage: StageConfig, Err: errors.New("no renderer configured")})
	}

	// Stage 1: resolve the frame rate
	r.to(StateResolvingRate)
	info, err := r.prober.ProbeVideo(ctx, r.result.Input)
	if err != nil {
		return r.fail(toolError(StageProbe, KindUpstreamTool, fmt.Errorf("failed to probe video: %w", err)))
	}
	if !(info.FPS > 0) {
		return r.fail(&Error{Kind: KindConfiguration, Stage: StageProbe, Err: fmt.Errorf("%w: %q", detect.ErrInvalidFrameRate, info.FrameRate)})
	}
	r.result.FrameRate = info.FPS

	r.logger.Info().
		Float64("fps", info.FPS).
		Str("r_frame_rate", info.FrameRate).
		Dur("duration", info.Duration).
		Bool("has_audio", info.HasAudio).
		Msg("video metadata extracted")

	// Stage 2: brightness samples -> bright timestamps
	r.to(StateExtractingSamples)
	bright, err := r.extract(ctx, d.BrightnessThreshold)
	if err != nil {
		return r.fail(toolError(StageAnalysis, KindUpstreamTool, err))
	}
	r.result.BrightFrames = len(bright)

	if len(bright) == 0 {
		r.to(StateNoEventsFound)
		r.result.Outcome = OutcomeNoEvents
		r.logger.Info().
			Int("samples", r.result.Samples).
			Msg("no frames above the brightness threshold")
		return nil
	}

	// Stage 3: group into events
	events, err := detect.GroupEvents(bright, info.FPS)
	if err != nil {
		return r.fail(&Error{Kind: KindConfiguration, Stage: StageGrouping, Err: err})
	}
	r.to(StateEventsGrouped)
	r.result.Events = events

	r.logger.Info().
		Int("bright_frames", len(bright)).
		Int("events", len(events)).
		Float64("max_gap", detect.MaxGap(info.FPS)).
		Msg("grouped bright frames into events")

	// Stage 4: pad and merge
	segments := detect.BuildSegments(events, d.PreRoll, d.PostRoll)
	r.to(StateSegmentsBuilt)
	r.result.Segments = segments

	r.logger.Info().
		Int("segments", len(segments)).
		Str("kept", util.FormatSeconds(detect.TotalDuration(segments))).
		Msg("built final segments")

	if !render {
		r.result.Outcome = OutcomeDetected
		return nil
	}

	// Stage 5: one encode for all segments
	output := r.outputPath()
	r.result.Output = output
	r.to(StateRendering)

	req := ffmpeg.RenderRequest{
		Input:        r.result.Input,
		Output:       output,
		Segments:     segments,
		HasAudio:     info.HasAudio,
		ProgressFunc: r.progressLogger(),
	}
	if err := r.renderer.RenderSegments(ctx, req); err != nil {
		return r.fail(toolError(StageRender, KindRender, err))
	}

	r.to(StateRenderSucceeded)
	r.result.Outcome = OutcomeRendered

	r.logger.Info().
		Str("output", output).
		Str("size", humanize.Bytes(uint64(util.FileSize(output)))).
		Msg("trimmed video written")
	return nil
}

// extract streams analysis output through the threshold filter
func (r *run) extract(ctx context.Context, threshold float64) ([]float64, error) {
	var bright []float64

	err := r.analyzer.AnalyzeBrightness(ctx, r.result.Input, func(out io.Reader) error {
		sr := detect.NewSampleReader(out)
		counted := func(yield func(detect.Sample) bool) {
			for s := range sr.All() {
				r.result.Samples++
				if !yield(s) {
					return
				}
			}
		}
		bright = slices.Collect(detect.Bright(counted, threshold))

		r.logger.Debug().
			Int("lines", sr.Lines()).
			Int("skipped", sr.Skipped()).
			Int("samples", r.result.Samples).
			Msg("analysis stream consumed")
		return sr.Err()
	})
	if err != nil {
		return nil, err
	}
	return bright, nil
}

func (r *run) outputPath() string {
	if r.opts.OutputPath != "" {
		return r.opts.OutputPath
	}
	return util.OutputPath(r.result.Input, r.opts.OutputSuffix)
}

// progressLogger logs render progress every 10%
func (r *run) progressLogger() ffmpeg.ProgressFunc {
	next := 0.0
	return func(p *ffmpeg.Progress) {
		if p.Percentage < next {
			return
		}
		next = float64(int(p.Percentage/10)+1) * 10
		r.logger.Info().
			Str("progress", fmt.Sprintf("%.0f%%", p.Percentage)).
			Int("frame", p.Frame).
			Str("speed", p.Speed).
			Msg("rendering")
	}
}

func validateDetection(d config.DetectionConfig) error {
	cfg := config.Default()
	cfg.Detection = d
	return cfg.Validate()
}
