package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/keagan/lightningtrim/internal/detect"
	"github.com/keagan/lightningtrim/pkg/util"
	"github.com/rs/zerolog"
)

// RenderRequest describes one trimmed render
type RenderRequest struct {
	Input        string
	Output       string
	Segments     []detect.Segment
	HasAudio     bool
	ProgressFunc ProgressFunc
}

// Renderer encodes the selected segments of a video into one output file.
// The encoder profile is fixed when the Renderer is built.
type Renderer struct {
	exec    *Executor
	logger  zerolog.Logger
	profile Profile
}

// NewRenderer binds an executor to an encoder profile
func NewRenderer(exec *Executor, profile Profile) *Renderer {
	return &Renderer{
		exec:    exec,
		logger:  exec.logger.With().Str("profile", profile.Name).Logger(),
		profile: profile,
	}
}

// Profile returns the encoder profile in use
func (r *Renderer) Profile() Profile {
	return r.profile
}

// RenderSegments runs a single encode that keeps only the requested
// segments, with audio and video selected by the same predicate. It is
// never retried. ffmpeg writes to a temporary file next to the output which
// is renamed into place on success, so a failed render leaves any existing
// file at the output path untouched.
func (r *Renderer) RenderSegments(ctx context.Context, req RenderRequest) error {
	if err := validateRenderRequest(req); err != nil {
		return fmt.Errorf("invalid render request: %w", err)
	}

	partial, err := createPartial(req.Output)
	if err != nil {
		return fmt.Errorf("render failed: %w", err)
	}
	final := req.Output
	req.Output = partial

	r.logger.Info().
		Str("input", req.Input).
		Str("output", final).
		Int("segments", len(req.Segments)).
		Str("encoder", r.profile.Description).
		Msg("starting render")

	runOpts := RunOptions{
		Args:            BuildRenderArgs(req, r.profile),
		ProgressHandler: req.ProgressFunc,
		Duration:        util.Seconds(detect.TotalDuration(req.Segments)),
		LogHandler: func(line string) {
			r.logger.Debug().Str("ffmpeg", line).Msg("render output")
		},
	}

	start := time.Now()
	err = r.exec.Run(ctx, runOpts)
	if err == nil {
		err = os.Rename(partial, final)
	}
	if err != nil {
		if rmErr := util.RemoveIfExists(partial); rmErr != nil {
			r.logger.Warn().Err(rmErr).Str("partial", partial).Msg("failed to remove partial output")
		}
		return fmt.Errorf("render failed: %w", err)
	}

	r.logger.Info().
		Str("output", final).
		Dur("elapsed", time.Since(start)).
		Msg("render completed")
	return nil
}

// BuildRenderArgs assembles the ffmpeg arguments for req
func BuildRenderArgs(req RenderRequest, profile Profile) []string {
	expr := SelectExpr(req.Segments)

	video := NewFilterBuilder().
		From("0:v").
		Select(expr).
		Custom("setpts=N/FRAME_RATE/TB").
		To("v")

	args := []string{"-i", req.Input}

	if req.HasAudio {
		audio := NewFilterBuilder().
			From("0:a").
			ASelect(expr).
			Custom("asetpts=N/SR/TB").
			To("a")
		args = append(args,
			"-filter_complex", FilterGraph(video, audio),
			"-map", "[v]",
			"-map", "[a]",
		)
	} else {
		args = append(args,
			"-filter_complex", FilterGraph(video),
			"-map", "[v]",
		)
	}

	args = append(args, profile.VideoArgs...)

	if req.HasAudio {
		args = append(args, "-c:a", DefaultAudioCodec, "-b:a", DefaultAudioBitrate)
	}

	return append(args, req.Output)
}

// validateRenderRequest validates the render request
func validateRenderRequest(req RenderRequest) error {
	if req.Input == "" {
		return fmt.Errorf("input path is required")
	}
	if req.Output == "" {
		return fmt.Errorf("output path is required")
	}
	same, err := sameFile(req.Input, req.Output)
	if err != nil {
		return err
	}
	if same {
		return fmt.Errorf("output %s is the input video", req.Output)
	}
	if len(req.Segments) == 0 {
		return fmt.Errorf("at least one segment is required")
	}
	for i, s := range req.Segments {
		if s.Start < 0 || s.End < s.Start {
			return fmt.Errorf("segment %d %v is invalid", i, s)
		}
	}
	return nil
}

// sameFile reports whether a and b name the same file, either lexically or,
// when both exist, by identity (hard links and symlinks)
func sameFile(a, b string) (bool, error) {
	absA, err := filepath.Abs(a)
	if err != nil {
		return false, fmt.Errorf("resolve %s: %w", a, err)
	}
	absB, err := filepath.Abs(b)
	if err != nil {
		return false, fmt.Errorf("resolve %s: %w", b, err)
	}
	if absA == absB {
		return true, nil
	}

	infoA, errA := os.Stat(absA)
	infoB, errB := os.Stat(absB)
	if errA != nil || errB != nil {
		if errors.Is(errB, fs.ErrNotExist) || errors.Is(errA, fs.ErrNotExist) {
			return false, nil
		}
		return false, errors.Join(errA, errB)
	}
	return os.SameFile(infoA, infoB), nil
}

// createPartial reserves a hidden temporary file beside output. It keeps
// output's extension so ffmpeg still picks the right muxer.
func createPartial(output string) (string, error) {
	dir, name := filepath.Split(output)
	if dir == "" {
		dir = "."
	}
	ext := filepath.Ext(name)

	f, err := os.CreateTemp(dir, "."+name+".partial-*"+ext)
	if err != nil {
		return "", fmt.Errorf("create partial output: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("create partial output: %w", err)
	}
	return f.Name(), nil
}
