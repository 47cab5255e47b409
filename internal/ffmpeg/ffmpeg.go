package ffmpeg

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Options locates the ffmpeg binaries
type Options struct {
	FFmpegPath  string // default: "ffmpeg" from PATH
	FFprobePath string // default: "ffprobe" from PATH
	Threads     int
}

// Executor handles all ffmpeg operations with progress streaming
type Executor struct {
	logger      zerolog.Logger
	ffmpegPath  string
	ffprobePath string
	threads     int
}

// New creates a new ffmpeg executor. Both binaries must resolve.
func New(logger zerolog.Logger, opts Options) (*Executor, error) {
	ffmpegPath, err := exec.LookPath(orDefault(opts.FFmpegPath, "ffmpeg"))
	if err != nil {
		return nil, fmt.Errorf("ffmpeg not found in PATH: %w", err)
	}

	ffprobePath, err := exec.LookPath(orDefault(opts.FFprobePath, "ffprobe"))
	if err != nil {
		return nil, fmt.Errorf("ffprobe not found in PATH: %w", err)
	}

	return &Executor{
		logger:      logger.With().Str("component", "ffmpeg").Logger(),
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		threads:     opts.Threads,
	}, nil
}

// Run executes ffmpeg with the given arguments and blocks until it exits.
// A failed run returns a *CommandError; a cancelled one returns an error
// wrapping ctx.Err().
func (e *Executor) Run(ctx context.Context, opts RunOptions) error {
	if len(opts.Args) == 0 {
		return fmt.Errorf("no arguments provided")
	}

	args := e.buildArgs(opts)

	e.logger.Debug().
		Str("cmd", "ffmpeg").
		Strs("args", args).
		Msg("executing ffmpeg")

	cmd := exec.CommandContext(ctx, e.ffmpegPath, args...)

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("failed to create stderr pipe: %w", err)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to create stdout pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	tail := newTailBuffer(diagnosticLines)

	var g errgroup.Group

	// Stream stderr (progress + logs, or the analysis stream)
	g.Go(func() error {
		if opts.StderrConsumer == nil {
			e.streamOutput(stderr, tail, opts)
			return nil
		}
		r := io.TeeReader(stderr, tail)
		err := opts.StderrConsumer(r)
		_, _ = io.Copy(io.Discard, r)
		return err
	})

	// Stream stdout
	g.Go(func() error {
		scanner := bufio.NewScanner(stdout)
		for scanner.Scan() {
			if opts.LogHandler != nil {
				opts.LogHandler(scanner.Text())
			}
		}
		// keep the pipe empty if the scanner gave up on a long line
		_, _ = io.Copy(io.Discard, stdout)
		return nil
	})

	consumeErr := g.Wait()
	waitErr := cmd.Wait()

	if ctx.Err() != nil {
		return fmt.Errorf("ffmpeg interrupted: %w", ctx.Err())
	}
	if waitErr != nil {
		return &CommandError{
			Args:        append([]string{e.ffmpegPath}, args...),
			Diagnostics: tail.String(),
			Err:         waitErr,
		}
	}
	if consumeErr != nil {
		return fmt.Errorf("failed to consume ffmpeg output: %w", consumeErr)
	}

	e.logger.Debug().Msg("ffmpeg execution completed")
	return nil
}

// buildArgs puts global options BEFORE the caller's arguments
func (e *Executor) buildArgs(opts RunOptions) []string {
	args := []string{"-y", "-hide_banner", "-nostats", "-loglevel", "info"}

	if e.threads > 0 {
		args = append(args, "-threads", strconv.Itoa(e.threads))
	}

	if opts.ProgressHandler != nil && opts.StderrConsumer == nil {
		args = append(args, "-progress", "pipe:2")
	}

	return append(args, opts.Args...)
}

// streamOutput parses ffmpeg output and calls handlers
func (e *Executor) streamOutput(r io.Reader, tail *tailBuffer, opts RunOptions) {
	scanner := bufio.NewScanner(r)
	progressData := &Progress{}

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")

		key, value, isKV := strings.Cut(line, "=")
		if !isKV || !isProgressKey(key) {
			tail.Add(line)
			if opts.LogHandler != nil {
				opts.LogHandler(line)
			}
			continue
		}

		value = strings.TrimSpace(value)
		switch key {
		case "frame":
			progressData.Frame, _ = strconv.Atoi(value)
		case "fps":
			progressData.FPS, _ = strconv.ParseFloat(value, 64)
		case "bitrate":
			progressData.Bitrate = value
		case "out_time_us":
			if us, err := strconv.ParseInt(value, 10, 64); err == nil {
				progressData.OutTime = time.Duration(us) * time.Microsecond
			}
		case "speed":
			progressData.Speed = value
		case "progress":
			// End of progress block
			if opts.ProgressHandler != nil && progressData.Frame > 0 {
				if opts.Duration > 0 {
					pct := float64(progressData.OutTime) / float64(opts.Duration) * 100
					progressData.Percentage = min(100, max(0, pct))
				}
				opts.ProgressHandler(progressData)
			}
			progressData = &Progress{}
		}
	}

	// a line longer than the scanner buffer stops Scan; ffmpeg must not
	// block writing the rest
	_, _ = io.Copy(io.Discard, r)
}

var progressKeys = map[string]bool{
	"frame": true, "fps": true, "bitrate": true, "total_size": true,
	"out_time_us": true, "out_time_ms": true, "out_time": true,
	"dup_frames": true, "drop_frames": true, "speed": true, "progress": true,
}

func isProgressKey(key string) bool {
	return progressKeys[key] || strings.HasPrefix(key, "stream_")
}

// probe runs ffprobe and returns its stdout
func (e *Executor) probe(ctx context.Context, args ...string) ([]byte, error) {
	e.logger.Debug().
		Str("cmd", "ffprobe").
		Strs("args", args).
		Msg("executing ffprobe")

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, e.ffprobePath, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("ffprobe interrupted: %w", ctx.Err())
		}
		tail := newTailBuffer(diagnosticLines)
		_, _ = tail.Write(stderr.Bytes())
		return nil, &CommandError{
			Args:        append([]string{e.ffprobePath}, args...),
			Diagnostics: tail.String(),
			Err:         err,
		}
	}
	return stdout.Bytes(), nil
}

// IsCancelled reports whether err came from a cancelled context
func IsCancelled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
