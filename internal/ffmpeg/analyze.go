package ffmpeg

import (
	"context"
	"fmt"
	"io"
)

// AnalyzeBrightness measures the average luma of every frame of input and
// hands ffmpeg's stderr to consume as it is produced. consume must read
// line by line; the output of long videos is too large to buffer.
func (e *Executor) AnalyzeBrightness(ctx context.Context, input string, consume func(io.Reader) error) error {
	if input == "" {
		return fmt.Errorf("input path is required")
	}

	e.logger.Info().
		Str("input", input).
		Msg("analyzing frame brightness")

	filter := NewFilterBuilder().
		Custom("signalstats").
		Custom("metadata=mode=print:key=lavfi.signalstats.YAVG").
		Build()

	opts := RunOptions{
		Args: []string{
			"-i", input,
			"-an",
			"-vf", filter,
			"-f", "null",
			"-",
		},
		StderrConsumer: consume,
	}

	if err := e.Run(ctx, opts); err != nil {
		return fmt.Errorf("brightness analysis failed: %w", err)
	}

	e.logger.Debug().Msg("brightness analysis complete")
	return nil
}
