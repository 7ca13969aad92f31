package ffmpeg

import (
	"context"
	"fmt"

	"github.com/kmmndr/motioncut/internal/timecode"
)

// clipArgs builds the stream-copy cut: input, start offset, duration, copy,
// output.
func clipArgs(input string, opts ClipOptions) []string {
	return []string{
		"-i", input,
		"-ss", timecode.FFmpeg(opts.Start),
		"-t", timecode.FFmpeg(opts.Duration),
		"-c", "copy",
		"-avoid_negative_ts", "make_zero",
		opts.Output,
	}
}

// ExtractClip cuts a segment from a video without re-encoding
func (e *Executor) ExtractClip(ctx context.Context, input string, opts ClipOptions) error {
	if opts.Duration <= 0 {
		return fmt.Errorf("invalid clip duration %v", opts.Duration)
	}
	if opts.Output == "" {
		return fmt.Errorf("output path is required")
	}

	e.logger.Info().
		Str("input", input).
		Str("output", opts.Output).
		Float64("start", opts.Start).
		Float64("duration", opts.Duration).
		Msg("extracting clip")

	runOpts := RunOptions{
		Args:            clipArgs(input, opts),
		ProgressHandler: opts.ProgressFunc,
		LogHandler: func(line string) {
			e.logger.Debug().Str("ffmpeg", line).Msg("clip extraction")
		},
	}

	if err := e.Run(ctx, runOpts); err != nil {
		return fmt.Errorf("clip extraction failed: %w", err)
	}

	e.logger.Info().Str("output", opts.Output).Msg("clip extraction complete")
	return nil
}
