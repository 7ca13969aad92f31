package extract

import (
	"context"

	"github.com/kmmndr/motioncut/internal/ffmpeg"
	"github.com/kmmndr/motioncut/internal/segment"
	"github.com/kmmndr/motioncut/internal/video"
)

// Cutter writes the part of input covered by seg to output.
type Cutter interface {
	Cut(ctx context.Context, input string, seg segment.Segment, output string) error
}

// Joiner concatenates inputs, in order, into output without re-encoding.
type Joiner interface {
	Join(ctx context.Context, inputs []string, output string) error
}

// FFmpegCutter cuts with a stream copy and joins with the concat demuxer.
type FFmpegCutter struct {
	Executor *ffmpeg.Executor
}

func (c FFmpegCutter) Cut(ctx context.Context, input string, seg segment.Segment, output string) error {
	return c.Executor.ExtractClip(ctx, input, ffmpeg.ClipOptions{
		Start:    seg.Start,
		Duration: seg.Duration(),
		Output:   output,
	})
}

func (c FFmpegCutter) Join(ctx context.Context, inputs []string, output string) error {
	return c.Executor.Concat(ctx, ffmpeg.ConcatOptions{
		Inputs: inputs,
		Output: output,
	})
}

// ClipExter is implemented by cutters that always write the same container,
// whatever the source is.
type ClipExter interface {
	ClipExt() string
}

// FrameCutter re-encodes frame by frame through OpenCV. It is used when no
// ffmpeg binary is available and cannot join.
type FrameCutter struct{}

// ClipExt is the extension matching video.FallbackCodec.
func (FrameCutter) ClipExt() string {
	return video.FallbackExt
}

func (FrameCutter) Cut(ctx context.Context, input string, seg segment.Segment, output string) error {
	_, err := video.CutFrames(ctx, input, seg.Start, seg.Duration(), output)
	return err
}
