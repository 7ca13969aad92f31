package video

import (
	"context"
	"fmt"
	"math"

	"gocv.io/x/gocv"
)

const (
	// FallbackCodec is the fourcc used when re-encoding without a transcoder.
	FallbackCodec = "mp4v"
	// FallbackExt is the container written with FallbackCodec.
	FallbackExt = ".mp4"
)

// CutFrames re-encodes round(duration*fps) frames starting at frame
// round(start*fps) of src into dst. It is not frame exact for containers
// whose seek is approximate. It returns the number of frames written.
func CutFrames(ctx context.Context, src string, start, duration float64, dst string) (int, error) {
	s, err := NewFileStream(src)
	if err != nil {
		return 0, err
	}
	defer s.Close()

	info := s.Info()
	if info.FPS <= 0 {
		return 0, fmt.Errorf("%s: unknown frame rate", src)
	}
	if duration <= 0 {
		return 0, fmt.Errorf("invalid duration %v", duration)
	}

	writer, err := gocv.VideoWriterFile(dst, FallbackCodec, info.FPS, info.Width, info.Height, true)
	if err != nil {
		return 0, fmt.Errorf("unable to create %s: %w", dst, err)
	}
	defer writer.Close()
	if !writer.IsOpened() {
		return 0, fmt.Errorf("unable to create %s: no %s encoder", dst, FallbackCodec)
	}

	if err := s.SeekTime(start); err != nil {
		return 0, err
	}

	want := int(math.Round(duration * info.FPS))
	written := 0
	for written < want {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		f, ok, err := s.Read()
		if !ok {
			break
		}
		if err != nil {
			// nothing to write for an undecodable frame
			continue
		}
		werr := writer.Write(*f.Mat())
		f.Close()
		if werr != nil {
			return written, fmt.Errorf("write frame to %s: %w", dst, werr)
		}
		written++
	}

	if written == 0 {
		return 0, fmt.Errorf("no frames read from %s at %.3fs", src, start)
	}
	return written, nil
}
