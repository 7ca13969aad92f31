package video

import (
	"errors"

	"github.com/kmmndr/motioncut/internal/frame"
)

var ErrSourceOpen = errors.New("unable to open video source")

// Info is what a source reports about itself once opened. FPS and
// FrameCount may be approximate for some containers.
type Info struct {
	FPS        float64
	FrameCount int
	Width      int
	Height     int
}

// Duration is the length implied by FrameCount and FPS.
func (i Info) Duration() float64 {
	if i.FPS <= 0 {
		return 0
	}
	return float64(i.FrameCount) / i.FPS
}

// Source is a sequential frame reader over one video.
type Source interface {
	Info() Info
	// Read returns the next frame, or ok=false at end of stream. A frame
	// that cannot be decoded is returned as an error wrapping
	// frame.ErrInvalidFrame; reading may continue after it.
	Read() (f *frame.Frame, ok bool, err error)
	Seek(frameIndex int) error
	Close()
}

// Opener opens a Source for a path.
type Opener func(path string) (Source, error)
