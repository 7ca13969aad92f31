package video

import (
	"fmt"
	"math"

	"gocv.io/x/gocv"

	"github.com/kmmndr/motioncut/internal/frame"
)

type Stream struct {
	Video *gocv.VideoCapture
	info  Info
	next  int
}

func NewFileStream(videoPath string) (*Stream, error) {
	video, err := gocv.VideoCaptureFile(videoPath)
	if err != nil {
		if video != nil {
			video.Close()
		}
		return nil, fmt.Errorf("%s: %w: %w", videoPath, ErrSourceOpen, err)
	}
	return newStream(videoPath, video)
}

// NewDeviceStream opens a capture device by number ("0") or a stream URL.
// Live sources report no frame count and are read until interrupted.
func NewDeviceStream(device string) (*Stream, error) {
	video, err := gocv.OpenVideoCapture(device)
	if err != nil {
		if video != nil {
			video.Close()
		}
		return nil, fmt.Errorf("%s: %w: %w", device, ErrSourceOpen, err)
	}
	return newStream(device, video)
}

func newStream(name string, video *gocv.VideoCapture) (*Stream, error) {
	if !video.IsOpened() {
		video.Close()
		return nil, fmt.Errorf("%s: %w", name, ErrSourceOpen)
	}

	s := &Stream{Video: video}
	s.info = Info{
		FPS:        video.Get(gocv.VideoCaptureFPS),
		FrameCount: int(video.Get(gocv.VideoCaptureFrameCount)),
		Width:      int(video.Get(gocv.VideoCaptureFrameWidth)),
		Height:     int(video.Get(gocv.VideoCaptureFrameHeight)),
	}
	if s.info.FrameCount < 0 {
		s.info.FrameCount = 0
	}
	return s, nil
}

// Open is an Opener backed by NewFileStream.
func Open(path string) (Source, error) {
	s, err := NewFileStream(path)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Stream) Close() {
	s.Video.Close()
}

func (s *Stream) Info() Info {
	return s.info
}

func (s *Stream) Read() (*frame.Frame, bool, error) {
	mat := gocv.NewMat()
	if ok := s.Video.Read(&mat); !ok {
		mat.Close()
		return nil, false, nil
	}

	index := s.next
	s.next++

	f, err := frame.NewFrame(index, &mat)
	if err != nil {
		mat.Close()
		// an empty read past the reported frame count is end of stream
		if s.info.FrameCount > 0 && index >= s.info.FrameCount {
			return nil, false, nil
		}
		return nil, true, err
	}
	return f, true, nil
}

func (s *Stream) Seek(frameIndex int) error {
	if frameIndex < 0 {
		return fmt.Errorf("invalid frame index %d", frameIndex)
	}
	s.Video.Set(gocv.VideoCapturePosFrames, float64(frameIndex))
	s.next = frameIndex
	return nil
}

// SeekTime positions the stream on the frame nearest to seconds.
func (s *Stream) SeekTime(seconds float64) error {
	return s.Seek(int(math.Round(seconds * s.info.FPS)))
}
