package motion

import (
	"context"
	"fmt"

	uuid "github.com/gofrs/uuid/v5"

	"github.com/kmmndr/motioncut/internal/frame"
	"github.com/kmmndr/motioncut/internal/progress"
	"github.com/kmmndr/motioncut/internal/segment"
	"github.com/kmmndr/motioncut/internal/video"
)

// Result is what one detection run found. Segments are in detection order
// and unmerged.
type Result struct {
	RunID     uuid.UUID
	Segments  []segment.Segment
	Frames    int
	Skipped   int
	FPS       float64
	Cancelled bool
}

// Sensor runs one video through a classifier and a tracker. It owns neither
// the stream nor the classifier; each video gets its own Sensor.
type Sensor struct {
	stream     video.Source
	classifier frame.Classifier
	tracker    *segment.Tracker
	reporter   progress.Reporter
	fps        float64
}

func NewSensor(stream video.Source, classifier frame.Classifier, staticDuration float64) *Sensor {
	return &Sensor{
		stream:     stream,
		classifier: classifier,
		tracker:    segment.NewTracker(staticDuration),
		reporter:   progress.Discard,
	}
}

// SetFPS overrides the frame rate reported by the stream, e.g. with a
// probed value.
func (s *Sensor) SetFPS(fps float64) {
	s.fps = fps
}

func (s *Sensor) SetReporter(r progress.Reporter) {
	s.reporter = progress.OrDiscard(r)
}

func (s *Sensor) Fps() float64 {
	if s.fps > 0 {
		return s.fps
	}
	return s.stream.Info().FPS
}

func (s *Sensor) DetectMotion(ctx context.Context) (*Result, error) {
	return s.Detect(ctx, func(*Motion) {})
}

// Detect reads the stream to its end or until ctx is done, calling
// afterMotion for every segment as soon as it is known. On cancellation the
// open segment, if any, is closed at the last processed frame and the
// partial result is returned without error.
func (s *Sensor) Detect(ctx context.Context, afterMotion func(*Motion)) (*Result, error) {
	ref, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("failed to generate run id: %w", err)
	}

	fps := s.Fps()
	if err := s.tracker.SetFPS(fps); err != nil {
		return nil, err
	}

	result := &Result{RunID: ref, FPS: fps}
	reporter := progress.NewMonotonic(s.reporter)
	total := s.stream.Info().FrameCount

	reporter.Message(fmt.Sprintf("video frame rate: %.2f fps, %d frames", fps, total))
	reporter.Progress(0)

	emit := func(seg segment.Segment, open bool) {
		result.Segments = append(result.Segments, seg)
		afterMotion(NewMotion(ref, seg, open))
	}

	frameIndex := 0
	for {
		if ctx.Err() != nil {
			result.Cancelled = true
			break
		}

		currentFrame, ok, err := s.stream.Read()
		if !ok {
			break
		}
		index := frameIndex
		frameIndex++

		if err != nil {
			result.Skipped++
			reporter.Message(fmt.Sprintf("skipping frame %d: %v", index, err))
			continue
		}

		moving, err := s.classifier.Classify(currentFrame)
		currentFrame.Close()
		if err != nil {
			result.Skipped++
			reporter.Message(fmt.Sprintf("skipping frame %d: %v", index, err))
			continue
		}
		result.Frames++

		seg, closed, err := s.tracker.Step(index, moving)
		if err != nil {
			return result, err
		}
		if closed {
			emit(seg, false)
		}

		if total > 0 {
			reporter.Progress(progress.Percent(index+1, total))
		}
	}

	if seg, ok := s.tracker.Open(); ok {
		emit(seg, true)
	}
	if !result.Cancelled {
		reporter.Progress(100)
	}
	reporter.Message(fmt.Sprintf("detected %d segments in %d frames", len(result.Segments), result.Frames))

	return result, nil
}
