package segment

import (
	"errors"
	"fmt"
	"math"
)

var ErrNotConfigured = errors.New("tracker fps not configured")

// Tracker is the motion state machine. It consumes one motion flag per
// frame and emits a Segment once a motion episode has been followed by
// enough still frames. Boundaries are aligned to whole seconds: starts are
// floored, ends are ceiled.
//
// A Tracker is single-stream and not safe for concurrent use.
type Tracker struct {
	staticDuration  float64
	fps             float64
	staticThreshold int

	isMotion       bool
	staticFrames   int
	segmentStart   float64
	hasStart       bool
	lastSegmentEnd float64
	currentTime    float64
}

func NewTracker(staticDuration float64) *Tracker {
	return &Tracker{staticDuration: staticDuration}
}

// SetFPS configures the frame rate used to convert frame indexes into
// seconds and derives the still-frame threshold from it.
func (t *Tracker) SetFPS(fps float64) error {
	if fps <= 0 || math.IsNaN(fps) || math.IsInf(fps, 0) {
		return fmt.Errorf("invalid fps %v: %w", fps, ErrNotConfigured)
	}
	t.fps = fps
	t.staticThreshold = int(math.Round(t.staticDuration * fps))
	return nil
}

func (t *Tracker) FPS() float64 {
	return t.fps
}

// StaticThreshold is the number of consecutive still frames that close an
// open segment.
func (t *Tracker) StaticThreshold() int {
	return t.staticThreshold
}

// CurrentTime is the timestamp of the last stepped frame.
func (t *Tracker) CurrentTime() float64 {
	return t.currentTime
}

func (t *Tracker) InMotion() bool {
	return t.isMotion
}

// Step advances the machine by one frame. It returns a segment and true when
// the frame closes a motion episode.
func (t *Tracker) Step(frameIndex int, motion bool) (Segment, bool, error) {
	if t.fps <= 0 {
		return Segment{}, false, ErrNotConfigured
	}
	t.currentTime = float64(frameIndex) / t.fps

	if motion {
		t.staticFrames = 0
		if !t.isMotion {
			// a start that rounds down into the previous segment would reopen it
			candidate := math.Floor(t.currentTime)
			if candidate >= t.lastSegmentEnd {
				t.isMotion = true
				t.segmentStart = candidate
				t.hasStart = true
			}
		}
		return Segment{}, false, nil
	}

	t.staticFrames++
	if !t.isMotion || t.staticFrames < t.staticThreshold {
		return Segment{}, false, nil
	}

	t.isMotion = false
	end := math.Ceil(t.currentTime)
	if !t.hasStart || end <= t.segmentStart {
		return Segment{}, false, nil
	}

	seg := Segment{Start: t.segmentStart, End: end}
	t.lastSegmentEnd = end
	t.hasStart = false
	t.segmentStart = 0
	return seg, true, nil
}

// Open returns the still-open motion episode, ending at the current time.
// Callers use it at end of stream or on cancellation; the tracker never
// closes it on its own.
func (t *Tracker) Open() (Segment, bool) {
	if !t.isMotion || !t.hasStart {
		return Segment{}, false
	}
	seg := Segment{Start: t.segmentStart, End: t.currentTime}
	if !seg.Valid() {
		return Segment{}, false
	}
	return seg, true
}

// Reset returns the machine to its initial state. The configured fps is kept.
func (t *Tracker) Reset() {
	t.isMotion = false
	t.staticFrames = 0
	t.segmentStart = 0
	t.hasStart = false
	t.lastSegmentEnd = 0
	t.currentTime = 0
}
