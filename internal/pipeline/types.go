package pipeline

import (
	"time"

	uuid "github.com/gofrs/uuid/v5"

	"github.com/kmmndr/motioncut/internal/extract"
	"github.com/kmmndr/motioncut/internal/motion"
	"github.com/kmmndr/motioncut/internal/segment"
)

// VideoResult is everything one unit of work produced for one video. Err
// holds the fatal error of that video, if any; other videos of a batch are
// not affected by it.
type VideoResult struct {
	Path       string
	RunID      uuid.UUID
	FPS        float64
	Detection  *motion.Result
	Segments   []segment.Merged
	Reports    []*motion.MotionReport
	Extraction *extract.Result
	StartedAt  time.Time
	FinishedAt time.Time
	Err        error
}

// Cancelled reports whether detection or extraction stopped early.
func (r *VideoResult) Cancelled() bool {
	return (r.Detection != nil && r.Detection.Cancelled) ||
		(r.Extraction != nil && r.Extraction.Cancelled)
}

// Duration is the total length of the merged segments.
func (r *VideoResult) Duration() float64 {
	var total float64
	for _, m := range r.Segments {
		total += m.Duration()
	}
	return total
}
