package motion

import (
	"fmt"
	"time"

	"github.com/kmmndr/motioncut/internal/timecode"
)

type MotionReport struct {
	motion *Motion

	UUID     string `json:"uuid"`
	RunID    string `json:"run_id"`
	Start    string `json:"start"`
	End      string `json:"end"`
	Duration string `json:"duration"`
	Frames   int    `json:"frames"`
	Open     bool   `json:"open,omitempty"`
	Date     string `json:"date"`
}

func NewMotionReport(motion *Motion, fps float64) *MotionReport {
	seg := motion.Segment()
	now := time.Now().Format(time.RFC3339)

	return &MotionReport{
		motion: motion,

		UUID:     motion.UUID(),
		RunID:    motion.RunID(),
		Start:    timecode.Clock(seg.Start),
		End:      timecode.Clock(seg.End),
		Duration: fmt.Sprintf("%.2f", seg.Duration()),
		Frames:   motion.FramesCount(fps),
		Open:     motion.Open(),
		Date:     now,
	}
}
