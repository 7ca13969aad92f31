// Package segment turns per-frame motion flags into whole-second time
// segments and coalesces them into a buffered, disjoint list ready for
// cutting.
package segment

import (
	"fmt"

	"github.com/kmmndr/motioncut/internal/timecode"
)

// Segment is a closed interval of source-video seconds believed to contain
// motion. End is always greater than Start.
type Segment struct {
	Start float64 `json:"start" yaml:"start"`
	End   float64 `json:"end" yaml:"end"`
}

func (s Segment) Duration() float64 {
	return s.End - s.Start
}

func (s Segment) Valid() bool {
	return s.End > s.Start
}

// Core returns the segment itself; it satisfies Interval.
func (s Segment) Core() Segment {
	return s
}

func (s Segment) String() string {
	return fmt.Sprintf("%s-%s", timecode.Clock(s.Start), timecode.Clock(s.End))
}
