package motion

import (
	"math"

	uuid "github.com/gofrs/uuid/v5"

	"github.com/kmmndr/motioncut/internal/segment"
)

// Motion is one detected episode. Open is set when the episode was still
// running at end of stream or cancellation.
type Motion struct {
	segment segment.Segment
	runID   uuid.UUID
	uuid    uuid.UUID
	open    bool
}

func NewMotion(runID uuid.UUID, seg segment.Segment, open bool) *Motion {
	ref, err := uuid.NewV4()
	if err != nil {
		// crypto/rand failure; keep the motion, it is only unnamed
		ref = uuid.Nil
	}

	return &Motion{
		segment: seg,
		runID:   runID,
		uuid:    ref,
		open:    open,
	}
}

func (m *Motion) Segment() segment.Segment {
	return m.segment
}

func (m *Motion) UUID() string {
	return m.uuid.String()
}

func (m *Motion) RunID() string {
	return m.runID.String()
}

func (m *Motion) Open() bool {
	return m.open
}

func (m *Motion) FramesCount(fps float64) int {
	return int(math.Round(m.segment.Duration() * fps))
}
