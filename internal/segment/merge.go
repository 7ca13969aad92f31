package segment

import (
	"math"
	"sort"
)

// Interval is anything Merge can coalesce. A raw Segment is its own core; a
// Merged segment reports the unbuffered span it was built from.
type Interval interface {
	Core() Segment
}

// Merged is a buffered output segment. Start/End are the padded bounds to
// cut; the embedded core keeps the unpadded union so a merged list can be
// merged again without growing.
type Merged struct {
	Segment
	core Segment
}

func (m Merged) Core() Segment {
	return m.core
}

// Merge sorts the input by start, coalesces every pair whose buffered bounds
// touch or overlap (gap <= 2*buffer), then pads each result by buffer on
// both sides, clamping starts at zero.
//
// Merging the output again with the same buffer returns the same list.
func Merge[T Interval](in []T, buffer float64) []Merged {
	if len(in) == 0 {
		return nil
	}
	if buffer < 0 {
		buffer = 0
	}

	cores := make([]Segment, 0, len(in))
	for _, s := range in {
		cores = append(cores, s.Core())
	}
	sort.SliceStable(cores, func(i, j int) bool {
		return cores[i].Start < cores[j].Start
	})

	out := make([]Merged, 0, len(cores))
	current := cores[0]
	for _, seg := range cores[1:] {
		if seg.Start-buffer <= current.End+buffer {
			current.End = math.Max(current.End, seg.End)
			continue
		}
		out = append(out, pad(current, buffer))
		current = seg
	}
	return append(out, pad(current, buffer))
}

func pad(core Segment, buffer float64) Merged {
	return Merged{
		Segment: Segment{
			Start: math.Max(0, core.Start-buffer),
			End:   core.End + buffer,
		},
		core: core,
	}
}

// Segments strips merged entries down to their padded bounds.
func Segments(merged []Merged) []Segment {
	out := make([]Segment, len(merged))
	for i, m := range merged {
		out[i] = m.Segment
	}
	return out
}
