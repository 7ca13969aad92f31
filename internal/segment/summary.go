package segment

import "github.com/kmmndr/motioncut/internal/timecode"

// Info is the human-readable description of one segment in a list.
type Info struct {
	Index    int    `json:"index"`
	Start    string `json:"start"`
	End      string `json:"end"`
	Duration string `json:"duration"`
}

// Summarize describes each segment (1-based) and returns the formatted total
// duration of the list.
func Summarize(segments []Segment) ([]Info, string) {
	var total float64
	infos := make([]Info, 0, len(segments))
	for i, s := range segments {
		total += s.Duration()
		infos = append(infos, Info{
			Index:    i + 1,
			Start:    timecode.Clock(s.Start),
			End:      timecode.Clock(s.End),
			Duration: timecode.Clock(s.Duration()),
		})
	}
	return infos, timecode.Clock(total)
}
