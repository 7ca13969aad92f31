// Package timecode formats and parses the second-based timestamps used in
// segment names, log output and transcoder arguments.
package timecode

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Clock formats seconds as HH:MM:SS.ff.
func Clock(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	// round to centiseconds first so 59.999 does not print as 60.00
	cs := int64(math.Round(seconds * 100))
	h := cs / 360000
	m := (cs % 360000) / 6000
	s := float64(cs%6000) / 100
	return fmt.Sprintf("%02d:%02d:%05.2f", h, m, s)
}

// FileStamp is Clock with the colons replaced so it can live in a filename.
func FileStamp(seconds float64) string {
	return strings.ReplaceAll(Clock(seconds), ":", "_")
}

// FFmpeg formats seconds for -ss / -t arguments.
func FFmpeg(seconds float64) string {
	return strconv.FormatFloat(seconds, 'f', 3, 64)
}

// ParseFrameRate parses frame rate from ffprobe format (e.g., "30000/1001")
func ParseFrameRate(s string) float64 {
	parts := strings.Split(strings.TrimSpace(s), "/")
	switch len(parts) {
	case 1:
		v, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return 0
		}
		return v
	case 2:
		num, err1 := strconv.ParseFloat(parts[0], 64)
		den, err2 := strconv.ParseFloat(parts[1], 64)
		if err1 != nil || err2 != nil || den == 0 {
			return 0
		}
		return num / den
	}
	return 0
}
