package timecode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClock(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "00:00:00.00"},
		{5.5, "00:00:05.50"},
		{65.25, "00:01:05.25"},
		{3723, "01:02:03.00"},
		{59.999, "00:01:00.00"},
		{-3, "00:00:00.00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Clock(tt.in), "Clock(%v)", tt.in)
	}
}

func TestFileStamp(t *testing.T) {
	assert.Equal(t, "00_01_05.25", FileStamp(65.25))
}

func TestFFmpeg(t *testing.T) {
	assert.Equal(t, "2.000", FFmpeg(2))
	assert.Equal(t, "12.346", FFmpeg(12.3456))
}

func TestParseFrameRate(t *testing.T) {
	assert.InDelta(t, 30.0, ParseFrameRate("30/1"), 1e-9)
	assert.InDelta(t, 29.97, ParseFrameRate("30000/1001"), 1e-3)
	assert.InDelta(t, 25.0, ParseFrameRate("25"), 1e-9)
	assert.Zero(t, ParseFrameRate("30/0"))
	assert.Zero(t, ParseFrameRate("abc"))
	assert.Zero(t, ParseFrameRate("1/2/3"))
}
