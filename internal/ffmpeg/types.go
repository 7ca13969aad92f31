package ffmpeg

import (
	"errors"
	"time"
)

// ErrNotFound is returned when the ffmpeg or ffprobe binary is missing.
// Callers fall back to frame-by-frame processing; it is never fatal.
var ErrNotFound = errors.New("binary not found")

// VideoInfo contains metadata about a video file
type VideoInfo struct {
	FilePath   string
	Duration   float64
	Width      int
	Height     int
	FPS        float64
	FrameCount int
	VideoCodec string
	HasAudio   bool
}

// Progress represents ffmpeg progress data
type Progress struct {
	Frame int
	FPS   float64
	// OutTime is the position reached in the output, in seconds.
	OutTime float64
	Speed   string
}

// ProgressFunc is called once per -progress block.
type ProgressFunc func(*Progress)

// RunOptions configures ffmpeg execution
type RunOptions struct {
	Args            []string
	ProgressHandler ProgressFunc
	LogHandler      func(line string)
}

// Options configures an Executor. Empty paths are looked up in PATH.
type Options struct {
	FFmpegPath  string
	FFprobePath string
	Threads     int
	// Timeout bounds a single ffmpeg or ffprobe invocation. Zero disables it.
	Timeout time.Duration
}

// ClipOptions defines clip extraction parameters
type ClipOptions struct {
	Start        float64
	Duration     float64
	Output       string
	ProgressFunc ProgressFunc
}

// ConcatOptions defines concatenation parameters
type ConcatOptions struct {
	Inputs       []string
	Output       string
	ProgressFunc ProgressFunc
}

// stderrTail is how many trailing stderr lines are kept for error messages.
const stderrTail = 8
