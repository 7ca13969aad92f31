package video

import (
	"context"
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

const (
	clipFPS    = 10.0
	clipFrames = 30
)

// writeClip encodes frames moving squares into path, skipping the test
// when the codec is not built into OpenCV.
func writeClip(t *testing.T, path, codec string, frames int) {
	t.Helper()
	writer, err := gocv.VideoWriterFile(path, codec, clipFPS, 320, 240, true)
	if err != nil || !writer.IsOpened() {
		if writer != nil {
			writer.Close()
		}
		t.Skipf("%s encoder unavailable", codec)
	}
	defer writer.Close()

	for i := 0; i < frames; i++ {
		mat := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 240, 320, gocv.MatTypeCV8UC3)
		x := (i * 8) % 260
		gocv.Rectangle(&mat, image.Rect(x, 80, x+60, 140), color.RGBA{R: 255, G: 255, B: 255}, -1)
		require.NoError(t, writer.Write(mat))
		mat.Close()
	}
}

func countFrames(t *testing.T, path string) int {
	t.Helper()
	s, err := NewFileStream(path)
	require.NoError(t, err)
	defer s.Close()

	n := 0
	for {
		f, ok, err := s.Read()
		if !ok {
			return n
		}
		require.NoError(t, err)
		f.Close()
		n++
	}
}

func TestFileStreamReadsToEnd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.avi")
	writeClip(t, path, "MJPG", clipFrames)

	s, err := NewFileStream(path)
	require.NoError(t, err)
	defer s.Close()

	info := s.Info()
	assert.InDelta(t, clipFPS, info.FPS, 0.01)
	assert.Equal(t, clipFrames, info.FrameCount)
	assert.Equal(t, 320, info.Width)
	assert.Equal(t, 240, info.Height)
	assert.InDelta(t, 3.0, info.Duration(), 0.01)

	read := 0
	for {
		f, ok, err := s.Read()
		if !ok {
			break
		}
		require.NoError(t, err)
		assert.Equal(t, read, f.FrameIndex())
		f.Close()
		read++
	}
	assert.Equal(t, clipFrames, read)

	_, ok, err := s.Read()
	assert.False(t, ok, "reading past the end stays at end of stream")
	assert.NoError(t, err)
}

func TestFileStreamSeek(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.avi")
	writeClip(t, path, "MJPG", clipFrames)

	s, err := NewFileStream(path)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.SeekTime(1.5))
	f, ok, err := s.Read()
	require.True(t, ok)
	require.NoError(t, err)
	assert.Equal(t, 15, f.FrameIndex())
	f.Close()

	assert.Error(t, s.Seek(-1))
}

func TestNewFileStreamMissing(t *testing.T) {
	_, err := NewFileStream(filepath.Join(t.TempDir(), "absent.mp4"))
	assert.ErrorIs(t, err, ErrSourceOpen)

	_, err = Open(filepath.Join(t.TempDir(), "absent.mp4"))
	assert.ErrorIs(t, err, ErrSourceOpen)
}

func TestNewDeviceStreamUnavailable(t *testing.T) {
	_, err := NewDeviceStream(filepath.Join(t.TempDir(), "absent.mjpeg"))
	assert.ErrorIs(t, err, ErrSourceOpen)
}

func TestCutFrames(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "clip.avi")
	writeClip(t, src, "MJPG", clipFrames)
	writeClip(t, filepath.Join(dir, "codec"+FallbackExt), FallbackCodec, 1)

	dst := filepath.Join(dir, "cut"+FallbackExt)
	written, err := CutFrames(context.Background(), src, 1.0, 1.5, dst)
	require.NoError(t, err)
	assert.Equal(t, 15, written)
	assert.Equal(t, 15, countFrames(t, dst))
}

func TestCutFramesErrors(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "clip.avi")
	writeClip(t, src, "MJPG", clipFrames)

	_, err := CutFrames(context.Background(), src, 0, 0, filepath.Join(dir, "zero.mp4"))
	assert.Error(t, err)

	_, err = CutFrames(context.Background(), src, 10, 1, filepath.Join(dir, "late.mp4"))
	assert.ErrorContains(t, err, "no frames read")

	_, err = CutFrames(context.Background(), filepath.Join(dir, "absent.avi"), 0, 1, filepath.Join(dir, "x.mp4"))
	assert.ErrorIs(t, err, ErrSourceOpen)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = CutFrames(ctx, src, 0, 1, filepath.Join(dir, "cancelled.mp4"))
	assert.ErrorIs(t, err, context.Canceled)
}
