package frame

import (
	"errors"
	"fmt"

	"gocv.io/x/gocv"
)

var ErrInvalidFrame = errors.New("invalid frame")

type Frame struct {
	frameIndex int
	mat        *gocv.Mat
}

func NewFrame(frameIndex int, mat *gocv.Mat) (*Frame, error) {
	if mat == nil || mat.Empty() {
		return nil, fmt.Errorf("frame %d is empty: %w", frameIndex, ErrInvalidFrame)
	}

	return &Frame{frameIndex: frameIndex, mat: mat}, nil
}

func (f *Frame) Mat() *gocv.Mat {
	return f.mat
}

func (f *Frame) FrameIndex() int {
	return f.frameIndex
}

// Gray returns a single-channel copy of the frame.
func (f *Frame) Gray() (*Frame, error) {
	gray := gocv.NewMat()
	switch f.mat.Channels() {
	case 1:
		f.mat.CopyTo(&gray)
	case 3:
		gocv.CvtColor(*f.mat, &gray, gocv.ColorBGRToGray)
	case 4:
		gocv.CvtColor(*f.mat, &gray, gocv.ColorBGRAToGray)
	default:
		gray.Close()
		return nil, fmt.Errorf("frame %d has %d channels: %w", f.frameIndex, f.mat.Channels(), ErrInvalidFrame)
	}

	g, err := NewFrame(f.frameIndex, &gray)
	if err != nil {
		gray.Close()
		return nil, err
	}
	return g, nil
}

func (f *Frame) Height() int {
	return f.mat.Rows()
}

func (f *Frame) Width() int {
	return f.mat.Cols()
}

func (f *Frame) Pixels() int {
	return f.Height() * f.Width()
}

func (f *Frame) Close() {
	f.mat.Close()
}
