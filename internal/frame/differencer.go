package frame

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/kmmndr/motioncut/internal/region"
)

const (
	DefaultBlurKernel = 21
	dilateIterations  = 2
)

// Classifier decides whether a frame shows motion relative to the frames
// it has already seen. Implementations are single-stream and stateful.
type Classifier interface {
	Classify(f *Frame) (bool, error)
	Reset()
	Close()
}

type Params struct {
	DifferenceThreshold int
	MinContourArea      int
	// BlurKernel is the Gaussian kernel size; even values are bumped to the
	// next odd size. Zero means DefaultBlurKernel.
	BlurKernel int
}

// Differencer compares each frame with the previous one after converting to
// gray, blurring and blanking the exclusion regions. Motion is reported when
// a connected changed area is larger than MinContourArea.
type Differencer struct {
	params  Params
	regions []region.Region
	kernel  gocv.Mat
	prevMat gocv.Mat
}

func NewDifferencer(params Params, regions []region.Region) *Differencer {
	if params.BlurKernel <= 0 {
		params.BlurKernel = DefaultBlurKernel
	}
	if params.BlurKernel%2 == 0 {
		params.BlurKernel++
	}

	return &Differencer{
		params:  params,
		regions: append([]region.Region(nil), regions...),
		kernel:  gocv.GetStructuringElement(gocv.MorphRect, image.Pt(3, 3)),
		prevMat: gocv.NewMat(),
	}
}

// Regions are the masked areas, in frame coordinates.
func (d *Differencer) Regions() []region.Region {
	return d.regions
}

// Classify reports motion for f and keeps its processed copy as the
// reference for the next call. The first frame only seeds the reference.
func (d *Differencer) Classify(f *Frame) (bool, error) {
	if f == nil || f.mat == nil || f.mat.Empty() {
		return false, ErrInvalidFrame
	}

	gray, err := d.prepare(f)
	if err != nil {
		return false, err
	}
	defer gray.Close()

	if d.prevMat.Empty() {
		gray.CopyTo(&d.prevMat)
		return false, nil
	}
	if d.prevMat.Rows() != gray.Rows() || d.prevMat.Cols() != gray.Cols() {
		return false, fmt.Errorf("frame %d is %dx%d, previous %dx%d: %w",
			f.FrameIndex(), gray.Cols(), gray.Rows(), d.prevMat.Cols(), d.prevMat.Rows(), ErrInvalidFrame)
	}

	moving := d.changed(gray)
	gray.CopyTo(&d.prevMat)

	return moving, nil
}

func (d *Differencer) prepare(f *Frame) (gocv.Mat, error) {
	g, err := f.Gray()
	if err != nil {
		return gocv.Mat{}, err
	}
	gray := *g.Mat()

	k := d.params.BlurKernel
	gocv.GaussianBlur(gray, &gray, image.Pt(k, k), 0, 0, gocv.BorderDefault)

	for _, r := range d.regions {
		r = r.Clamp(gray.Cols(), gray.Rows())
		if r.Empty() {
			continue
		}
		roi := gray.Region(r.Rect())
		roi.SetTo(gocv.NewScalar(0, 0, 0, 0))
		roi.Close()
	}

	return gray, nil
}

func (d *Differencer) changed(gray gocv.Mat) bool {
	diff := gocv.NewMat()
	defer diff.Close()

	gocv.AbsDiff(d.prevMat, gray, &diff)
	gocv.Threshold(diff, &diff, float32(d.params.DifferenceThreshold), 255, gocv.ThresholdBinary)
	for i := 0; i < dilateIterations; i++ {
		gocv.Dilate(diff, &diff, d.kernel)
	}

	contours := gocv.FindContours(diff, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	for i := 0; i < contours.Size(); i++ {
		if gocv.ContourArea(contours.At(i)) > float64(d.params.MinContourArea) {
			return true
		}
	}
	return false
}

// Reset forgets the reference frame.
func (d *Differencer) Reset() {
	d.prevMat.Close()
	d.prevMat = gocv.NewMat()
}

func (d *Differencer) Close() {
	d.prevMat.Close()
	d.kernel.Close()
}
