// Package region computes the rectangles of a frame that are ignored during
// motion comparison, such as on-screen clocks and the noisy frame border.
package region

import "image"

// Region is an axis-aligned rectangle in source-frame pixels.
type Region struct {
	X      int `yaml:"x" json:"x"`
	Y      int `yaml:"y" json:"y"`
	Width  int `yaml:"width" json:"width"`
	Height int `yaml:"height" json:"height"`
}

func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

func (r Region) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Clamp trims r to a width x height frame. The result may be empty when r
// lies entirely outside the frame.
func (r Region) Clamp(width, height int) Region {
	rect := r.Rect().Intersect(image.Rect(0, 0, width, height))
	if rect.Empty() {
		return Region{}
	}
	return Region{
		X:      rect.Min.X,
		Y:      rect.Min.Y,
		Width:  rect.Dx(),
		Height: rect.Dy(),
	}
}

// Options controls which regions Build produces.
type Options struct {
	// EdgeFraction is the share of each frame dimension masked along every
	// border. Zero disables the edge bands.
	EdgeFraction float64 `yaml:"edge_fraction" json:"edge_fraction"`
	// Exclude holds fixed regions, e.g. a timestamp overlay.
	Exclude []Region `yaml:"exclude" json:"exclude"`
}

// Build computes the exclusion list for a frame of the given size. Every
// region returned lies inside the frame; empty ones are dropped.
func Build(width, height int, opts Options) []Region {
	if width <= 0 || height <= 0 {
		return nil
	}

	var regions []Region
	if opts.EdgeFraction > 0 {
		ew := int(float64(width) * opts.EdgeFraction)
		eh := int(float64(height) * opts.EdgeFraction)
		regions = append(regions,
			Region{X: 0, Y: 0, Width: ew, Height: height},
			Region{X: width - ew, Y: 0, Width: ew, Height: height},
			Region{X: 0, Y: 0, Width: width, Height: eh},
			Region{X: 0, Y: height - eh, Width: width, Height: eh},
		)
	}
	regions = append(regions, opts.Exclude...)

	out := make([]Region, 0, len(regions))
	for _, r := range regions {
		if c := r.Clamp(width, height); !c.Empty() {
			out = append(out, c)
		}
	}
	return out
}
