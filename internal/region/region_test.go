package region

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClamp(t *testing.T) {
	tests := []struct {
		name string
		in   Region
		want Region
	}{
		{"inside", Region{10, 10, 20, 20}, Region{10, 10, 20, 20}},
		{"overflows right and bottom", Region{90, 40, 50, 50}, Region{90, 40, 10, 10}},
		{"negative origin", Region{-5, -5, 10, 10}, Region{0, 0, 5, 5}},
		{"outside", Region{200, 200, 10, 10}, Region{}},
		{"zero size", Region{5, 5, 0, 10}, Region{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Clamp(100, 50))
		})
	}
}

func TestBuildEdges(t *testing.T) {
	got := Build(1000, 500, Options{EdgeFraction: 0.02})
	assert.Equal(t, []Region{
		{X: 0, Y: 0, Width: 20, Height: 500},
		{X: 980, Y: 0, Width: 20, Height: 500},
		{X: 0, Y: 0, Width: 1000, Height: 10},
		{X: 0, Y: 490, Width: 1000, Height: 10},
	}, got)
}

func TestBuildClampsConfiguredRegions(t *testing.T) {
	opts := Options{Exclude: []Region{
		{X: 550, Y: 46, Width: 340, Height: 55},
	}}

	// the default clock overlay does not fit a 640x360 frame
	got := Build(640, 360, opts)
	assert.Equal(t, []Region{{X: 550, Y: 46, Width: 90, Height: 55}}, got)

	for _, r := range Build(320, 40, opts) {
		assert.LessOrEqual(t, r.X+r.Width, 320)
		assert.LessOrEqual(t, r.Y+r.Height, 40)
	}
}

func TestBuildUnknownSize(t *testing.T) {
	assert.Nil(t, Build(0, 0, Options{EdgeFraction: 0.02}))
}

func TestBuildNoEdges(t *testing.T) {
	assert.Empty(t, Build(100, 100, Options{}))
}
