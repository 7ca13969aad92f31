package segment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run steps frames [0, total) through tr, marking frames inside any of the
// given [from, to] index ranges as motion.
func run(t *testing.T, tr *Tracker, total int, motion ...[2]int) []Segment {
	t.Helper()
	var out []Segment
	for i := 0; i < total; i++ {
		moving := false
		for _, r := range motion {
			if i >= r[0] && i <= r[1] {
				moving = true
				break
			}
		}
		seg, ok, err := tr.Step(i, moving)
		require.NoError(t, err)
		if ok {
			out = append(out, seg)
		}
	}
	return out
}

func TestTrackerNotConfigured(t *testing.T) {
	tr := NewTracker(1.0)
	_, _, err := tr.Step(0, true)
	assert.ErrorIs(t, err, ErrNotConfigured)

	assert.ErrorIs(t, tr.SetFPS(0), ErrNotConfigured)
	assert.ErrorIs(t, tr.SetFPS(-5), ErrNotConfigured)
}

func TestTrackerStaticThreshold(t *testing.T) {
	tr := NewTracker(1.5)
	require.NoError(t, tr.SetFPS(29.97))
	assert.Equal(t, 45, tr.StaticThreshold())
}

func TestTrackerSingleEpisode(t *testing.T) {
	// 30 fps, 10 s, motion at frames 60-90 (2.0-3.0 s)
	tr := NewTracker(1.0)
	require.NoError(t, tr.SetFPS(30))

	got := run(t, tr, 300, [2]int{60, 90})
	assert.Equal(t, []Segment{{Start: 2, End: 4}}, got)

	_, open := tr.Open()
	assert.False(t, open)
}

func TestTrackerAlignsToWholeSeconds(t *testing.T) {
	// motion 2.3-4.7 s, then one second of stillness closes it at 5.7 s
	tr := NewTracker(1.0)
	require.NoError(t, tr.SetFPS(10))

	got := run(t, tr, 100, [2]int{23, 47})
	assert.Equal(t, []Segment{{Start: 2, End: 6}}, got)
}

func TestTrackerSuppressesReopen(t *testing.T) {
	tr := NewTracker(1.0)
	require.NoError(t, tr.SetFPS(10))

	var closed []Segment
	for i := 0; i <= 53; i++ {
		seg, ok, err := tr.Step(i, i >= 20 && i <= 43)
		require.NoError(t, err)
		if ok {
			closed = append(closed, seg)
		}
	}
	// closed at 5.3 s, ceil -> 6
	require.Equal(t, []Segment{{Start: 2, End: 6}}, closed)

	for i := 54; i < 59; i++ {
		_, _, err := tr.Step(i, false)
		require.NoError(t, err)
	}

	// flicker at 5.9 s floors to 5, before the previous end
	_, _, err := tr.Step(59, true)
	require.NoError(t, err)
	assert.False(t, tr.InMotion())

	_, _, err = tr.Step(60, true)
	require.NoError(t, err)
	assert.True(t, tr.InMotion())

	for i := 61; i <= 75; i++ {
		_, _, err := tr.Step(i, true)
		require.NoError(t, err)
	}
	open, ok := tr.Open()
	require.True(t, ok)
	assert.Equal(t, 6.0, open.Start)
	assert.InDelta(t, 7.5, open.End, 1e-9)
}

func TestTrackerFlickerDoesNotSplit(t *testing.T) {
	tr := NewTracker(1.0)
	require.NoError(t, tr.SetFPS(10))

	// a 0.5 s gap is shorter than the static duration
	got := run(t, tr, 100, [2]int{10, 20}, [2]int{26, 40})
	assert.Equal(t, []Segment{{Start: 1, End: 5}}, got)
}

func TestTrackerOpenAtEndOfStream(t *testing.T) {
	tr := NewTracker(1.0)
	require.NoError(t, tr.SetFPS(10))

	got := run(t, tr, 50, [2]int{32, 49})
	assert.Empty(t, got)

	seg, ok := tr.Open()
	require.True(t, ok)
	assert.Equal(t, 3.0, seg.Start)
	assert.InDelta(t, 4.9, seg.End, 1e-9)
}

func TestTrackerOpenRequiresPositiveLength(t *testing.T) {
	tr := NewTracker(1.0)
	require.NoError(t, tr.SetFPS(10))

	_, _, err := tr.Step(20, true)
	require.NoError(t, err)
	_, ok := tr.Open()
	assert.False(t, ok)
}

func TestTrackerReset(t *testing.T) {
	tr := NewTracker(1.0)
	require.NoError(t, tr.SetFPS(10))
	run(t, tr, 80, [2]int{10, 30})

	tr.Reset()
	assert.False(t, tr.InMotion())
	assert.Zero(t, tr.CurrentTime())
	assert.Equal(t, 10.0, tr.FPS())

	// last segment end is cleared, so an early start is accepted again
	got := run(t, tr, 40, [2]int{5, 15})
	assert.Equal(t, []Segment{{Start: 0, End: 3}}, got)
}
