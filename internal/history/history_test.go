package history

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "db", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordRun(t *testing.T) {
	s := openStore(t)

	base := time.UnixMilli(1_700_000_000_000)
	first := Run{ID: "a", Video: "/v/one.mp4", StartedAt: base, FinishedAt: base.Add(time.Minute),
		FPS: 29.97, Frames: 1800, Segments: 3, Clips: 2, Total: 3}
	second := Run{ID: "b", Video: "/v/two.mp4", StartedAt: base.Add(time.Hour), FinishedAt: base.Add(2 * time.Hour),
		Cancelled: true, Error: "boom", Merged: "/v/two_out.mp4"}

	require.NoError(t, s.RecordRun(first))
	require.NoError(t, s.RecordRun(second))

	runs, err := s.Runs(0)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	assert.Equal(t, "b", runs[0].ID)
	assert.True(t, runs[0].Cancelled)
	assert.Equal(t, "boom", runs[0].Error)
	assert.Equal(t, "/v/two_out.mp4", runs[0].Merged)
	assert.True(t, runs[0].StartedAt.Equal(second.StartedAt))

	assert.Equal(t, first.Frames, runs[1].Frames)
	assert.Equal(t, 29.97, runs[1].FPS)
	assert.Equal(t, 2, runs[1].Clips)

	limited, err := s.Runs(1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestRecordRunReplaces(t *testing.T) {
	s := openStore(t)
	now := time.Now()

	require.NoError(t, s.RecordRun(Run{ID: "a", Video: "x.mp4", StartedAt: now, FinishedAt: now}))
	require.NoError(t, s.RecordRun(Run{ID: "a", Video: "x.mp4", StartedAt: now, FinishedAt: now, Clips: 4}))

	runs, err := s.Runs(0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 4, runs[0].Clips)
}

func TestRecentKeepsTenMostRecent(t *testing.T) {
	s := openStore(t)

	for i := 0; i < 12; i++ {
		require.NoError(t, s.Touch(fmt.Sprintf("video%02d.mp4", i)))
	}
	// re-opening moves to the top without duplicating
	require.NoError(t, s.Touch("video05.mp4"))

	recent, err := s.Recent()
	require.NoError(t, err)
	require.Len(t, recent, MaxRecent)

	var names []string
	for _, r := range recent {
		names = append(names, r.Video)
	}
	assert.Equal(t, []string{
		"video05.mp4", "video11.mp4", "video10.mp4", "video09.mp4", "video08.mp4",
		"video07.mp4", "video06.mp4", "video04.mp4", "video03.mp4", "video02.mp4",
	}, names)
}

func TestOpenMemory(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Touch("a.mp4"))
	recent, err := s.Recent()
	require.NoError(t, err)
	assert.Len(t, recent, 1)
}
