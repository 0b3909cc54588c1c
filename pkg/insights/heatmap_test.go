package insights

import (
	"context"
	"testing"
	"time"

	"github.com/harun/chronicle/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cellFor(cells []ActivityHeatmapCell, week, day int) *ActivityHeatmapCell {
	for i := range cells {
		if cells[i].Week == week && cells[i].Day == day {
			return &cells[i]
		}
	}
	return nil
}

func TestHeatmapWeekdayIndexes(t *testing.T) {
	// Saturday 2025-06-14 and Sunday 2025-06-15 share ISO week 24: ISO
	// weeks run Monday through Sunday, so the Sunday closes the same week
	// the Saturday sits in.
	saturday := time.Date(2025, 6, 14, 10, 0, 0, 0, time.UTC)
	sunday := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

	src := &fakeSource{
		infos: []session.SessionInfo{
			describedInfo("sat", "/a", nil, saturday.Format(session.ModifiedTimeLayout)),
			describedInfo("sun", "/a", nil, sunday.Format(session.ModifiedTimeLayout)),
		},
	}

	cells, err := New(src).Heatmap(context.Background())
	require.NoError(t, err)
	require.Len(t, cells, 2)

	const week = 23 // ISO week 24, 0-based

	sat := cellFor(cells, week, 6)
	require.NotNil(t, sat, "expected a Saturday cell in week %d", week)
	assert.Equal(t, 1, sat.Count)

	sun := cellFor(cells, week, 0)
	require.NotNil(t, sun, "expected a Sunday cell in week %d", week)
	assert.Equal(t, 1, sun.Count)
}

func TestHeatmapAccumulatesSameBucket(t *testing.T) {
	monday := time.Date(2025, 6, 9, 8, 0, 0, 0, time.UTC)

	src := &fakeSource{
		infos: []session.SessionInfo{
			describedInfo("a", "/x", nil, monday.Format(session.ModifiedTimeLayout)),
			describedInfo("b", "/x", nil, monday.Add(4*time.Hour).Format(session.ModifiedTimeLayout)),
			describedInfo("c", "/x", nil, monday.Add(9*time.Hour).Format(session.ModifiedTimeLayout)),
		},
	}

	cells, err := New(src).Heatmap(context.Background())
	require.NoError(t, err)
	require.Len(t, cells, 1)
	assert.Equal(t, 3, cells[0].Count)
	assert.Equal(t, 1, cells[0].Day) // Monday
}

func TestHeatmapSkipsUndescribedAndUnparseable(t *testing.T) {
	src := &fakeSource{
		infos: []session.SessionInfo{
			{ID: "blank", Modified: "2025-06-09 08:00:00 UTC", Metadata: session.SessionMetadata{}},
			describedInfo("garbled", "/a", nil, "tuesday-ish"),
			describedInfo("ok", "/a", nil, "2025-06-09 08:00:00 UTC"),
		},
	}

	cells, err := New(src).Heatmap(context.Background())
	require.NoError(t, err)
	require.Len(t, cells, 1)
	assert.Equal(t, 1, cells[0].Count)
}

func TestHeatmapEmptyCatalog(t *testing.T) {
	cells, err := New(&fakeSource{}).Heatmap(context.Background())
	require.NoError(t, err)
	assert.Empty(t, cells)
}
