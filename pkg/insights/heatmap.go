package insights

import (
	"context"
	"time"

	"github.com/harun/chronicle/internal/observability"
	"github.com/harun/chronicle/pkg/session"
)

// ActivityHeatmapCell is one (week, weekday) bucket of session activity.
// Week is the 0-based ISO calendar week; Day runs Sunday=0 through
// Saturday=6.
type ActivityHeatmapCell struct {
	Week  int `json:"week"`
	Day   int `json:"day"`
	Count int `json:"count"`
}

// Heatmap buckets described sessions into (week, weekday) cells by their
// modification date. Sessions whose modified stamp does not parse are
// skipped. One cell is emitted per non-zero bucket; emission order is
// unspecified.
func (a *Aggregator) Heatmap(ctx context.Context) ([]ActivityHeatmapCell, error) {
	start := time.Now()
	defer func() {
		observability.RecordAggregation("heatmap", time.Since(start))
	}()

	sessions, err := a.describedSessions(ctx)
	if err != nil {
		return nil, err
	}

	type bucket struct {
		week int
		day  int
	}

	heatmap := make(map[bucket]int)
	for _, info := range sessions {
		modified, err := time.Parse(session.ModifiedTimeLayout, info.Modified)
		if err != nil {
			continue
		}

		_, isoWeek := modified.ISOWeek()
		heatmap[bucket{
			week: isoWeek - 1,
			day:  int(modified.Weekday()),
		}]++
	}

	cells := make([]ActivityHeatmapCell, 0, len(heatmap))
	for b, count := range heatmap {
		cells = append(cells, ActivityHeatmapCell{Week: b.week, Day: b.day, Count: count})
	}

	return cells, nil
}
