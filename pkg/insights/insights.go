package insights

import (
	"context"
	"sort"
	"time"

	"github.com/harun/chronicle/internal/observability"
	"github.com/harun/chronicle/pkg/session"
	"github.com/rs/zerolog/log"
)

// Source is the catalog surface the aggregators consume. *session.Store
// satisfies it.
type Source interface {
	List(ctx context.Context, order session.SortOrder) ([]session.SessionInfo, error)
	ReadMessages(ctx context.Context, id string) ([]session.Message, error)
}

// DirCount is one entry of the working-directory ranking.
type DirCount struct {
	Dir   string `json:"dir"`
	Count int    `json:"count"`
}

// DayActivity is one day of the recent-activity trend.
type DayActivity struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// SessionInsights aggregates usage statistics over the catalog.
type SessionInsights struct {
	TotalSessions             int           `json:"total_sessions"`
	MostActiveDirs            []DirCount    `json:"most_active_dirs"`
	AvgSessionDurationMinutes float64       `json:"avg_session_duration_minutes"`
	TotalTokens               int64         `json:"total_tokens"`
	RecentActivity            []DayActivity `json:"recent_activity"`
}

// Aggregator computes cross-session analytics from the catalog. Each pass
// re-reads durable state per record; a concurrent update to one session may
// or may not be visible within a single pass.
type Aggregator struct {
	source Source
}

// New creates an Aggregator over a catalog source.
func New(source Source) *Aggregator {
	return &Aggregator{source: source}
}

// Insights computes usage statistics over every described session. Sessions
// without a description are not yet meaningful and excluded from all
// analytics. Individual read failures are skipped with a diagnostic; only a
// catalog-level failure propagates.
func (a *Aggregator) Insights(ctx context.Context) (SessionInsights, error) {
	start := time.Now()
	defer func() {
		observability.RecordAggregation("insights", time.Since(start))
	}()

	sessions, err := a.describedSessions(ctx)
	if err != nil {
		return SessionInsights{}, err
	}

	totalSessions := len(sessions)

	dirCounts := make(map[string]int)
	activityByDate := make(map[string]int)
	var totalDuration float64
	var totalTokens int64

	for _, info := range sessions {
		dirCounts[info.Metadata.WorkingDir]++

		// Only strictly positive token counts enter the sum. Negative
		// stored values are diagnosed, never subtracted.
		if tokens := info.Metadata.AccumulatedTotalTokens; tokens != nil {
			switch {
			case *tokens > 0:
				totalTokens += *tokens
			case *tokens < 0:
				log.Warn().
					Str("session_id", info.ID).
					Int64("accumulated_total_tokens", *tokens).
					Msg("Session has negative accumulated token count")
			}
		}

		// Sessions whose modified stamp fails to parse drop out of the
		// activity trend only, not from totals or token sums.
		if modified, err := time.Parse(session.ModifiedTimeLayout, info.Modified); err == nil {
			activityByDate[modified.Format("2006-01-02")]++
		}

		totalDuration += a.sessionDurationMinutes(ctx, info.ID)
	}

	avgDuration := 0.0
	if totalSessions > 0 {
		avgDuration = totalDuration / float64(totalSessions)
	}

	return SessionInsights{
		TotalSessions:             totalSessions,
		MostActiveDirs:            rankDirs(dirCounts, 3),
		AvgSessionDurationMinutes: avgDuration,
		TotalTokens:               totalTokens,
		RecentActivity:            recentActivity(activityByDate, 7),
	}, nil
}

// describedSessions lists the catalog and keeps only sessions with a
// non-empty description.
func (a *Aggregator) describedSessions(ctx context.Context) ([]session.SessionInfo, error) {
	sessions, err := a.source.List(ctx, session.SortDescending)
	if err != nil {
		return nil, err
	}

	described := sessions[:0:0]
	for _, info := range sessions {
		if info.Metadata.Description != "" {
			described = append(described, info)
		}
	}

	if len(described) == 0 {
		log.Debug().Msg("No described sessions in catalog")
	}

	return described, nil
}

// sessionDurationMinutes computes the span between a session's first and
// last message in minutes. Logs with fewer than two messages, and logs that
// cannot be read, contribute zero.
func (a *Aggregator) sessionDurationMinutes(ctx context.Context, id string) float64 {
	messages, err := a.source.ReadMessages(ctx, id)
	if err != nil {
		log.Warn().Str("session_id", id).Err(err).Msg("Skipping session duration")
		return 0
	}
	if len(messages) < 2 {
		return 0
	}

	first := messages[0]
	last := messages[len(messages)-1]
	return float64(last.Created-first.Created) / 60.0
}

// rankDirs ranks directories by count descending, ties broken by path
// ascending for reproducibility, and keeps the top n.
func rankDirs(dirCounts map[string]int, n int) []DirCount {
	ranked := make([]DirCount, 0, len(dirCounts))
	for dir, count := range dirCounts {
		ranked = append(ranked, DirCount{Dir: dir, Count: count})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Dir < ranked[j].Dir
	})

	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// recentActivity sorts daily buckets by date descending and keeps the n most
// recent.
func recentActivity(activityByDate map[string]int, n int) []DayActivity {
	days := make([]DayActivity, 0, len(activityByDate))
	for date, count := range activityByDate {
		days = append(days, DayActivity{Date: date, Count: count})
	}

	sort.Slice(days, func(i, j int) bool {
		return days[i].Date > days[j].Date
	})

	if len(days) > n {
		days = days[:n]
	}
	return days
}
