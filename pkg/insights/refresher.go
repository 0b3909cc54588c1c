package insights

import (
	"context"
	"fmt"

	"github.com/harun/chronicle/internal/observability"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

const DefaultRefreshSchedule = "*/5 * * * *"

// Refresher recomputes headline insights on a cron schedule and publishes
// them as gauges, so the metrics endpoint stays current without callers
// polling the aggregator.
type Refresher struct {
	aggregator *Aggregator
	schedule   string
	cron       *cron.Cron
	running    bool
}

// NewRefresher creates a refresher with a standard five-field cron schedule.
func NewRefresher(aggregator *Aggregator, schedule string) *Refresher {
	if schedule == "" {
		schedule = DefaultRefreshSchedule
	}

	return &Refresher{
		aggregator: aggregator,
		schedule:   schedule,
	}
}

// Start validates the schedule and begins periodic refreshes. An immediate
// refresh runs before the first tick so gauges are never empty.
func (r *Refresher) Start() error {
	if r.running {
		return fmt.Errorf("refresher is already running")
	}

	c := cron.New()
	if _, err := c.AddFunc(r.schedule, func() {
		if err := r.RefreshNow(context.Background()); err != nil {
			log.Error().Err(err).Msg("Failed to refresh insights")
		}
	}); err != nil {
		return fmt.Errorf("invalid refresh schedule %q: %w", r.schedule, err)
	}

	if err := r.RefreshNow(context.Background()); err != nil {
		log.Warn().Err(err).Msg("Initial insights refresh failed")
	}

	c.Start()
	r.cron = c
	r.running = true

	log.Info().Str("schedule", r.schedule).Msg("Insights refresher started")

	return nil
}

// Stop stops the refresher.
func (r *Refresher) Stop() error {
	if !r.running {
		return fmt.Errorf("refresher is not running")
	}

	r.cron.Stop()
	r.running = false

	log.Info().Msg("Insights refresher stopped")

	return nil
}

// RefreshNow runs one aggregation pass and publishes the headline totals.
func (r *Refresher) RefreshNow(ctx context.Context) error {
	result, err := r.aggregator.Insights(ctx)
	if err != nil {
		return err
	}

	observability.PublishInsightTotals(result.TotalSessions, result.TotalTokens)

	log.Debug().
		Int("sessions", result.TotalSessions).
		Int64("tokens", result.TotalTokens).
		Msg("Insights refreshed")

	return nil
}
