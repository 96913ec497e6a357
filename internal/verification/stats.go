package verification

import (
	"context"
	"fmt"
	"time"
)

// StatsReport aggregates one actor's verification activity. Every figure
// is derived from the event log at read time; nothing here is a stored
// counter.
type StatsReport struct {
	UserEmail   string         `json:"userEmail"`
	Total       int            `json:"total"`
	ByResult    map[Result]int `json:"byResult"`
	SuccessRate float64        `json:"successRate"`
	Today       int            `json:"today"`
	ThisWeek    int            `json:"thisWeek"`
	ThisMonth   int            `json:"thisMonth"`
	Recent      []Event        `json:"recent"`
}

func (e *engine) Stats(ctx context.Context, userEmail string) (*StatsReport, error) {
	now := time.Now().UTC()

	byResult, err := e.store.CountsByResult(ctx, userEmail)
	if err != nil {
		return nil, fmt.Errorf("aggregate results: %w", err)
	}

	total := 0
	for _, count := range byResult {
		total += count
	}

	rate := 0.0
	if total > 0 {
		rate = float64(byResult[ResultAuthentic]) / float64(total)
	}

	report := &StatsReport{
		UserEmail:   userEmail,
		Total:       total,
		ByResult:    byResult,
		SuccessRate: rate,
	}

	for _, window := range []struct {
		since time.Time
		dest  *int
	}{
		{now.Add(-24 * time.Hour), &report.Today},
		{now.Add(-7 * 24 * time.Hour), &report.ThisWeek},
		{now.Add(-30 * 24 * time.Hour), &report.ThisMonth},
	} {
		count, err := e.store.CountByUserSince(ctx, userEmail, window.since)
		if err != nil {
			return nil, fmt.Errorf("count window: %w", err)
		}
		*window.dest = count
	}

	recent, err := e.store.RecentByUser(ctx, userEmail, e.cfg.RecentLimit)
	if err != nil {
		return nil, fmt.Errorf("recent events: %w", err)
	}
	report.Recent = recent

	return report, nil
}
