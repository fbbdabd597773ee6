package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"reminderd/internal/domain"
	"reminderd/internal/ledger"
	"reminderd/internal/match"
	"reminderd/internal/observability"
	"reminderd/internal/store"
	"reminderd/internal/util"
)

type Store interface {
	EventsOnDate(ctx context.Context, date time.Time) ([]store.Event, error)
	Attendees(ctx context.Context, eventID string) ([]store.Recipient, error)
}

// Orchestrator drives one dispatch cycle: match due events, resolve
// recipients per event, hand claimable units to the engine, aggregate a
// summary. It keeps no state between cycles beyond the ledger.
type Orchestrator struct {
	Store  Store
	Ledger ledger.Ledger
	Engine *Engine

	// ClaimTTL bounds how long old claims are kept; purge runs
	// best-effort at the end of each cycle.
	ClaimTTL time.Duration
}

// Dispatch runs one cycle. The only fatal error is the initial candidate
// query: without the event set no useful partial work is possible. Every
// later failure is captured in the summary and the cycle completes.
func (o *Orchestrator) Dispatch(ctx context.Context, lead domain.LeadTime, now time.Time) (domain.DispatchSummary, error) {
	summary := domain.DispatchSummary{
		CycleID:     util.NewCycleID(),
		LeadMinutes: lead.Minutes(),
	}

	target := match.Target(now, lead)
	events, err := o.Store.EventsOnDate(ctx, target)
	if err != nil {
		observability.DispatchCycles.WithLabelValues("error").Inc()
		return domain.DispatchSummary{}, fmt.Errorf("query candidate events: %w", err)
	}

	due := match.Match(now, lead, match.Tolerance, events)
	summary.MatchedEvents = len(due)
	observability.MatchedEvents.Add(float64(len(due)))

	if len(due) == 0 {
		observability.DispatchCycles.WithLabelValues("empty").Inc()
		slog.Info("no events due",
			"cycle_id", summary.CycleID,
			"lead_minutes", lead.Minutes(),
			"target", target.Format(time.RFC3339),
		)
		return summary, nil
	}

	var units []Unit
	for _, ev := range due {
		bucket := match.Bucket(ev)
		recipients, err := o.Store.Attendees(ctx, ev.ID)
		if err != nil {
			// One event's resolution failure must not block the rest.
			slog.Error("resolve attendees failed", "cycle_id", summary.CycleID, "event_id", ev.ID, "err", err)
			summary.Failed++
			summary.Details = append(summary.Details, domain.DeliveryResult{
				EventID:   ev.ID,
				EventName: ev.Name,
				Outcome:   domain.OutcomeFailure,
				Error:     "resolve attendees: " + err.Error(),
			})
			continue
		}
		for _, rec := range recipients {
			units = append(units, Unit{
				Event:     ev,
				Recipient: rec,
				Lead:      lead,
				Key: ledger.Key{
					EventID:     ev.ID,
					RecipientID: rec.ID,
					LeadMinutes: lead.Minutes(),
					Bucket:      bucket,
				},
			})
		}
	}

	results, skipped := o.Engine.Deliver(ctx, now, units)
	summary.Skipped = skipped
	for _, res := range results {
		summary.Attempted++
		if res.Outcome == domain.OutcomeSuccess {
			summary.Succeeded++
		} else {
			summary.Failed++
		}
		summary.Details = append(summary.Details, res)
	}

	if o.ClaimTTL > 0 {
		if err := o.Ledger.Purge(ctx, now.Add(-o.ClaimTTL)); err != nil {
			slog.Error("claim purge failed", "cycle_id", summary.CycleID, "err", err)
		}
	}

	observability.DispatchCycles.WithLabelValues("ok").Inc()
	slog.Info("dispatch cycle complete",
		"cycle_id", summary.CycleID,
		"lead_minutes", lead.Minutes(),
		"matched", summary.MatchedEvents,
		"attempted", summary.Attempted,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"skipped", summary.Skipped,
	)
	return summary, nil
}
