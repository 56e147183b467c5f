// Package reviewer surfaces documents whose periodic review date is
// approaching. It scans the document store on a cron schedule and publishes
// review-due events; it never writes documents or audit entries.
package reviewer

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/veridoc/veridoc/pkg/eventbus"
	"github.com/veridoc/veridoc/pkg/events"
	"github.com/veridoc/veridoc/pkg/models"
	"github.com/veridoc/veridoc/pkg/persistence"
)

const defaultSchedule = "@daily"

// Reviewer runs the periodic review scan.
type Reviewer struct {
	persistence persistence.Persistence
	eventBus    eventbus.EventBus
	logger      *slog.Logger
	window      time.Duration
	schedule    string
	cron        *cron.Cron
}

// NewReviewer creates a reviewer that flags documents whose next review date
// falls within the given window. An empty schedule runs the scan daily.
func NewReviewer(p persistence.Persistence, bus eventbus.EventBus, logger *slog.Logger, window time.Duration, schedule string) *Reviewer {
	if schedule == "" {
		schedule = defaultSchedule
	}

	return &Reviewer{
		persistence: p,
		eventBus:    bus,
		logger:      logger,
		window:      window,
		schedule:    schedule,
	}
}

// Start registers the scan with the cron scheduler and begins running it.
func (r *Reviewer) Start(ctx context.Context) error {
	r.cron = cron.New()

	_, err := r.cron.AddFunc(r.schedule, func() {
		if err := r.Scan(ctx); err != nil {
			r.logger.ErrorContext(ctx, "Review scan failed", "error", err)
		}
	})
	if err != nil {
		return err
	}

	r.cron.Start()
	r.logger.InfoContext(ctx, "Review scheduler started", "schedule", r.schedule, "window", r.window)

	return nil
}

// Stop halts the scheduler, waiting for a running scan to finish.
func (r *Reviewer) Stop() {
	if r.cron != nil {
		<-r.cron.Stop().Done()
	}
}

// Scan walks every effective document and publishes a review-due event for
// each one whose latest revision's next review date falls inside the window.
// Already-overdue documents are flagged as well.
func (r *Reviewer) Scan(ctx context.Context) error {
	documents, err := r.persistence.DocumentRepository().Documents(ctx)
	if err != nil {
		return err
	}

	deadline := time.Now().Add(r.window)
	flagged := 0

	for _, document := range documents {
		if document.LifecycleStatus != models.LifecycleEffective {
			continue
		}

		revision := document.CurrentRevision()
		if revision == nil || revision.NextReviewDate.IsZero() {
			continue
		}

		if revision.NextReviewDate.After(deadline) {
			continue
		}

		flagged++

		if r.eventBus == nil {
			continue
		}

		event := events.ReviewDue{
			BaseEvent:      events.NewBaseEvent(events.ReviewDueEvent, document.ID),
			RevisionID:     revision.ID,
			Number:         document.Number,
			Title:          document.Title,
			NextReviewDate: revision.NextReviewDate,
		}

		if err := r.eventBus.Publish(ctx, document.ID, event); err != nil {
			r.logger.WarnContext(ctx, "Failed to publish review-due event",
				"document_id", document.ID,
				"error", err,
			)
		}
	}

	r.logger.InfoContext(ctx, "Review scan completed",
		"documents", len(documents),
		"flagged", flagged,
	)

	return nil
}
