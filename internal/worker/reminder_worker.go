// Package worker holds the background loops: review reminders and failed
// notification retries.
package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/compensation-agent/internal/config"
	"github.com/spec-kit/compensation-agent/internal/service"
)

// ReminderWorker periodically scans for tickets stuck in review and nudges
// their customers.
type ReminderWorker struct {
	tickets  *service.TicketService
	notifier *service.NotificationService
	cfg      config.WorkerConfig
	logger   *zap.Logger
}

// NewReminderWorker builds the worker.
func NewReminderWorker(tickets *service.TicketService, notifier *service.NotificationService, cfg config.WorkerConfig, logger *zap.Logger) *ReminderWorker {
	return &ReminderWorker{tickets: tickets, notifier: notifier, cfg: cfg, logger: logger}
}

// Run blocks until ctx is done. Intended to be launched in its own goroutine.
func (w *ReminderWorker) Run(ctx context.Context) {
	interval := time.Duration(w.cfg.ReminderIntervalMinutes) * time.Minute
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *ReminderWorker) sweep(ctx context.Context) {
	overdue, err := w.tickets.Overdue(ctx, w.cfg.ReviewOverdueDays)
	if err != nil {
		w.logger.Error("overdue scan failed", zap.Error(err))
		return
	}
	for i := range overdue {
		// SendReminder throttles per ticket, so re-sweeping the same
		// stuck tickets does not nag the customer again.
		if err := w.notifier.SendReminder(ctx, &overdue[i]); err != nil {
			w.logger.Warn("reminder failed",
				zap.String("ticket_number", overdue[i].Number),
				zap.Error(err))
		}
	}
	if len(overdue) > 0 {
		w.logger.Info("review reminder sweep", zap.Int("overdue", len(overdue)))
	}
}
