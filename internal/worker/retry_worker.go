package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/compensation-agent/internal/config"
	"github.com/spec-kit/compensation-agent/internal/service"
)

const retryBatchSize = 50

// RetryWorker re-attempts delivery of failed notifications.
type RetryWorker struct {
	notifier *service.NotificationService
	cfg      config.WorkerConfig
	logger   *zap.Logger
}

// NewRetryWorker builds the worker.
func NewRetryWorker(notifier *service.NotificationService, cfg config.WorkerConfig, logger *zap.Logger) *RetryWorker {
	return &RetryWorker{notifier: notifier, cfg: cfg, logger: logger}
}

// Run blocks until ctx is done.
func (w *RetryWorker) Run(ctx context.Context) {
	interval := time.Duration(w.cfg.NotifyRetryIntervalSec) * time.Second
	if interval <= 0 {
		interval = 2 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			retried, err := w.notifier.RetryFailed(ctx, w.cfg.NotifyRetryMax, retryBatchSize)
			if err != nil {
				w.logger.Error("notification retry sweep failed", zap.Error(err))
				continue
			}
			if retried > 0 {
				w.logger.Info("notifications redelivered", zap.Int("count", retried))
			}
		}
	}
}
