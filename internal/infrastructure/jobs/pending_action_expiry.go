package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"

	"pay-chain.backend/internal/domain/repositories"
	"pay-chain.backend/pkg/logger"
)

// PendingActionExpiryJob periodically nulls out pending codes whose
// expiry has lapsed. Code consumption does not depend on this job (the
// expiry check happens lazily on every use); it only keeps stale codes
// from lingering in the table.
type PendingActionExpiryJob struct {
	repo     repositories.AccountRepository
	interval time.Duration
	stop     chan struct{}
}

func NewPendingActionExpiryJob(repo repositories.AccountRepository, interval time.Duration) *PendingActionExpiryJob {
	if interval <= 0 {
		interval = time.Minute
	}
	return &PendingActionExpiryJob{
		repo:     repo,
		interval: interval,
		stop:     make(chan struct{}),
	}
}

func (j *PendingActionExpiryJob) Start(ctx context.Context) {
	logger.Info(ctx, "starting pending action expiry job", zap.Duration("interval", j.interval))

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "pending action expiry job stopped (context cancelled)")
			return
		case <-j.stop:
			logger.Info(ctx, "pending action expiry job stopped")
			return
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

func (j *PendingActionExpiryJob) Stop() {
	close(j.stop)
}

func (j *PendingActionExpiryJob) sweep(ctx context.Context) {
	cleared, err := j.repo.ClearExpiredPendingActions(ctx, time.Now().UTC())
	if err != nil {
		logger.Error(ctx, "failed to clear expired pending actions", zap.Error(err))
		return
	}
	if cleared > 0 {
		logger.Info(ctx, "cleared expired pending actions", zap.Int64("count", cleared))
	}
}
