package worker

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/medisched/medisched-api/internal/repository"
	"github.com/medisched/medisched-api/pkg/logger"
)

// OutboxCleaner prunes processed outbox events past their retention window
// on a nightly schedule.
type OutboxCleaner struct {
	repo      repository.OutboxRepository
	retention time.Duration
	logger    *logger.Logger
	cron      *cron.Cron
}

func NewOutboxCleaner(repo repository.OutboxRepository, retention time.Duration, l *logger.Logger) *OutboxCleaner {
	return &OutboxCleaner{
		repo:      repo,
		retention: retention,
		logger:    l,
		cron:      cron.New(),
	}
}

func (c *OutboxCleaner) Start(ctx context.Context) error {
	_, err := c.cron.AddFunc("0 3 * * *", func() {
		c.Clean(ctx)
	})
	if err != nil {
		return err
	}
	c.cron.Start()
	return nil
}

func (c *OutboxCleaner) Stop() {
	<-c.cron.Stop().Done()
}

func (c *OutboxCleaner) Clean(ctx context.Context) {
	cutoff := time.Now().Add(-c.retention)
	deleted, err := c.repo.DeleteProcessedBefore(ctx, cutoff)
	if err != nil {
		c.logger.Error(err, "failed to prune outbox events")
		return
	}
	if deleted > 0 {
		c.logger.Info("pruned processed outbox events", "deleted", deleted, "cutoff", cutoff)
	}
}
