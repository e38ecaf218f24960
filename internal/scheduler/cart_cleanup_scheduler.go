package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/seedstoroots/seeds-backend/config"
	"github.com/seedstoroots/seeds-backend/internal/app/repository"
	"github.com/seedstoroots/seeds-backend/pkg/logger"
)

// CartCleanupScheduler prunes cart items that have not been touched for
// the configured retention period. Abandoned carts otherwise accumulate
// forever because guests never log back in.
type CartCleanupScheduler struct {
	cron      *cron.Cron
	cartRepo  repository.CartRepository
	schedule  string
	retention time.Duration
}

func NewCartCleanupScheduler(cartRepo repository.CartRepository, cfg config.CleanupConfig) *CartCleanupScheduler {
	return &CartCleanupScheduler{
		cron:      cron.New(),
		cartRepo:  cartRepo,
		schedule:  cfg.Schedule,
		retention: cfg.Retention,
	}
}

func (s *CartCleanupScheduler) Start() error {
	_, err := s.cron.AddFunc(s.schedule, s.runOnce)
	if err != nil {
		logger.Error("Failed to add cron job for cart cleanup", err, map[string]interface{}{
			"schedule": s.schedule,
		})
		return err
	}

	s.cron.Start()
	logger.Info("Cart cleanup scheduler started", map[string]interface{}{
		"schedule":  s.schedule,
		"retention": s.retention.String(),
	})

	return nil
}

func (s *CartCleanupScheduler) runOnce() {
	cutoff := time.Now().Add(-s.retention)
	logger.Info("Starting scheduled cart cleanup", map[string]interface{}{
		"cutoff": cutoff.Format(time.RFC3339),
	})

	removed, err := s.cartRepo.DeleteUpdatedBefore(cutoff)
	if err != nil {
		logger.Error("Scheduled cart cleanup failed", err)
		return
	}

	logger.Info("Scheduled cart cleanup finished", map[string]interface{}{
		"removed": removed,
	})
}

func (s *CartCleanupScheduler) Stop() {
	logger.Info("Stopping cart cleanup scheduler...", nil)
	s.cron.Stop()
	logger.Info("Cart cleanup scheduler stopped", nil)
}
