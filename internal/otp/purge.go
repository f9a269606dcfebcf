package otp

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
)

// StartPurgeJob runs PurgeExpired every interval until the scheduler is stopped.
func (s *Service) StartPurgeJob(interval time.Duration) (*gocron.Scheduler, error) {
	if interval <= 0 {
		interval = time.Minute
	}
	scheduler := gocron.NewScheduler(time.UTC)

	_, err := scheduler.Every(interval).Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		removed, err := s.PurgeExpired(ctx)
		if err != nil {
			s.logger.Error("expired otp purge failed", zap.Error(err))
			return
		}
		if removed > 0 {
			s.logger.Info("expired otps purged", zap.Int("removed", removed))
		}
	})
	if err != nil {
		return nil, err
	}

	scheduler.StartAsync()
	s.logger.Info("otp purge job started", zap.Duration("interval", interval))
	return scheduler, nil
}
