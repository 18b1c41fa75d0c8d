package scheduler

import (
	"github.com/robfig/cron/v3"
	"github.com/viraleats/viraleats-backend/internal/app/service"
	"github.com/viraleats/viraleats-backend/pkg/logger"
)

// TrendingScheduler reruns the trending batch on a cron schedule. Runs are
// not guarded against overlap; the batch is idempotent per record, so an
// overlapping run wastes work but does not corrupt state.
type TrendingScheduler struct {
	cron            *cron.Cron
	trendingService service.TrendingService
	schedule        string
}

func NewTrendingScheduler(trendingService service.TrendingService, schedule string) *TrendingScheduler {
	return &TrendingScheduler{
		cron:            cron.New(),
		trendingService: trendingService,
		schedule:        schedule,
	}
}

// Start registers the job and starts the scheduler.
func (s *TrendingScheduler) Start() error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		logger.Info("Starting scheduled trending update", nil)

		report, err := s.trendingService.UpdateTrendingRanks()
		if err != nil {
			logger.Error("Scheduled trending update failed", err)
			return
		}

		logger.Info("Scheduled trending update completed", map[string]interface{}{
			"total":           report.Total,
			"updated":         report.Updated,
			"failed":          report.Failed,
			"marked_trending": report.MarkedTrending,
			"dishes_created":  report.DishesCreated,
		})
	})

	if err != nil {
		logger.Error("Failed to add cron job for trending update", err)
		return err
	}

	s.cron.Start()
	logger.Info("Trending scheduler started", map[string]interface{}{
		"schedule": s.schedule,
	})

	return nil
}

// Stop stops the scheduler.
func (s *TrendingScheduler) Stop() {
	logger.Info("Stopping trending scheduler...")
	s.cron.Stop()
	logger.Info("Trending scheduler stopped")
}
