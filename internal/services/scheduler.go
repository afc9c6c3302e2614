package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/jstittsworth/longball/internal/models"
	"github.com/jstittsworth/longball/pkg/database"
)

// SchedulerService drives the daily pipeline: a morning prediction run,
// hourly refreshes through the evening slate, result grading, and
// cleanup of stale data.
type SchedulerService struct {
	db        *database.DB
	pipeline  *Pipeline
	fileCache *FileCache
	logger    *logrus.Logger
	cron      *cron.Cron
	schedule  string
	mu        sync.Mutex
	isRunning bool
}

func NewSchedulerService(db *database.DB, pipeline *Pipeline, fileCache *FileCache, schedule string, logger *logrus.Logger) *SchedulerService {
	return &SchedulerService{
		db:        db,
		pipeline:  pipeline,
		fileCache: fileCache,
		logger:    logger,
		cron:      cron.New(),
		schedule:  schedule,
	}
}

// Start registers the cron entries and begins scheduling.
func (s *SchedulerService) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}

	// Morning run: grade yesterday, then score today's slate.
	_, err := s.cron.AddFunc(s.schedule, s.runDaily)
	if err != nil {
		return fmt.Errorf("failed to schedule daily run: %w", err)
	}

	// Refresh hourly while lineups firm up before first pitch.
	_, err = s.cron.AddFunc("0 14-19 * * *", s.refreshSlate)
	if err != nil {
		return fmt.Errorf("failed to schedule slate refresh: %w", err)
	}

	_, err = s.cron.AddFunc("0 3 * * *", s.cleanupOldData) // 3 AM daily
	if err != nil {
		return fmt.Errorf("failed to schedule cleanup: %w", err)
	}

	s.cron.Start()
	s.isRunning = true

	s.logger.Info("Scheduler service started")
	return nil
}

// Stop halts scheduling, waiting for any in-flight job.
func (s *SchedulerService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	s.logger.Info("Scheduler service stopped")
}

func (s *SchedulerService) runDaily() {
	today := time.Now().UTC().Format("2006-01-02")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	if err := s.pipeline.GradeYesterday(ctx, today); err != nil {
		s.logger.Warnf("Result grading failed: %v", err)
	}

	if _, err := s.pipeline.Run(ctx, today); err != nil {
		s.logger.Errorf("Daily pipeline run failed: %v", err)
		return
	}
	s.logger.WithField("game_date", today).Info("Daily pipeline run completed")
}

// refreshSlate rescores today once confirmed lineups start posting.
func (s *SchedulerService) refreshSlate() {
	today := time.Now().UTC().Format("2006-01-02")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	if _, err := s.pipeline.Run(ctx, today); err != nil {
		s.logger.Warnf("Slate refresh failed: %v", err)
	}
}

// cleanupOldData prunes pipeline runs and ungraded predictions older
// than the retention window. Graded rows stay for backtesting.
func (s *SchedulerService) cleanupOldData() {
	cutoff := time.Now().UTC().AddDate(0, 0, -90).Format("2006-01-02")

	result := s.db.Where("game_date < ? AND hit_hr IS NULL", cutoff).Delete(&models.Prediction{})
	if result.Error != nil {
		s.logger.Errorf("Failed to clean up stale predictions: %v", result.Error)
	} else if result.RowsAffected > 0 {
		s.logger.Infof("Cleaned up %d stale predictions", result.RowsAffected)
	}

	if err := s.db.Where("started_at < ?", time.Now().UTC().AddDate(0, 0, -90)).
		Delete(&models.PipelineRun{}).Error; err != nil {
		s.logger.Errorf("Failed to clean up old pipeline runs: %v", err)
	}

	if s.fileCache != nil {
		dropped, err := s.fileCache.Prune()
		if err != nil {
			s.logger.Errorf("Failed to prune cache files: %v", err)
		} else if dropped > 0 {
			s.logger.Infof("Pruned %d expired cache entries", dropped)
		}
	}
}
