package bulk

import (
	"context"
	"sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/crimsight/crimsight/pkg/logger"
)

// DefaultScheduleSpec runs a whole-report export every Monday at 06:00.
const DefaultScheduleSpec = "0 6 * * 1"

// Scheduler runs periodic whole-report exports on a cron schedule.
type Scheduler struct {
	exporter *Exporter
	cron     *cron.Cron
	spec     string
	entryID  cron.EntryID
	mu       sync.RWMutex
}

// NewScheduler creates a scheduler for the given exporter. An empty
// spec falls back to the default weekly schedule.
func NewScheduler(exporter *Exporter, spec string) *Scheduler {
	if spec == "" {
		spec = DefaultScheduleSpec
	}
	return &Scheduler{
		exporter: exporter,
		cron:     cron.New(),
		spec:     spec,
	}
}

// Start schedules the export job and starts the cron runner.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entryID, err := s.cron.AddFunc(s.spec, s.run)
	if err != nil {
		logger.Error("Failed to schedule bulk export", zap.Error(err))
		return err
	}
	s.entryID = entryID
	s.cron.Start()

	logger.Info("Bulk export scheduler started", zap.String("schedule", s.spec))
	return nil
}

// Stop stops the scheduler gracefully, waiting for a running export.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil {
		logger.Info("Stopping bulk export scheduler")
		ctx := s.cron.Stop()
		<-ctx.Done()
		logger.Info("Bulk export scheduler stopped")
	}
}

func (s *Scheduler) run() {
	logger.Info("Starting scheduled bulk export")
	path, err := s.exporter.Export(context.Background())
	if err != nil {
		logger.Error("Scheduled bulk export failed", zap.Error(err))
		return
	}
	logger.Info("Scheduled bulk export completed", zap.String("path", path))
}
