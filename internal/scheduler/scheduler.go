package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/fatbomb/MealManagement/internal/core"
)

const runTimeout = 5 * time.Minute

// Scheduler runs the periodic aggregate consistency check.
type Scheduler struct {
	cron       *cron.Cron
	spec       string
	reconciler core.Reconciler
	location   *time.Location
	now        core.Clock
	logger     *zap.Logger
}

// NewScheduler creates a scheduler for spec, a standard five-field cron expression
// evaluated in loc. An empty spec disables scheduling.
func NewScheduler(spec string, reconciler core.Reconciler, loc *time.Location, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		cron:       cron.New(cron.WithLocation(loc)),
		spec:       spec,
		reconciler: reconciler,
		location:   loc,
		now:        time.Now,
		logger:     logger,
	}
}

// Start registers the reconcile job and starts the cron loop.
func (s *Scheduler) Start() error {
	if s.spec == "" {
		s.logger.Info("reconcile schedule disabled")
		return nil
	}
	if _, err := s.cron.AddFunc(s.spec, s.reconcileRecent); err != nil {
		return fmt.Errorf("invalid reconcile schedule %q: %w", s.spec, err)
	}
	s.logger.Info("starting scheduler", zap.String("reconcileCron", s.spec))
	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

// recentMonths returns the current month and the one before it. Past meals can
// still be edited by a mess manager, so the previous month keeps being checked.
func (s *Scheduler) recentMonths() []string {
	now := s.now().In(s.location)
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.location)
	return []string{
		firstOfMonth.AddDate(0, -1, 0).Format("2006-01"),
		firstOfMonth.Format("2006-01"),
	}
}

func (s *Scheduler) reconcileRecent() {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	for _, month := range s.recentMonths() {
		report, err := s.reconciler.ReconcileMonth(ctx, month, false)
		if err != nil {
			s.logger.Error("scheduled reconcile failed", zap.String("month", month), zap.Error(err))
			continue
		}
		if len(report.Drifts) > 0 {
			s.logger.Warn("scheduled reconcile found drift",
				zap.String("month", month),
				zap.Int("records", report.Records),
				zap.Int("drifts", len(report.Drifts)),
			)
			continue
		}
		s.logger.Info("scheduled reconcile clean", zap.String("month", month), zap.Int("records", report.Records))
	}
}
