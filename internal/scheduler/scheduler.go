package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/eggledger/internal/config"
	"github.com/mamadbah2/eggledger/internal/domain/models"
	"github.com/mamadbah2/eggledger/internal/service/reporting"
)

// ReportGenerator builds and stores the daily report.
type ReportGenerator interface {
	GenerateDailyReport(ctx context.Context, day time.Time) (models.DailyReport, error)
}

// Notifier delivers a text message to the report recipient.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron     *cron.Cron
	reports  ReportGenerator
	notifier Notifier
	cfg      config.ReportingConfig
	location *time.Location
	logger   *zap.Logger
	now      func() time.Time
}

// NewScheduler creates a new scheduler instance. notifier may be nil.
func NewScheduler(cfg config.ReportingConfig, reports ReportGenerator, notifier Notifier, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	location, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("load timezone %s: %w", cfg.Timezone, err)
	}

	// Standard 5-field cron expressions, evaluated in the business timezone.
	c := cron.New(cron.WithLocation(location))

	return &Scheduler{
		cron:     c,
		reports:  reports,
		notifier: notifier,
		cfg:      cfg,
		location: location,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// Start registers the daily report job and starts the scheduler.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler", zap.String("schedule", s.cfg.CronSchedule))

	if _, err := s.cron.AddFunc(s.cfg.CronSchedule, s.runDailyReport); err != nil {
		return fmt.Errorf("schedule daily report: %w", err)
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runDailyReport() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := s.SendDailyReport(ctx); err != nil {
		s.logger.Error("daily report failed", zap.Error(err))
	}
}

// SendDailyReport generates today's report and, when a notifier is set, sends it.
func (s *Scheduler) SendDailyReport(ctx context.Context) error {
	s.logger.Info("generating daily report")

	report, err := s.reports.GenerateDailyReport(ctx, s.now().In(s.location))
	if err != nil {
		return err
	}

	if s.notifier == nil {
		return nil
	}

	if err := s.notifier.Notify(ctx, reporting.FormatReport(report)); err != nil {
		return fmt.Errorf("send daily report: %w", err)
	}

	s.logger.Info("daily report sent successfully")
	return nil
}
