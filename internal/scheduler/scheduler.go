package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/fishledger/internal/config"
	"github.com/mamadbah2/fishledger/internal/domain/models"
)

const jobTimeout = 2 * time.Minute

// ErrDigestDisabled is returned when no messaging or manager is configured.
var ErrDigestDisabled = errors.New("weekly digest disabled")

// Reporter produces the scheduled ledger outputs.
type Reporter interface {
	TakeSnapshot(ctx context.Context) (models.LedgerSnapshot, error)
	GenerateWeeklyReport(ctx context.Context, now time.Time) (string, error)
}

// Notifier delivers the weekly digest.
type Notifier interface {
	SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron     *cron.Cron
	reporter Reporter
	notifier Notifier
	cfg      config.Config
	location *time.Location
	logger   *zap.Logger
}

// NewScheduler creates a new scheduler instance. notifier may be nil, in
// which case the weekly digest is not scheduled.
func NewScheduler(cfg config.Config, reporter Reporter, notifier Notifier, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	location, err := time.LoadLocation(cfg.Reporting.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Reporting.Timezone, err)
	}

	return &Scheduler{
		cron:     cron.New(cron.WithLocation(location)),
		reporter: reporter,
		notifier: notifier,
		cfg:      cfg,
		location: location,
		logger:   logger,
	}, nil
}

// Start registers the jobs and starts the scheduler.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler", zap.String("timezone", s.location.String()))

	if _, err := s.cron.AddFunc(s.cfg.Reporting.SnapshotSchedule, s.takeSnapshot); err != nil {
		return fmt.Errorf("schedule ledger snapshot: %w", err)
	}

	if s.notifier != nil && s.cfg.WhatsApp.ManagerID != "" {
		if _, err := s.cron.AddFunc(s.cfg.Reporting.DigestSchedule, s.sendWeeklyReport); err != nil {
			return fmt.Errorf("schedule weekly digest: %w", err)
		}
	} else {
		s.logger.Info("weekly digest disabled: no messaging or manager configured")
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) takeSnapshot() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if _, err := s.reporter.TakeSnapshot(ctx); err != nil {
		s.logger.Error("scheduled snapshot failed", zap.Error(err))
	}
}

func (s *Scheduler) sendWeeklyReport() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if err := s.SendDigest(ctx); err != nil {
		s.logger.Error("failed to send weekly report", zap.Error(err))
	}
}

// SendDigest generates the weekly report and sends it to the manager now.
func (s *Scheduler) SendDigest(ctx context.Context) error {
	if s.notifier == nil || s.cfg.WhatsApp.ManagerID == "" {
		return ErrDigestDisabled
	}

	s.logger.Info("generating weekly report")
	report, err := s.reporter.GenerateWeeklyReport(ctx, time.Now().In(s.location))
	if err != nil {
		return fmt.Errorf("generate weekly report: %w", err)
	}

	req := models.OutboundMessageRequest{
		To:      s.cfg.WhatsApp.ManagerID,
		Message: report,
	}
	if err := s.notifier.SendOutbound(ctx, req); err != nil {
		return fmt.Errorf("send weekly report: %w", err)
	}

	s.logger.Info("weekly report sent successfully")
	return nil
}
