package worker

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/observability"
)

// OverdueLister finds open tickets whose pending deadline has passed.
type OverdueLister interface {
	ListOverdue(ctx context.Context, now time.Time, limit int) ([]domain.Ticket, error)
}

// SLARefresher recomputes the SLA of one ticket.
type SLARefresher interface {
	RefreshSLA(ctx context.Context, ticketID int64) (*domain.Ticket, error)
}

// SweepResult summarizes one sweep.
type SweepResult struct {
	Checked  int
	Breached int
	Failed   int
}

// SLASweeper periodically flips overdue pending tickets to breached so list
// filters and reports do not wait for the next ticket save.
type SLASweeper struct {
	tickets   OverdueLister
	refresher SLARefresher
	metrics   *observability.Metrics
	logger    *zap.Logger
	batchSize int
	timeout   time.Duration
	now       func() time.Time
	cron      *cron.Cron
}

// SLASweeperOptions configures the sweeper.
type SLASweeperOptions struct {
	BatchSize int
	Timeout   time.Duration
	Metrics   *observability.Metrics
	Logger    *zap.Logger
	Clock     func() time.Time
}

// NewSLASweeper constructs a sweeper.
func NewSLASweeper(tickets OverdueLister, refresher SLARefresher, opts SLASweeperOptions) *SLASweeper {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 500
	}
	if opts.Timeout <= 0 {
		opts.Timeout = time.Minute
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &SLASweeper{
		tickets:   tickets,
		refresher: refresher,
		metrics:   opts.Metrics,
		logger:    opts.Logger,
		batchSize: opts.BatchSize,
		timeout:   opts.Timeout,
		now:       opts.Clock,
	}
}

// Start schedules the sweep. An empty schedule leaves the sweeper disabled.
func (s *SLASweeper) Start(schedule string) error {
	if schedule == "" {
		s.logger.Info("sla sweeper disabled")
		return nil
	}
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(schedule, s.run); err != nil {
		return err
	}
	c.Start()
	s.cron = c
	s.logger.Info("sla sweeper started", zap.String("schedule", schedule))
	return nil
}

// Stop waits for a running sweep to finish.
func (s *SLASweeper) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
	s.logger.Info("sla sweeper stopped")
}

func (s *SLASweeper) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if _, err := s.Sweep(ctx); err != nil {
		s.logger.Error("sla sweep failed", zap.Error(err))
	}
}

// Sweep refreshes one batch of overdue tickets. A failing ticket is logged and
// skipped.
func (s *SLASweeper) Sweep(ctx context.Context) (SweepResult, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveSweep(time.Since(start)) }()

	var result SweepResult
	overdue, err := s.tickets.ListOverdue(ctx, s.now(), s.batchSize)
	if err != nil {
		return result, err
	}
	for _, ticket := range overdue {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		result.Checked++
		refreshed, err := s.refresher.RefreshSLA(ctx, ticket.ID)
		if err != nil {
			result.Failed++
			s.logger.Warn("sla refresh failed", zap.Int64("ticket_id", ticket.ID), zap.Error(err))
			continue
		}
		if refreshed.SLAState == domain.SLAStateBreached {
			result.Breached++
		}
	}
	if result.Checked > 0 {
		s.logger.Info("sla sweep finished",
			zap.Int("checked", result.Checked),
			zap.Int("breached", result.Breached),
			zap.Int("failed", result.Failed))
	}
	return result, nil
}
