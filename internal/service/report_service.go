package service

import (
	"context"
	"errors"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

const (
	reportSummaryCacheKey = "reports:summary"
	recentTicketsLimit    = 5
)

// ReportService builds the staff dashboard rollup.
type ReportService struct {
	reports repository.ReportRepository
	cache   repository.Cache
	ttl     time.Duration
	logger  *zap.Logger
	now     Clock
}

// ReportDependencies bundles collaborators for the report service.
type ReportDependencies struct {
	Reports repository.ReportRepository
	Cache   repository.Cache
	Config  config.ReportsConfig
	Logger  *zap.Logger
	Clock   Clock
}

// NewReportService constructs the service. A nil cache or zero TTL disables caching.
func NewReportService(deps ReportDependencies) *ReportService {
	return &ReportService{
		reports: deps.Reports,
		cache:   deps.Cache,
		ttl:     deps.Config.CacheTTL(),
		logger:  loggerOrNop(deps.Logger),
		now:     clockOrDefault(deps.Clock),
	}
}

// Summary returns ticket totals grouped by status, priority, SLA state and
// category, resolution averages and the most recent tickets.
func (s *ReportService) Summary(ctx context.Context) (*domain.ReportSummary, error) {
	if s.cachingEnabled() {
		var cached domain.ReportSummary
		err := s.cache.Get(ctx, reportSummaryCacheKey, &cached)
		switch {
		case err == nil:
			return &cached, nil
		case !errors.Is(err, repository.ErrCacheMiss):
			s.logger.Warn("report cache read failed", zap.Error(err))
		}
	}

	summary, err := s.build(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	if s.cachingEnabled() {
		if err := s.cache.Set(ctx, reportSummaryCacheKey, summary, s.ttl); err != nil {
			s.logger.Warn("report cache write failed", zap.Error(err))
		}
	}
	return summary, nil
}

// Invalidate drops the cached rollup.
func (s *ReportService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, reportSummaryCacheKey); err != nil {
		s.logger.Warn("report cache invalidate failed", zap.Error(err))
	}
}

func (s *ReportService) cachingEnabled() bool {
	return s.cache != nil && s.ttl > 0
}

func (s *ReportService) build(ctx context.Context) (*domain.ReportSummary, error) {
	byStatus, err := s.reports.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	byPriority, err := s.reports.CountByPriority(ctx)
	if err != nil {
		return nil, err
	}
	bySLA, err := s.reports.CountBySLAState(ctx)
	if err != nil {
		return nil, err
	}
	byCategory, err := s.reports.CountByCategory(ctx)
	if err != nil {
		return nil, err
	}
	avg, err := s.reports.AverageResolution(ctx)
	if err != nil {
		return nil, err
	}
	agents, err := s.reports.AgentStats(ctx)
	if err != nil {
		return nil, err
	}
	recent, err := s.reports.Recent(ctx, recentTicketsLimit)
	if err != nil {
		return nil, err
	}

	total := 0
	for _, bucket := range byStatus {
		total += bucket.Count
	}

	for i := range byStatus {
		byStatus[i].Label = domain.TicketStatus(byStatus[i].Key).Label()
	}
	for i := range bySLA {
		bySLA[i].Label = domain.SLAState(bySLA[i].Key).Label()
	}
	for i := range byCategory {
		byCategory[i].Label = domain.TicketCategory(byCategory[i].Key).Label()
	}
	for _, buckets := range [][]domain.CountBucket{byStatus, byPriority, bySLA, byCategory} {
		applyPercent(buckets, total)
	}

	if agents == nil {
		agents = []domain.AgentStat{}
	}
	if recent == nil {
		recent = []domain.Ticket{}
	}

	return &domain.ReportSummary{
		Total:             total,
		ByStatus:          byStatus,
		ByPriority:        byPriority,
		BySLAState:        bySLA,
		ByCategory:        byCategory,
		AverageResolution: avg,
		Agents:            agents,
		Recent:            recent,
		GeneratedAt:       s.now().UTC(),
	}, nil
}

// applyPercent fills Percent rounded to one decimal place.
func applyPercent(buckets []domain.CountBucket, total int) {
	if total == 0 {
		return
	}
	for i := range buckets {
		pct := float64(buckets[i].Count) * 100 / float64(total)
		buckets[i].Percent = math.Round(pct*10) / 10
	}
}
