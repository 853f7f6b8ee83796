package reports

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// NotificationRefresher regenerates alert notifications before the dashboard
// is assembled, so the numbers and the bell stay in step.
type NotificationRefresher interface {
	Refresh(ctx context.Context) error
}

// Service assembles the dashboard summary.
type Service struct {
	repo     Repository
	cache    Cache
	notifier NotificationRefresher
	logger   *slog.Logger
	now      func() time.Time
}

// NewService builds a Service. cache and notifier may be nil.
func NewService(repo Repository, cache Cache, notifier NotificationRefresher, logger *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, notifier: notifier, logger: logger, now: time.Now}
}

// WithClock overrides the wall clock, for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// RefreshSummary drops the cached summary and rebuilds it from the
// aggregates. Used when the caller cannot tolerate stale numbers.
func (s *Service) RefreshSummary(ctx context.Context) (*Summary, error) {
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.logger.Warn("summary cache invalidate failed", slog.Any("error", err))
		}
	}
	return s.Summary(ctx)
}

// Summary returns the dashboard payload, from cache when fresh enough.
func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	if s.notifier != nil {
		if err := s.notifier.Refresh(ctx); err != nil {
			s.logger.Warn("notification refresh before summary failed", slog.Any("error", err))
		}
	}
	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx); ok {
			return cached, nil
		}
	}

	summary := &Summary{GeneratedAt: s.now().UTC()}
	today := summary.GeneratedAt.Truncate(24 * time.Hour)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		summary.Tenders, err = s.repo.TenderSummary(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		summary.Projects, err = s.repo.ProjectSummary(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		summary.Finance, err = s.repo.FinancialPipeline(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		summary.Calendar, err = s.repo.CalendarItems(ctx, today, today.AddDate(0, 0, calendarWindowDays))
		return err
	})
	g.Go(func() error {
		var err error
		summary.RecentTenders, err = s.repo.LatestTenders(ctx, latestTendersLimit)
		return err
	})
	g.Go(func() error {
		var err error
		summary.AtRiskProjects, err = s.repo.AtRiskProjects(ctx, atRiskProjectsLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if summary.Calendar == nil {
		summary.Calendar = []CalendarItem{}
	}
	if summary.RecentTenders == nil {
		summary.RecentTenders = []LatestTender{}
	}
	if summary.AtRiskProjects == nil {
		summary.AtRiskProjects = []AtRiskProject{}
	}

	if s.cache != nil {
		s.cache.Set(ctx, summary)
	}
	return summary, nil
}
