package reports

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type stubReportRepo struct {
	calls int
}

func (s *stubReportRepo) TenderSummary(ctx context.Context) (TenderSummary, error) {
	s.calls++
	return TenderSummary{ByStatus: map[string]int64{"draft": 2}, TotalEstimated: 5000}, nil
}

func (s *stubReportRepo) ProjectSummary(ctx context.Context) (ProjectSummary, error) {
	return ProjectSummary{ByPaymentStatus: map[string]int64{"unpaid": 1}, TotalProfit: 900}, nil
}

func (s *stubReportRepo) FinancialPipeline(ctx context.Context) (FinancialPipeline, error) {
	return FinancialPipeline{OutstandingInvoices: 1200}, nil
}

func (s *stubReportRepo) CalendarItems(ctx context.Context, from, to time.Time) ([]CalendarItem, error) {
	return nil, nil
}

func (s *stubReportRepo) LatestTenders(ctx context.Context, limit int) ([]LatestTender, error) {
	return nil, nil
}

func (s *stubReportRepo) AtRiskProjects(ctx context.Context, limit int) ([]AtRiskProject, error) {
	return nil, nil
}

var _ Repository = (*stubReportRepo)(nil)

func testReportLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSummaryUsesCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewRedisCache(client, time.Minute)

	repo := &stubReportRepo{}
	svc := NewService(repo, cache, nil, testReportLogger())

	first, err := svc.Summary(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(2), first.Tenders.ByStatus["draft"])
	require.Equal(t, 1, repo.calls)

	second, err := svc.Summary(context.Background())
	require.NoError(t, err)
	require.Equal(t, first.Tenders, second.Tenders)
	require.Equal(t, 1, repo.calls, "second call must come from cache")

	mr.FastForward(2 * time.Minute)
	_, err = svc.Summary(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, repo.calls, "expired cache forces a rebuild")
}

func TestRefreshSummaryBypassesCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewRedisCache(client, time.Minute)

	repo := &stubReportRepo{}
	svc := NewService(repo, cache, nil, testReportLogger())

	_, err := svc.Summary(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, repo.calls)

	refreshed, err := svc.RefreshSummary(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, repo.calls, "refresh must rebuild despite a warm cache")

	cached, ok := cache.Get(context.Background())
	require.True(t, ok)
	require.Equal(t, refreshed.Tenders, cached.Tenders, "rebuilt summary re-primes the cache")
}

func TestSummaryEmptySlicesNotNull(t *testing.T) {
	svc := NewService(&stubReportRepo{}, nil, nil, testReportLogger())
	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)
	require.NotNil(t, summary.Calendar)
	require.NotNil(t, summary.RecentTenders)
	require.NotNil(t, summary.AtRiskProjects)
}

func strPtr(s string) *string { return &s }

func TestRiskFlags(t *testing.T) {
	today := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	t.Run("payment delayed and overdue milestone", func(t *testing.T) {
		delayed := "delayed"
		flags := riskFlags(AtRiskProject{
			PaymentStatus: &delayed,
			EndDate:       strPtr("2024-05-20"),
		}, today)
		require.Equal(t, []string{"payment_delayed", "milestone_overdue"}, flags)
	})

	t.Run("guarantee inside window", func(t *testing.T) {
		flags := riskFlags(AtRiskProject{GuaranteeEnd: strPtr("2024-06-11")}, today)
		require.Equal(t, []string{"guarantee_due"}, flags)

		flags = riskFlags(AtRiskProject{GuaranteeEnd: strPtr("2024-06-12")}, today)
		require.Empty(t, flags)
	})

	t.Run("unpaid without dates", func(t *testing.T) {
		unpaid := "unpaid"
		flags := riskFlags(AtRiskProject{PaymentStatus: &unpaid}, today)
		require.Equal(t, []string{"payment_unpaid"}, flags)
	})

	t.Run("malformed dates are ignored", func(t *testing.T) {
		flags := riskFlags(AtRiskProject{
			EndDate:      strPtr("soon"),
			GuaranteeEnd: strPtr("2024-13-40"),
		}, today)
		require.Empty(t, flags)
	})
}
