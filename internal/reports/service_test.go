package reports

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type totalsFake struct {
	totals []SubAccountTotal
	calls  int
}

func (f *totalsFake) SubAccountTotals(_ context.Context, _ int64, _, _ time.Time) ([]SubAccountTotal, error) {
	f.calls++
	return f.totals, nil
}

func cacheClient(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestTrialBalanceCachesSecondRead(t *testing.T) {
	repo := &totalsFake{totals: balancedTotals()}
	svc := NewService(repo, cacheClient(t), time.Minute, slog.Default())

	first, err := svc.TrialBalance(context.Background(), 1, time.Time{}, time.Time{})
	require.NoError(t, err)
	second, err := svc.TrialBalance(context.Background(), 1, time.Time{}, time.Time{})
	require.NoError(t, err)

	require.Equal(t, 1, repo.calls, "second read must come from the cache")
	require.True(t, first.TotalDebit.Equal(second.TotalDebit))
	require.Len(t, second.Rows, len(first.Rows))
}

func TestTrialBalanceCacheKeyedByRange(t *testing.T) {
	repo := &totalsFake{totals: balancedTotals()}
	svc := NewService(repo, cacheClient(t), time.Minute, slog.Default())

	_, err := svc.TrialBalance(context.Background(), 1, time.Time{}, time.Time{})
	require.NoError(t, err)
	_, err = svc.TrialBalance(context.Background(), 1,
		time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	require.Equal(t, 2, repo.calls, "a different range is a different cache entry")
}

func TestTrialBalanceWorksWithoutCache(t *testing.T) {
	repo := &totalsFake{totals: balancedTotals()}
	svc := NewService(repo, nil, time.Minute, slog.Default())

	_, err := svc.TrialBalance(context.Background(), 1, time.Time{}, time.Time{})
	require.NoError(t, err)
	_, err = svc.TrialBalance(context.Background(), 1, time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Equal(t, 2, repo.calls)
}

func TestBalanceSheetCaches(t *testing.T) {
	repo := &totalsFake{totals: balancedTotals()}
	svc := NewService(repo, cacheClient(t), time.Minute, slog.Default())
	asOf := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	first, err := svc.BalanceSheet(context.Background(), 1, asOf)
	require.NoError(t, err)
	second, err := svc.BalanceSheet(context.Background(), 1, asOf)
	require.NoError(t, err)
	require.Equal(t, 1, repo.calls)
	require.True(t, first.TotalAssets.Equal(second.TotalAssets))
}

func TestWarmPopulatesCache(t *testing.T) {
	repo := &totalsFake{totals: balancedTotals()}
	svc := NewService(repo, cacheClient(t), time.Minute, slog.Default())

	require.NoError(t, svc.Warm(context.Background(), 1))
	warmed := repo.calls

	_, err := svc.TrialBalance(context.Background(), 1, time.Time{}, time.Time{})
	require.NoError(t, err)
	_, err = svc.BalanceSheet(context.Background(), 1, time.Now())
	require.NoError(t, err)
	require.Equal(t, warmed, repo.calls, "warmed reports serve from cache")
}
