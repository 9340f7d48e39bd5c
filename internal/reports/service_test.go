package reports

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type countingRepo struct {
	loads     int
	summaries []StationDaySummary
}

func (r *countingRepo) StationDaySummaries(ctx context.Context, day time.Time) ([]StationDaySummary, error) {
	r.loads++
	return r.summaries, nil
}

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute)
}

func sampleSummaries() []StationDaySummary {
	return []StationDaySummary{
		{StationCode: "AGR", Bookings: 3, Parcels: 7, BillTotal: 900, GrandTotal: 1062, Paid: 354, Pending: 708},
	}
}

func TestSummaryCacheHit(t *testing.T) {
	ctx := context.Background()
	repo := &countingRepo{summaries: sampleSummaries()}
	svc := NewService(repo, newTestCache(t))
	day := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)

	first, err := svc.StationDaySummaries(ctx, day)
	require.NoError(t, err)
	require.Len(t, first, 1)
	require.Equal(t, "AGR", first[0].StationCode)
	require.Equal(t, 1, repo.loads)

	// Second read is served from the cache.
	second, err := svc.StationDaySummaries(ctx, day)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, repo.loads)
}

func TestSummaryCacheBumpForcesRebuild(t *testing.T) {
	ctx := context.Background()
	repo := &countingRepo{summaries: sampleSummaries()}
	svc := NewService(repo, newTestCache(t))
	day := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)

	_, err := svc.StationDaySummaries(ctx, day)
	require.NoError(t, err)
	require.Equal(t, 1, repo.loads)

	require.NoError(t, svc.Invalidate(ctx))

	repo.summaries[0].Bookings = 5
	rebuilt, err := svc.StationDaySummaries(ctx, day)
	require.NoError(t, err)
	require.Equal(t, 5, rebuilt[0].Bookings)
	require.Equal(t, 2, repo.loads)
}

func TestDistinctDaysUseDistinctKeys(t *testing.T) {
	ctx := context.Background()
	repo := &countingRepo{summaries: sampleSummaries()}
	svc := NewService(repo, newTestCache(t))

	_, err := svc.StationDaySummaries(ctx, time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	_, err = svc.StationDaySummaries(ctx, time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Equal(t, 2, repo.loads)
}

func TestNilCacheClientPassesThrough(t *testing.T) {
	ctx := context.Background()
	repo := &countingRepo{summaries: sampleSummaries()}
	svc := NewService(repo, NewCache(nil, time.Minute))
	day := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)

	_, err := svc.StationDaySummaries(ctx, day)
	require.NoError(t, err)
	_, err = svc.StationDaySummaries(ctx, day)
	require.NoError(t, err)
	require.Equal(t, 2, repo.loads)
}
