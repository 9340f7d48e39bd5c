// Package reports aggregates the day's business per station. Summaries are
// cached in Redis behind a version number and rebuilt through singleflight
// so a cold key triggers one database query, not one per request.
package reports

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"
)

// StationDaySummary is one station's totals for a day.
type StationDaySummary struct {
	StationCode string  `json:"station_code"`
	Date        string  `json:"date"`
	Bookings    int     `json:"bookings"`
	Parcels     int     `json:"parcels"`
	BillTotal   float64 `json:"bill_total"`
	GrandTotal  float64 `json:"grand_total"`
	Paid        float64 `json:"paid"`
	Pending     float64 `json:"pending"`
}

// Repository runs the aggregation queries.
type Repository interface {
	StationDaySummaries(ctx context.Context, day time.Time) ([]StationDaySummary, error)
}

// Service serves cached report reads.
type Service struct {
	repo  Repository
	cache *Cache
	group singleflight.Group
}

// NewService creates a new service.
func NewService(repo Repository, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache}
}

// StationDaySummaries returns per-station totals for the given day,
// rebuilding the cache entry at most once per key.
func (s *Service) StationDaySummaries(ctx context.Context, day time.Time) ([]StationDaySummary, error) {
	key, err := s.cache.BuildKey(ctx, "reports", "station_day", day.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("build cache key: %w", err)
	}

	result, err, _ := s.group.Do(key, func() (interface{}, error) {
		var summaries []StationDaySummary
		err := s.cache.FetchJSON(ctx, key, &summaries, func(ctx context.Context) (interface{}, error) {
			return s.repo.StationDaySummaries(ctx, day)
		})
		if err != nil {
			return nil, err
		}
		return summaries, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]StationDaySummary), nil
}

// Invalidate orphans all cached summaries.
func (s *Service) Invalidate(ctx context.Context) error {
	return s.cache.Bump(ctx)
}
