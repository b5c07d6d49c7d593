package dashboard

import (
	"context"
	"log/slog"
	"time"

	"github.com/rediwater/rediwater/internal/boreholes"
	"github.com/rediwater/rediwater/internal/format"
	"github.com/rediwater/rediwater/internal/shared"
)

// Service computes dashboard metrics and the activity feed.
type Service struct {
	repo   Repository
	cache  *Cache
	logger *slog.Logger
	now    func() time.Time
}

// NewService builds Service instance. A nil cache disables caching.
func NewService(repo Repository, cache *Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, cache: cache, logger: logger, now: time.Now}
}

// Metrics returns the cached summary, computing it on a miss. A cache
// failure falls back to computing directly.
func (s *Service) Metrics(ctx context.Context) (Metrics, error) {
	key, err := s.cache.Key(ctx, "metrics")
	if err == nil {
		var out Metrics
		var loadErr error
		err = s.cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (any, error) {
			m, err := s.compute(ctx)
			loadErr = err
			return m, err
		})
		if err == nil {
			return out, nil
		}
		if loadErr != nil {
			return Metrics{}, loadErr
		}
	}
	s.logger.Warn("dashboard cache unavailable", slog.Any("error", err))
	return s.compute(ctx)
}

func (s *Service) compute(ctx context.Context) (Metrics, error) {
	snapshots, err := s.repo.Snapshots(ctx)
	if err != nil {
		return Metrics{}, err
	}
	now := s.now().UTC()
	since := now.Truncate(24*time.Hour).AddDate(0, 0, -format.RecentReadingDays)
	recent, err := s.repo.CountReadingsSince(ctx, since)
	if err != nil {
		return Metrics{}, err
	}
	return Summarise(snapshots, recent, now), nil
}

// Summarise folds borehole snapshots into Metrics.
func Summarise(snapshots []Snapshot, recentReadings int, at time.Time) Metrics {
	m := Metrics{
		TotalBoreholes:    len(snapshots),
		BoreholesByStatus: make(map[string]int, len(boreholes.Statuses())),
		RecentReadings:    recentReadings,
		GeneratedAt:       at,
	}
	for _, status := range boreholes.Statuses() {
		m.BoreholesByStatus[status] = 0
	}

	var sum float64
	var measured int
	for _, s := range snapshots {
		m.BoreholesByStatus[s.Status]++
		if s.Status == boreholes.StatusActive {
			m.ActiveBoreholes++
		}
		if s.LatestLevel == nil {
			continue
		}
		level := *s.LatestLevel
		sum += level
		measured++
		if level < LowWaterLevel || level > HighWaterLevel {
			m.Alerts++
		}
	}
	if measured > 0 {
		m.AverageWaterLevel = format.Round(sum/float64(measured), 2)
	}
	return m
}

// Activity returns the newest feed entries, capped at shared.MaxActivityItems.
func (s *Service) Activity(ctx context.Context, limit int) ([]shared.Activity, error) {
	if limit <= 0 || limit > shared.MaxActivityItems {
		limit = shared.MaxActivityItems
	}
	items, err := s.repo.RecentActivity(ctx, limit)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []shared.Activity{}
	}
	return items, nil
}
