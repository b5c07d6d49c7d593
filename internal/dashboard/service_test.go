package dashboard

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rediwater/rediwater/internal/boreholes"
	"github.com/rediwater/rediwater/internal/shared"
)

type mockRepo struct {
	snapshots     []Snapshot
	recent        int
	since         time.Time
	activity      []shared.Activity
	err           error
	snapshotCalls int
}

func (m *mockRepo) Snapshots(ctx context.Context) ([]Snapshot, error) {
	m.snapshotCalls++
	return m.snapshots, m.err
}

func (m *mockRepo) CountReadingsSince(ctx context.Context, since time.Time) (int, error) {
	m.since = since
	return m.recent, m.err
}

func (m *mockRepo) RecentActivity(ctx context.Context, limit int) ([]shared.Activity, error) {
	if m.err != nil {
		return nil, m.err
	}
	if len(m.activity) > limit {
		return m.activity[:limit], nil
	}
	return m.activity, nil
}

type recordingActivity struct {
	entries []shared.Activity
	err     error
}

func (r *recordingActivity) Record(ctx context.Context, a shared.Activity) error {
	r.entries = append(r.entries, a)
	return r.err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func lvl(v float64) *float64 { return &v }

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute), mr
}

func TestSummarise(t *testing.T) {
	at := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	m := Summarise([]Snapshot{
		{Status: boreholes.StatusActive, LatestLevel: lvl(50)},
		{Status: boreholes.StatusActive, LatestLevel: lvl(5)},
		{Status: boreholes.StatusMaintenance, LatestLevel: lvl(120.333)},
		{Status: boreholes.StatusInactive},
	}, 7, at)

	assert.Equal(t, 4, m.TotalBoreholes)
	assert.Equal(t, 2, m.ActiveBoreholes)
	assert.Equal(t, 58.44, m.AverageWaterLevel)
	assert.Equal(t, 2, m.Alerts)
	assert.Equal(t, 7, m.RecentReadings)
	assert.Equal(t, 2, m.BoreholesByStatus[boreholes.StatusActive])
	assert.Equal(t, 1, m.BoreholesByStatus[boreholes.StatusInactive])
	assert.Equal(t, 0, m.BoreholesByStatus[boreholes.StatusDecommissioned])
	assert.Len(t, m.BoreholesByStatus, 5)
}

func TestSummarise_Empty(t *testing.T) {
	m := Summarise(nil, 0, time.Now())
	assert.Zero(t, m.TotalBoreholes)
	assert.Zero(t, m.AverageWaterLevel)
	assert.Zero(t, m.Alerts)
}

func TestSummarise_ThresholdsAreExclusive(t *testing.T) {
	m := Summarise([]Snapshot{
		{Status: boreholes.StatusActive, LatestLevel: lvl(LowWaterLevel)},
		{Status: boreholes.StatusActive, LatestLevel: lvl(HighWaterLevel)},
	}, 0, time.Now())
	assert.Zero(t, m.Alerts)
}

func TestService_MetricsCachedUntilBump(t *testing.T) {
	cache, _ := newTestCache(t)
	repo := &mockRepo{snapshots: []Snapshot{{Status: boreholes.StatusActive, LatestLevel: lvl(20)}}, recent: 3}
	svc := NewService(repo, cache, quietLogger())
	svc.now = func() time.Time { return time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC) }

	first, err := svc.Metrics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, first.TotalBoreholes)
	assert.Equal(t, time.Date(2024, 2, 9, 0, 0, 0, 0, time.UTC), repo.since)

	repo.snapshots = append(repo.snapshots, Snapshot{Status: boreholes.StatusInactive})
	cached, err := svc.Metrics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, cached.TotalBoreholes)
	assert.Equal(t, 1, repo.snapshotCalls)

	recorder := InvalidatingRecorder{Next: &recordingActivity{}, Cache: cache}
	require.NoError(t, recorder.Record(context.Background(), shared.Activity{Type: shared.ActivityBoreholeCreated, EntityID: uuid.New(), Title: "BH"}))

	fresh, err := svc.Metrics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, fresh.TotalBoreholes)
	assert.Equal(t, 2, repo.snapshotCalls)
}

func TestService_MetricsWithoutCache(t *testing.T) {
	repo := &mockRepo{snapshots: []Snapshot{{Status: boreholes.StatusActive}}}
	svc := NewService(repo, nil, quietLogger())

	m, err := svc.Metrics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, m.ActiveBoreholes)
}

func TestService_MetricsFallsBackWhenRedisDown(t *testing.T) {
	cache, mr := newTestCache(t)
	mr.Close()
	repo := &mockRepo{snapshots: []Snapshot{{Status: boreholes.StatusActive}}}
	svc := NewService(repo, cache, quietLogger())

	m, err := svc.Metrics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, m.TotalBoreholes)
}

func TestService_MetricsRepositoryError(t *testing.T) {
	cache, _ := newTestCache(t)
	repo := &mockRepo{err: errors.New("db down")}
	svc := NewService(repo, cache, quietLogger())

	_, err := svc.Metrics(context.Background())
	assert.EqualError(t, err, "db down")
	assert.Equal(t, 1, repo.snapshotCalls)
}

func TestService_ActivityLimit(t *testing.T) {
	repo := &mockRepo{}
	for i := 0; i < 60; i++ {
		repo.activity = append(repo.activity, shared.Activity{ID: uuid.New()})
	}
	svc := NewService(repo, nil, quietLogger())

	items, err := svc.Activity(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, items, shared.MaxActivityItems)

	items, err = svc.Activity(context.Background(), 5)
	require.NoError(t, err)
	assert.Len(t, items, 5)

	items, err = NewService(&mockRepo{}, nil, quietLogger()).Activity(context.Background(), 10)
	require.NoError(t, err)
	assert.NotNil(t, items)
}

func TestInvalidatingRecorder_BumpsEvenWhenRecordFails(t *testing.T) {
	cache, _ := newTestCache(t)
	before, err := cache.Version(context.Background())
	require.NoError(t, err)

	recorder := InvalidatingRecorder{Next: &recordingActivity{err: errors.New("insert failed")}, Cache: cache}
	err = recorder.Record(context.Background(), shared.Activity{})
	assert.EqualError(t, err, "insert failed")

	after, err := cache.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, before+1, after)
}
