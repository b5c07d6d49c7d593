package dashboard

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rediwater/rediwater/internal/boreholes"
	"github.com/rediwater/rediwater/internal/platform/httpx"
	"github.com/rediwater/rediwater/internal/shared"
)

type deletableBoreholes struct {
	ids map[uuid.UUID]bool
}

func (d *deletableBoreholes) List(ctx context.Context, params shared.ListParams, filters boreholes.ListFilters) ([]boreholes.BoreholeWithLatestReading, int, error) {
	return nil, 0, nil
}

func (d *deletableBoreholes) Get(ctx context.Context, id uuid.UUID) (boreholes.Borehole, error) {
	return boreholes.Borehole{}, httpx.ErrNotFound
}

func (d *deletableBoreholes) Create(ctx context.Context, b boreholes.Borehole) (boreholes.Borehole, error) {
	return b, nil
}

func (d *deletableBoreholes) Update(ctx context.Context, id uuid.UUID, b boreholes.Borehole) (boreholes.Borehole, error) {
	return b, nil
}

func (d *deletableBoreholes) Delete(ctx context.Context, id uuid.UUID) error {
	if !d.ids[id] {
		return httpx.ErrNotFound
	}
	delete(d.ids, id)
	return nil
}

func TestInvalidatingRecorder_ChangedBumpsVersion(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()
	before, err := cache.Version(ctx)
	require.NoError(t, err)

	recorder := InvalidatingRecorder{Next: &recordingActivity{}, Cache: cache}
	require.NoError(t, recorder.Changed(ctx, "site"))

	after, err := cache.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, before+1, after)
}

func TestBoreholeDeleteInvalidatesMetrics(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()
	id := uuid.New()
	repo := &deletableBoreholes{ids: map[uuid.UUID]bool{id: true}}
	svc := boreholes.NewService(repo, InvalidatingRecorder{Cache: cache}, quietLogger())

	before, err := cache.Version(ctx)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, id))
	afterDelete, err := cache.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, before+1, afterDelete)

	assert.ErrorIs(t, svc.Delete(ctx, id), httpx.ErrNotFound)
	afterMiss, err := cache.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, afterDelete, afterMiss)
}

func TestCache_NilIsNoop(t *testing.T) {
	var cache *Cache
	ctx := context.Background()

	ver, err := cache.Version(ctx)
	require.NoError(t, err)
	assert.Zero(t, ver)
	assert.NoError(t, cache.Bump(ctx))

	key, err := cache.Key(ctx, "metrics")
	require.NoError(t, err)
	assert.Equal(t, "rediwater:dashboard:metrics", key)
}
