package sites

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rediwater/rediwater/internal/platform/httpx"
	"github.com/rediwater/rediwater/internal/shared"
)

type mockRepository struct {
	sites     map[uuid.UUID]*Site
	boreholes map[uuid.UUID]int
}

func newMockRepository() *mockRepository {
	return &mockRepository{sites: make(map[uuid.UUID]*Site), boreholes: make(map[uuid.UUID]int)}
}

func (m *mockRepository) List(ctx context.Context, params shared.ListParams) ([]SiteWithBoreholeCount, int, error) {
	out := []SiteWithBoreholeCount{}
	for _, s := range m.sites {
		if params.Search != "" && !strings.Contains(strings.ToLower(s.Name), strings.ToLower(params.Search)) {
			continue
		}
		out = append(out, SiteWithBoreholeCount{Site: *s, BoreholeCount: m.boreholes[s.ID]})
	}
	return out, len(out), nil
}

func (m *mockRepository) Get(ctx context.Context, id uuid.UUID) (Site, error) {
	s, ok := m.sites[id]
	if !ok {
		return Site{}, httpx.ErrNotFound
	}
	return *s, nil
}

func (m *mockRepository) Create(ctx context.Context, in SiteInput) (Site, error) {
	for _, s := range m.sites {
		if s.Name == in.Name {
			return Site{}, httpx.ErrDuplicate
		}
	}
	now := time.Now()
	s := Site{ID: uuid.New(), Name: in.Name, CreatedAt: now, UpdatedAt: now}
	m.sites[s.ID] = &s
	return s, nil
}

func (m *mockRepository) Update(ctx context.Context, id uuid.UUID, in SiteInput) (Site, error) {
	s, ok := m.sites[id]
	if !ok {
		return Site{}, httpx.ErrNotFound
	}
	s.Name = in.Name
	s.UpdatedAt = time.Now()
	return *s, nil
}

func (m *mockRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.sites[id]; !ok {
		return httpx.ErrNotFound
	}
	if m.boreholes[id] > 0 {
		return httpx.ErrConflict
	}
	delete(m.sites, id)
	return nil
}

type recordingActivity struct {
	entries []shared.Activity
	changes []string
	err     error
}

func (r *recordingActivity) Changed(ctx context.Context, entityType string) error {
	if r.err != nil {
		return r.err
	}
	r.changes = append(r.changes, entityType)
	return nil
}

func (r *recordingActivity) Record(ctx context.Context, a shared.Activity) error {
	if r.err != nil {
		return r.err
	}
	r.entries = append(r.entries, a)
	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestService_CreateRecordsActivity(t *testing.T) {
	repo := newMockRepository()
	activity := &recordingActivity{}
	svc := NewService(repo, activity, quietLogger())

	actor := uuid.New()
	ctx := shared.ContextWithIdentity(context.Background(), shared.Identity{UserID: actor, Method: shared.AuthSession})
	site, err := svc.Create(ctx, SiteInput{Name: "  North Mine  "})
	require.NoError(t, err)
	assert.Equal(t, "North Mine", site.Name)

	require.Len(t, activity.entries, 1)
	entry := activity.entries[0]
	assert.Equal(t, shared.ActivitySiteCreated, entry.Type)
	assert.Equal(t, site.ID, entry.EntityID)
	assert.Equal(t, actor, entry.ActorID)
	assert.Equal(t, "New site created: North Mine", entry.Description)
}

func TestService_UpdateRecordsActivity(t *testing.T) {
	repo := newMockRepository()
	activity := &recordingActivity{}
	svc := NewService(repo, activity, quietLogger())

	site, err := svc.Create(context.Background(), SiteInput{Name: "North"})
	require.NoError(t, err)
	_, err = svc.Update(context.Background(), site.ID, SiteInput{Name: "North Field"})
	require.NoError(t, err)

	require.Len(t, activity.entries, 2)
	assert.Equal(t, shared.ActivitySiteUpdated, activity.entries[1].Type)
	assert.Equal(t, "North Field", activity.entries[1].Title)
}

func TestService_Validation(t *testing.T) {
	svc := NewService(newMockRepository(), nil, quietLogger())

	_, err := svc.Create(context.Background(), SiteInput{Name: "   "})
	var verr *httpx.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "name")

	_, err = svc.Create(context.Background(), SiteInput{Name: strings.Repeat("x", 201)})
	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestService_ActivityFailureDoesNotFailWrite(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, &recordingActivity{err: errors.New("activity_log missing")}, quietLogger())

	site, err := svc.Create(context.Background(), SiteInput{Name: "South"})
	require.NoError(t, err)
	assert.Contains(t, repo.sites, site.ID)
}

func TestService_DeleteWithBoreholes(t *testing.T) {
	repo := newMockRepository()
	activity := &recordingActivity{}
	svc := NewService(repo, activity, quietLogger())

	site, err := svc.Create(context.Background(), SiteInput{Name: "East"})
	require.NoError(t, err)
	repo.boreholes[site.ID] = 2

	assert.ErrorIs(t, svc.Delete(context.Background(), site.ID), httpx.ErrConflict)
	assert.Empty(t, activity.changes)
	repo.boreholes[site.ID] = 0
	assert.NoError(t, svc.Delete(context.Background(), site.ID))
	assert.Equal(t, []string{"site"}, activity.changes)
	assert.ErrorIs(t, svc.Delete(context.Background(), site.ID), httpx.ErrNotFound)
	assert.Len(t, activity.changes, 1)
}
