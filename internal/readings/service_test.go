package readings

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rediwater/rediwater/internal/format"
	"github.com/rediwater/rediwater/internal/platform/httpx"
	"github.com/rediwater/rediwater/internal/shared"
)

type mockRepository struct {
	boreholes map[uuid.UUID]string
	readings  map[uuid.UUID]*Reading
}

func newMockRepository() *mockRepository {
	return &mockRepository{boreholes: make(map[uuid.UUID]string), readings: make(map[uuid.UUID]*Reading)}
}

func (m *mockRepository) addBorehole(name string) uuid.UUID {
	id := uuid.New()
	m.boreholes[id] = name
	return id
}

func (m *mockRepository) List(ctx context.Context, boreholeID uuid.UUID, dates Range, params shared.ListParams) ([]Reading, int, error) {
	out := []Reading{}
	for _, rd := range m.readings {
		if rd.BoreholeID != boreholeID {
			continue
		}
		day, _ := time.Parse(format.InputLayout, rd.Date)
		if dates.From != nil && day.Before(*dates.From) {
			continue
		}
		if dates.To != nil && day.After(*dates.To) {
			continue
		}
		out = append(out, *rd)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, len(out), nil
}

func (m *mockRepository) Get(ctx context.Context, id uuid.UUID) (Reading, error) {
	rd, ok := m.readings[id]
	if !ok {
		return Reading{}, httpx.ErrNotFound
	}
	return *rd, nil
}

func (m *mockRepository) Create(ctx context.Context, boreholeID uuid.UUID, date time.Time, level float64) (Reading, error) {
	name, ok := m.boreholes[boreholeID]
	if !ok {
		return Reading{}, httpx.ErrNotFound
	}
	day := date.Format(format.InputLayout)
	for _, rd := range m.readings {
		if rd.BoreholeID == boreholeID && rd.Date == day {
			return Reading{}, httpx.ErrDuplicate
		}
	}
	now := time.Now()
	rd := Reading{ID: uuid.New(), BoreholeID: boreholeID, BoreholeName: name, Date: day, WaterLevel: level, CreatedAt: now, UpdatedAt: now}
	m.readings[rd.ID] = &rd
	return rd, nil
}

func (m *mockRepository) Update(ctx context.Context, id uuid.UUID, date time.Time, level float64) (Reading, error) {
	rd, ok := m.readings[id]
	if !ok {
		return Reading{}, httpx.ErrNotFound
	}
	rd.Date = date.Format(format.InputLayout)
	rd.WaterLevel = level
	rd.UpdatedAt = time.Now()
	return *rd, nil
}

func (m *mockRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.readings[id]; !ok {
		return httpx.ErrNotFound
	}
	delete(m.readings, id)
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

func level(v float64) *float64 { return &v }

func fixedClock(svc *Service, day string) {
	t, _ := time.Parse(format.InputLayout, day)
	svc.now = func() time.Time { return t.Add(15 * time.Hour) }
}

func TestService_CreateRecordsActivity(t *testing.T) {
	repo := newMockRepository()
	bh := repo.addBorehole("BH-01")
	activity := &recordingActivity{}
	svc := NewService(repo, activity, quietLogger())
	fixedClock(svc, "2024-03-10")

	actor := uuid.New()
	ctx := shared.ContextWithIdentity(context.Background(), shared.Identity{UserID: actor, Method: shared.AuthSession})
	rd, err := svc.Create(ctx, bh, ReadingInput{Date: "2024-03-10", WaterLevel: level(42.5)})
	require.NoError(t, err)
	assert.Equal(t, "2024-03-10", rd.Date)
	assert.Equal(t, 42.5, rd.WaterLevel)

	require.Len(t, activity.entries, 1)
	entry := activity.entries[0]
	assert.Equal(t, shared.ActivityWaterLevelReading, entry.Type)
	assert.Equal(t, "BH-01", entry.Title)
	assert.Equal(t, "Water level recorded: 42.50 m", entry.Description)
	assert.Equal(t, rd.ID, entry.EntityID)
	assert.Equal(t, actor, entry.ActorID)
}

func TestService_UpdateRecordsActivity(t *testing.T) {
	repo := newMockRepository()
	bh := repo.addBorehole("BH-02")
	activity := &recordingActivity{}
	svc := NewService(repo, activity, quietLogger())
	fixedClock(svc, "2024-03-10")

	rd, err := svc.Create(context.Background(), bh, ReadingInput{Date: "2024-03-09", WaterLevel: level(10)})
	require.NoError(t, err)
	updated, err := svc.Update(context.Background(), rd.ID, ReadingInput{Date: "2024-03-08", WaterLevel: level(11)})
	require.NoError(t, err)
	assert.Equal(t, "2024-03-08", updated.Date)
	assert.Equal(t, 11.0, updated.WaterLevel)

	require.Len(t, activity.entries, 2)
	assert.Equal(t, shared.ActivityWaterLevelUpdated, activity.entries[1].Type)
	assert.Equal(t, "Water level updated: 11.00 m", activity.entries[1].Description)
	assert.Equal(t, rd.ID, activity.entries[1].EntityID)
}

func TestService_Validation(t *testing.T) {
	repo := newMockRepository()
	bh := repo.addBorehole("BH-03")
	svc := NewService(repo, nil, quietLogger())
	fixedClock(svc, "2024-03-10")

	tests := []struct {
		name  string
		in    ReadingInput
		field string
	}{
		{"missing date", ReadingInput{WaterLevel: level(1)}, "date"},
		{"bad date", ReadingInput{Date: "10/03/2024", WaterLevel: level(1)}, "date"},
		{"missing level", ReadingInput{Date: "2024-03-01"}, "water_level"},
		{"future date", ReadingInput{Date: "2024-03-11", WaterLevel: level(1)}, "date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), bh, tt.in)
			var verr *httpx.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tt.field)
		})
	}

	_, err := svc.Create(context.Background(), bh, ReadingInput{Date: "2024-03-10", WaterLevel: level(0)})
	assert.NoError(t, err, "zero is a valid level and today is not in the future")
}

func TestService_CreateErrors(t *testing.T) {
	repo := newMockRepository()
	bh := repo.addBorehole("BH-04")
	svc := NewService(repo, nil, quietLogger())
	fixedClock(svc, "2024-03-10")

	_, err := svc.Create(context.Background(), uuid.New(), ReadingInput{Date: "2024-03-01", WaterLevel: level(1)})
	assert.ErrorIs(t, err, httpx.ErrNotFound)

	_, err = svc.Create(context.Background(), bh, ReadingInput{Date: "2024-03-01", WaterLevel: level(1)})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), bh, ReadingInput{Date: "2024-03-01", WaterLevel: level(2)})
	assert.ErrorIs(t, err, httpx.ErrDuplicate)
}

func TestService_ListRange(t *testing.T) {
	repo := newMockRepository()
	bh := repo.addBorehole("BH-05")
	svc := NewService(repo, nil, quietLogger())
	fixedClock(svc, "2024-03-10")

	for _, day := range []string{"2024-03-01", "2024-03-05", "2024-03-09"} {
		_, err := svc.Create(context.Background(), bh, ReadingInput{Date: day, WaterLevel: level(5)})
		require.NoError(t, err)
	}

	from, _ := time.Parse(format.InputLayout, "2024-03-02")
	to, _ := time.Parse(format.InputLayout, "2024-03-09")
	items, total, err := svc.List(context.Background(), bh, Range{From: &from, To: &to}, shared.ListParams{Page: 1, PageSize: 20})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, "2024-03-09", items[0].Date)

	_, _, err = svc.List(context.Background(), bh, Range{From: &to, To: &from}, shared.ListParams{Page: 1, PageSize: 20})
	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestService_ActivityFailureDoesNotFailWrite(t *testing.T) {
	repo := newMockRepository()
	bh := repo.addBorehole("BH-06")
	svc := NewService(repo, &recordingActivity{err: errors.New("insert failed")}, quietLogger())
	fixedClock(svc, "2024-03-10")

	rd, err := svc.Create(context.Background(), bh, ReadingInput{Date: "2024-03-10", WaterLevel: level(3)})
	require.NoError(t, err)
	assert.Contains(t, repo.readings, rd.ID)
}

func TestService_DeleteNotifiesChange(t *testing.T) {
	repo := newMockRepository()
	bh := repo.addBorehole("BH-07")
	activity := &recordingActivity{}
	svc := NewService(repo, activity, quietLogger())
	fixedClock(svc, "2024-03-10")

	rd, err := svc.Create(context.Background(), bh, ReadingInput{Date: "2024-03-10", WaterLevel: level(8)})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), rd.ID))
	assert.Equal(t, []string{"water_level_reading"}, activity.changes)
	assert.Len(t, activity.entries, 1)

	assert.ErrorIs(t, svc.Delete(context.Background(), rd.ID), httpx.ErrNotFound)
	assert.Len(t, activity.changes, 1)
}

func TestService_DeleteNotifyFailureDoesNotFailDelete(t *testing.T) {
	repo := newMockRepository()
	bh := repo.addBorehole("BH-08")
	svc := NewService(repo, nil, quietLogger())
	fixedClock(svc, "2024-03-10")

	rd, err := svc.Create(context.Background(), bh, ReadingInput{Date: "2024-03-10", WaterLevel: level(8)})
	require.NoError(t, err)

	svc.activity = &recordingActivity{err: errors.New("redis down")}
	assert.NoError(t, svc.Delete(context.Background(), rd.ID))
	assert.NotContains(t, repo.readings, rd.ID)
}
