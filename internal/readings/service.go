package readings

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/rediwater/rediwater/internal/format"
	"github.com/rediwater/rediwater/internal/platform/httpx"
	"github.com/rediwater/rediwater/internal/shared"
)

// Service holds water-level reading rules.
type Service struct {
	repo      Repository
	activity  shared.ActivityRecorder
	logger    *slog.Logger
	validator *validator.Validate
	now       func() time.Time
}

// NewService builds Service instance. activity may be nil.
func NewService(repo Repository, activity shared.ActivityRecorder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, activity: activity, logger: logger, validator: httpx.NewValidator(), now: time.Now}
}

// List returns a borehole's readings, optionally limited to a date range.
func (s *Service) List(ctx context.Context, boreholeID uuid.UUID, dates Range, params shared.ListParams) ([]Reading, int, error) {
	if dates.From != nil && dates.To != nil && dates.From.After(*dates.To) {
		return nil, 0, httpx.NewValidationError("from", "Must not be after to")
	}
	return s.repo.List(ctx, boreholeID, dates, params)
}

// Get returns one reading.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Reading, error) {
	return s.repo.Get(ctx, id)
}

// Create stores a reading for boreholeID. One reading per borehole and day.
func (s *Service) Create(ctx context.Context, boreholeID uuid.UUID, in ReadingInput) (Reading, error) {
	date, err := s.validate(in)
	if err != nil {
		return Reading{}, err
	}
	reading, err := s.repo.Create(ctx, boreholeID, date, *in.WaterLevel)
	if err != nil {
		return Reading{}, err
	}
	s.record(ctx, shared.ActivityWaterLevelReading, "Water level recorded: ", reading)
	return reading, nil
}

// Update replaces the date and level of a reading.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in ReadingInput) (Reading, error) {
	date, err := s.validate(in)
	if err != nil {
		return Reading{}, err
	}
	reading, err := s.repo.Update(ctx, id, date, *in.WaterLevel)
	if err != nil {
		return Reading{}, err
	}
	s.record(ctx, shared.ActivityWaterLevelUpdated, "Water level updated: ", reading)
	return reading, nil
}

// Delete removes a reading. Deletes leave no feed entry but still count as a
// change for the dashboard.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if err := shared.NotifyChange(ctx, s.activity, "water_level_reading"); err != nil {
		s.logger.Warn("notify reading delete", slog.Any("error", err), slog.String("reading_id", id.String()))
	}
	return nil
}

// validate checks the payload and returns the reading day. Readings dated
// after today are refused.
func (s *Service) validate(in ReadingInput) (time.Time, error) {
	if err := s.validator.Struct(in); err != nil {
		return time.Time{}, httpx.FromValidator(err)
	}
	date, err := time.Parse(format.InputLayout, in.Date)
	if err != nil {
		return time.Time{}, httpx.NewValidationError("date", "Must be a date formatted as "+format.InputLayout)
	}
	today := s.now().UTC().Truncate(24 * time.Hour)
	if date.After(today) {
		return time.Time{}, httpx.NewValidationError("date", "Cannot be in the future")
	}
	return date, nil
}

func (s *Service) record(ctx context.Context, kind shared.ActivityType, prefix string, reading Reading) {
	if s.activity == nil {
		return
	}
	title := reading.BoreholeName
	if title == "" {
		title = "Borehole " + reading.BoreholeID.String()
	}
	entry := shared.Activity{
		Type:        kind,
		Title:       title,
		Description: prefix + format.WithUnit(&reading.WaterLevel, "m", 2),
		EntityID:    reading.ID,
		Timestamp:   reading.UpdatedAt,
	}
	if id, ok := shared.IdentityFromContext(ctx); ok {
		entry.ActorID = id.UserID
	}
	if err := s.activity.Record(ctx, entry); err != nil {
		s.logger.Warn("record reading activity", slog.Any("error", err), slog.String("reading_id", reading.ID.String()))
	}
}
