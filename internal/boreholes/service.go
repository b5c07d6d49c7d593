package boreholes

import (
	"context"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/rediwater/rediwater/internal/format"
	"github.com/rediwater/rediwater/internal/platform/httpx"
	"github.com/rediwater/rediwater/internal/shared"
)

// Service holds borehole business rules.
type Service struct {
	repo      Repository
	activity  shared.ActivityRecorder
	logger    *slog.Logger
	validator *validator.Validate
}

// NewService builds Service instance. activity may be nil.
func NewService(repo Repository, activity shared.ActivityRecorder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, activity: activity, logger: logger, validator: httpx.NewValidator()}
}

func (s *Service) List(ctx context.Context, params shared.ListParams, filters ListFilters) ([]BoreholeWithLatestReading, int, error) {
	return s.repo.List(ctx, params, filters)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (Borehole, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, in BoreholeInput) (Borehole, error) {
	record, err := s.toBorehole(in)
	if err != nil {
		return Borehole{}, err
	}
	created, err := s.repo.Create(ctx, record)
	if err != nil {
		return Borehole{}, err
	}
	s.record(ctx, shared.ActivityBoreholeCreated, created, "New borehole created at "+siteLabel(created))
	return created, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, in BoreholeInput) (Borehole, error) {
	record, err := s.toBorehole(in)
	if err != nil {
		return Borehole{}, err
	}
	updated, err := s.repo.Update(ctx, id, record)
	if err != nil {
		return Borehole{}, err
	}
	s.record(ctx, shared.ActivityBoreholeUpdated, updated, "Borehole updated, status "+format.SnakeToTitle(updated.Status))
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if err := shared.NotifyChange(ctx, s.activity, "borehole"); err != nil {
		s.logger.Warn("notify borehole delete", slog.Any("error", err), slog.String("borehole_id", id.String()))
	}
	return nil
}

func (s *Service) record(ctx context.Context, kind shared.ActivityType, b Borehole, description string) {
	if s.activity == nil {
		return
	}
	entry := shared.Activity{
		Type:        kind,
		Title:       b.Name,
		Description: description,
		EntityID:    b.ID,
		Timestamp:   b.UpdatedAt,
	}
	if id, ok := shared.IdentityFromContext(ctx); ok {
		entry.ActorID = id.UserID
	}
	if err := s.activity.Record(ctx, entry); err != nil {
		s.logger.Warn("record borehole activity", slog.Any("error", err), slog.String("borehole_id", b.ID.String()))
	}
}

func siteLabel(b Borehole) string {
	if b.SiteName != "" {
		return b.SiteName
	}
	return "site " + b.SiteID.String()
}
