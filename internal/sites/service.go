package sites

import (
	"context"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/rediwater/rediwater/internal/platform/httpx"
	"github.com/rediwater/rediwater/internal/shared"
)

// Service holds site business rules.
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

func (s *Service) List(ctx context.Context, params shared.ListParams) ([]SiteWithBoreholeCount, int, error) {
	return s.repo.List(ctx, params)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (Site, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, in SiteInput) (Site, error) {
	in, err := s.validate(in)
	if err != nil {
		return Site{}, err
	}
	site, err := s.repo.Create(ctx, in)
	if err != nil {
		return Site{}, err
	}
	s.record(ctx, shared.ActivitySiteCreated, site, "New site created: "+site.Name)
	return site, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, in SiteInput) (Site, error) {
	in, err := s.validate(in)
	if err != nil {
		return Site{}, err
	}
	site, err := s.repo.Update(ctx, id, in)
	if err != nil {
		return Site{}, err
	}
	s.record(ctx, shared.ActivitySiteUpdated, site, "Site updated: "+site.Name)
	return site, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if err := shared.NotifyChange(ctx, s.activity, "site"); err != nil {
		s.logger.Warn("notify site delete", slog.Any("error", err), slog.String("site_id", id.String()))
	}
	return nil
}

// record writes a feed entry. A failure is logged and never fails the write
// it describes.
func (s *Service) record(ctx context.Context, kind shared.ActivityType, site Site, description string) {
	if s.activity == nil {
		return
	}
	entry := shared.Activity{
		Type:        kind,
		Title:       site.Name,
		Description: description,
		EntityID:    site.ID,
		Timestamp:   site.UpdatedAt,
	}
	if id, ok := shared.IdentityFromContext(ctx); ok {
		entry.ActorID = id.UserID
	}
	if err := s.activity.Record(ctx, entry); err != nil {
		s.logger.Warn("record site activity", slog.Any("error", err), slog.String("site_id", site.ID.String()))
	}
}
