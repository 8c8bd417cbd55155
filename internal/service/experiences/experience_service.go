package experiences

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Domenick1991/bookit/internal/domain"
	"github.com/Domenick1991/bookit/internal/repository"
	"github.com/google/uuid"
)

type ExperienceUseCase interface {
	List(ctx context.Context) ([]domain.Experience, error)
	GetByID(ctx context.Context, id string) (*domain.Experience, error)
}

// ListCache holds experience summaries. Slot state is never cached.
type ListCache interface {
	GetExperiences(ctx context.Context) ([]domain.Experience, error)
	SetExperiences(ctx context.Context, experiences []domain.Experience) error
}

type ExperienceService struct {
	log   *slog.Logger
	repo  repository.ExperienceRepository
	cache ListCache
}

// NewExperienceService accepts a nil cache.
func NewExperienceService(log *slog.Logger, repo repository.ExperienceRepository, cache ListCache) *ExperienceService {
	return &ExperienceService{log: log, repo: repo, cache: cache}
}

func (s *ExperienceService) List(ctx context.Context) ([]domain.Experience, error) {
	if s.cache != nil {
		cached, err := s.cache.GetExperiences(ctx)
		if err == nil && cached != nil {
			return cached, nil
		}
		if err != nil {
			s.log.WarnContext(ctx, "experiences cache read failed", "err", err)
		}
	}

	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreFault, err)
	}
	for i := range list {
		list[i].Slots = nil
	}
	if s.cache != nil {
		if err := s.cache.SetExperiences(ctx, list); err != nil {
			s.log.WarnContext(ctx, "experiences cache write failed", "err", err)
		}
	}
	return list, nil
}

func (s *ExperienceService) GetByID(ctx context.Context, id string) (*domain.Experience, error) {
	if err := uuid.Validate(id); err != nil {
		return nil, fmt.Errorf("%w: experience id must be a UUID", domain.ErrInvalidInput)
	}
	exp, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrExperienceNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreFault, err)
	}
	return exp, nil
}

var _ ExperienceUseCase = (*ExperienceService)(nil)
