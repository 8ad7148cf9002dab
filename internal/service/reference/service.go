package reference

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/bbabur/immune-risk-next-sub001/internal/model"
	"github.com/bbabur/immune-risk-next-sub001/internal/repository"
)

const (
	cacheKeyAntiHbs = "anti_hbs_references"
	cacheTTL        = 10 * time.Minute
)

// Service serves the anti-HBs reference table through an in-process cache.
// The table changes rarely; writes invalidate the cached copy.
type Service struct {
	repo  repository.ReferenceRepository
	cache *cache.Cache
}

func NewService(repo repository.ReferenceRepository) *Service {
	return &Service{
		repo:  repo,
		cache: cache.New(cacheTTL, 2*cacheTTL),
	}
}

func (s *Service) ListAntiHbs(ctx context.Context) ([]*model.AntiHbsReference, error) {
	if cached, found := s.cache.Get(cacheKeyAntiHbs); found {
		return cached.([]*model.AntiHbsReference), nil
	}

	refs, err := s.repo.ListAntiHbs(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.Set(cacheKeyAntiHbs, refs, cache.DefaultExpiration)
	return refs, nil
}

func (s *Service) UpsertAntiHbs(ctx context.Context, req *model.UpsertAntiHbsReferenceRequest) (*model.AntiHbsReference, error) {
	ref := &model.AntiHbsReference{
		AgeMinMonths: req.AgeMinMonths,
		AgeMaxMonths: req.AgeMaxMonths,
		Booster:      req.Booster,
		MinTiter:     req.MinTiter,
		MaxTiter:     req.MaxTiter,
		Unit:         req.Unit,
	}
	if err := s.repo.UpsertAntiHbs(ctx, ref); err != nil {
		return nil, err
	}
	s.cache.Delete(cacheKeyAntiHbs)
	return ref, nil
}

// ExpectedRange returns the reference band matching an age and booster
// status, or nil when no band covers the age.
func (s *Service) ExpectedRange(ctx context.Context, ageMonths int, booster bool) (*model.AntiHbsReference, error) {
	refs, err := s.ListAntiHbs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load references: %w", err)
	}
	for _, ref := range refs {
		if ref.Booster == booster && ageMonths >= ref.AgeMinMonths && ageMonths <= ref.AgeMaxMonths {
			return ref, nil
		}
	}
	return nil, nil
}
