package training

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/bbabur/immune-risk-next-sub001/internal/model"
	"github.com/bbabur/immune-risk-next-sub001/internal/repository"
)

// Service manages the labeled samples used to retrain the external predictor.
type Service struct {
	repo repository.TrainingSampleRepository
}

func NewService(repo repository.TrainingSampleRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, req *model.CreateTrainingSampleRequest) (*model.TrainingSample, error) {
	sample := &model.TrainingSample{
		MLFeatures: req.MLFeatures,
		Label:      req.Label,
		Source:     req.Source,
	}
	if err := s.repo.Create(ctx, sample); err != nil {
		return nil, fmt.Errorf("failed to create training sample: %w", err)
	}
	return sample, nil
}

func (s *Service) List(ctx context.Context) ([]*model.TrainingSample, error) {
	return s.repo.List(ctx)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
