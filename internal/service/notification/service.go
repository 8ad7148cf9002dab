package notification

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/bbabur/immune-risk-next-sub001/internal/model"
	"github.com/bbabur/immune-risk-next-sub001/internal/repository"
	"github.com/bbabur/immune-risk-next-sub001/pkg/logger"
	"github.com/bbabur/immune-risk-next-sub001/pkg/messaging"
)

// ChannelNotifications is the broker channel live consumers subscribe to.
const ChannelNotifications = "notifications"

type Service interface {
	Create(ctx context.Context, req *model.CreateNotificationRequest) (*model.Notification, error)
	List(ctx context.Context, unreadOnly bool) ([]*model.Notification, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo   repository.NotificationRepository
	broker messaging.Broker
	logger *logger.Logger
}

func NewService(repo repository.NotificationRepository, broker messaging.Broker, log *logger.Logger) Service {
	return &service{
		repo:   repo,
		broker: broker,
		logger: log,
	}
}

// Create stores the notification and publishes it for live consumers. A
// publish failure is logged but does not fail the request; the stored row is
// the source of truth.
func (s *service) Create(ctx context.Context, req *model.CreateNotificationRequest) (*model.Notification, error) {
	notification := &model.Notification{
		PatientID: req.PatientID,
		Level:     req.Level,
		Title:     req.Title,
		Message:   req.Message,
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	if s.broker != nil {
		if err := s.broker.Publish(ctx, ChannelNotifications, notification); err != nil {
			s.logger.Error(err, "failed to publish notification")
		}
	}
	return notification, nil
}

func (s *service) List(ctx context.Context, unreadOnly bool) ([]*model.Notification, error) {
	return s.repo.List(ctx, unreadOnly)
}

func (s *service) MarkRead(ctx context.Context, id uuid.UUID) error {
	return s.repo.MarkRead(ctx, id)
}
