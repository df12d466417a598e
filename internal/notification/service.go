package notification

import (
	"context"

	"bookshare_backend/internal/common"
	"bookshare_backend/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service exposes a user's notification inbox.
type Service interface {
	GetNotificationsForUser(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]domain.Notification, *common.Pagination, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkNotificationAsRead(ctx context.Context, notificationID, userID uuid.UUID) error
	MarkAllUserNotificationsAsRead(ctx context.Context, userID uuid.UUID) (int64, error)
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

// NewService creates a notification service.
func NewService(repo Repository, logger *zap.Logger) Service {
	return &service{repo: repo, logger: logger}
}

func (s *service) GetNotificationsForUser(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]domain.Notification, *common.Pagination, error) {
	list, pagination, err := s.repo.GetByUserID(ctx, userID, page, pageSize)
	if err != nil {
		s.logger.Error("Failed to list notifications", zap.Error(err), zap.String("userID", userID.String()))
		return nil, nil, common.ErrInternalServer.WithDetails("Could not retrieve notifications.")
	}
	return list, pagination, nil
}

func (s *service) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	n, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to count unread notifications", zap.Error(err), zap.String("userID", userID.String()))
		return 0, common.ErrInternalServer.WithDetails("Could not count notifications.")
	}
	return n, nil
}

func (s *service) MarkNotificationAsRead(ctx context.Context, notificationID, userID uuid.UUID) error {
	if err := s.repo.MarkAsRead(ctx, notificationID, userID); err != nil {
		if _, ok := common.IsAPIError(err); ok {
			return err
		}
		s.logger.Error("Failed to mark notification read", zap.Error(err), zap.String("notificationID", notificationID.String()))
		return common.ErrInternalServer.WithDetails("Could not update the notification.")
	}
	return nil
}

func (s *service) MarkAllUserNotificationsAsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	n, err := s.repo.MarkAllAsRead(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to mark all notifications read", zap.Error(err), zap.String("userID", userID.String()))
		return 0, common.ErrInternalServer.WithDetails("Could not mark all notifications as read.")
	}
	return n, nil
}
