package notification

import (
	"context"
	"errors"
	"fmt"

	"bookshare_backend/internal/common"
	"bookshare_backend/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository reads and acknowledges notifications. They are written by the
// orchestrator in the same unit as the transition that caused them.
type Repository interface {
	GetByUserID(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]domain.Notification, *common.Pagination, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkAsRead(ctx context.Context, notificationID, userID uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error)
}

// GORMRepository implements the Repository interface using GORM.
type GORMRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM notification repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &GORMRepository{db: db}
}

// GetByUserID retrieves a page of a user's notifications, newest first.
func (r *GORMRepository) GetByUserID(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]domain.Notification, *common.Pagination, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&domain.Notification{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, nil, fmt.Errorf("counting notifications for user %s failed: %w", userID, err)
	}
	pagination := common.NewPagination(total, page, pageSize)

	pq := common.PaginationQuery{Page: page, PageSize: pageSize}
	var list []domain.Notification
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(pq.Limit()).
		Offset(pq.Offset()).
		Find(&list).Error
	if err != nil {
		return nil, nil, fmt.Errorf("fetching notifications for user %s failed: %w", userID, err)
	}
	return list, pagination, nil
}

func (r *GORMRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("counting unread notifications for user %s failed: %w", userID, err)
	}
	return n, nil
}

// MarkAsRead marks one of the user's notifications as read. Marking an
// already read notification succeeds.
func (r *GORMRepository) MarkAsRead(ctx context.Context, notificationID, userID uuid.UUID) error {
	var n domain.Notification
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", notificationID, userID).First(&n).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return common.ErrNotFound.WithDetails("Notification not found.")
		}
		return fmt.Errorf("failed to find notification %s: %w", notificationID, err)
	}
	if n.Read {
		return nil
	}
	if err := r.db.WithContext(ctx).Model(&n).Update("read", true).Error; err != nil {
		return fmt.Errorf("failed to mark notification %s as read: %w", notificationID, err)
	}
	return nil
}

// MarkAllAsRead marks every unread notification of the user and returns how many changed.
func (r *GORMRepository) MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Model(&domain.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to mark all notifications as read for user %s: %w", userID, result.Error)
	}
	return result.RowsAffected, nil
}
