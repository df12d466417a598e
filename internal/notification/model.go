package notification

import (
	"time"

	"bookshare_backend/internal/domain"

	"github.com/google/uuid"
)

// NotificationResponse is a notification as returned to its recipient.
type NotificationResponse struct {
	ID              uuid.UUID               `json:"id"`
	Type            domain.NotificationType `json:"type"`
	Title           string                  `json:"title"`
	Message         string                  `json:"message"`
	BorrowRequestID *uuid.UUID              `json:"borrow_request_id,omitempty"`
	Read            bool                    `json:"read"`
	CreatedAt       time.Time               `json:"created_at"`
}

// ToNotificationResponses converts notifications for output.
func ToNotificationResponses(list []domain.Notification) []NotificationResponse {
	out := make([]NotificationResponse, 0, len(list))
	for _, n := range list {
		out = append(out, NotificationResponse{
			ID:              n.ID,
			Type:            n.Type,
			Title:           n.Title,
			Message:         n.Message,
			BorrowRequestID: n.BorrowRequestID,
			Read:            n.Read,
			CreatedAt:       n.CreatedAt,
		})
	}
	return out
}

// UnreadCountResponse is the body of GET /notifications/unread-count.
type UnreadCountResponse struct {
	Unread int64 `json:"unread"`
}

type MarkAllReadResponse struct {
	Marked int64 `json:"marked"`
}
