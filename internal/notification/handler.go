package notification

import (
	"bookshare_backend/internal/common"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes sets up the routes for notification operations.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	group := router.Group("/notifications")
	group.Use(authMW)
	{
		group.GET("", h.getNotifications)
		group.GET("/unread-count", h.unreadCount)
		group.POST("/:notification_id/mark-read", h.markNotificationAsRead)
		group.POST("/mark-all-read", h.markAllNotificationsAsRead)
	}
}

func (h *Handler) getNotifications(c *gin.Context) {
	page, pageSize := common.GetPaginationParams(c)
	list, pagination, err := h.service.GetNotificationsForUser(c.Request.Context(), common.GetUserIDFromContext(c), page, pageSize)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondPaginated(c, "Notifications retrieved.", ToNotificationResponses(list), pagination)
}

func (h *Handler) unreadCount(c *gin.Context) {
	n, err := h.service.UnreadCount(c.Request.Context(), common.GetUserIDFromContext(c))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "", UnreadCountResponse{Unread: n})
}

func (h *Handler) markNotificationAsRead(c *gin.Context) {
	notificationID, err := uuid.Parse(c.Param("notification_id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid notification ID format."))
		return
	}
	if err := h.service.MarkNotificationAsRead(c.Request.Context(), notificationID, common.GetUserIDFromContext(c)); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Notification marked as read.", nil)
}

func (h *Handler) markAllNotificationsAsRead(c *gin.Context) {
	n, err := h.service.MarkAllUserNotificationsAsRead(c.Request.Context(), common.GetUserIDFromContext(c))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	h.logger.Debug("Marked notifications read", zap.Int64("count", n))
	common.RespondOK(c, "All notifications marked as read.", MarkAllReadResponse{Marked: n})
}
