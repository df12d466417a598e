// File: internal/borrow/handler.go
package borrow

import (
	"context"

	"bookshare_backend/internal/common"
	"bookshare_backend/internal/views"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler struct holds dependencies for borrow request handlers.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new borrow request handler.
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes sets up the routes for borrow request operations.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	group := router.Group("/borrow-requests")
	group.Use(authMW)
	{
		group.POST("", h.create)
		group.GET("", h.list)
		group.GET("/:id", h.get)
		group.POST("/:id/approve", h.approve)
		group.POST("/:id/reject", h.reject)
		group.POST("/:id/return", h.markReturned)
	}
}

func actorFrom(c *gin.Context) Actor {
	return Actor{ID: common.GetUserIDFromContext(c), Name: common.GetUserNameFromContext(c)}
}

func (h *Handler) create(c *gin.Context) {
	var req CreateBorrowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug("Create borrow request: invalid body", zap.Error(err))
		common.RespondWithBindingError(c, err)
		return
	}
	v, err := h.service.RequestBorrow(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Borrow request sent.", v)
}

func (h *Handler) list(c *gin.Context) {
	var filter ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		common.RespondWithBindingError(c, err)
		return
	}
	list, err := h.service.List(c.Request.Context(), common.GetUserIDFromContext(c), filter)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Borrow requests retrieved successfully.", list)
}

func (h *Handler) get(c *gin.Context) {
	id, ok := requestIDParam(c)
	if !ok {
		return
	}
	v, err := h.service.Get(c.Request.Context(), common.GetUserIDFromContext(c), id)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Borrow request retrieved successfully.", v)
}

func (h *Handler) approve(c *gin.Context) {
	h.transition(c, "Borrow request approved.", h.service.Approve)
}

func (h *Handler) reject(c *gin.Context) {
	h.transition(c, "Borrow request declined.", h.service.Reject)
}

func (h *Handler) markReturned(c *gin.Context) {
	h.transition(c, "Book marked as returned.", h.service.MarkReturned)
}

func (h *Handler) transition(c *gin.Context, message string, fn func(ctx context.Context, actor Actor, requestID uuid.UUID) (*views.RequestView, error)) {
	id, ok := requestIDParam(c)
	if !ok {
		return
	}
	v, err := fn(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, message, v)
}

func requestIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid borrow request ID format."))
		return uuid.Nil, false
	}
	return id, true
}
