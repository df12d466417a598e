package reading

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

// RegisterRoutes sets up the routes for reading progress.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	group := router.Group("/reading-progress")
	group.Use(authMW)
	{
		group.GET("", h.list)
		group.PUT("/books/:book_id", h.upsert)
		group.DELETE("/:id", h.delete)
	}
}

func (h *Handler) list(c *gin.Context) {
	list, err := h.service.List(c.Request.Context(), common.GetUserIDFromContext(c))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "", ToProgressResponses(list))
}

func (h *Handler) upsert(c *gin.Context) {
	bookID, err := uuid.Parse(c.Param("book_id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid book ID format."))
		return
	}
	var req UpsertProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug("Upsert reading progress: invalid request body", zap.Error(err))
		common.RespondWithBindingError(c, err)
		return
	}
	p, err := h.service.Upsert(c.Request.Context(), common.GetUserIDFromContext(c), bookID, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Reading progress saved.", ToProgressResponse(*p))
}

func (h *Handler) delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid reading progress ID format."))
		return
	}
	if err := h.service.Delete(c.Request.Context(), common.GetUserIDFromContext(c), id); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondNoContent(c)
}
