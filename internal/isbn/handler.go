package isbn

import (
	"bookshare_backend/internal/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler serves ISBN lookups.
type Handler struct {
	service Lookuper
	logger  *zap.Logger
}

// NewHandler creates a new ISBN handler.
func NewHandler(service Lookuper, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes mounts GET /books/isbn/:isbn.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := router.Group("/books")
	g.Use(authMW)
	g.GET("/isbn/:isbn", h.lookup)
}

func (h *Handler) lookup(c *gin.Context) {
	info, err := h.service.Lookup(c.Request.Context(), c.Param("isbn"))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Book details found.", info)
}
