// File: internal/book/handler.go
package book

import (
	"net/http"

	"bookshare_backend/internal/common"
	"bookshare_backend/internal/views"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler struct holds dependencies for book handlers.
type Handler struct {
	service       Service
	logger        *zap.Logger
	maxCoverBytes int64
}

// NewHandler creates a new book handler.
func NewHandler(service Service, maxCoverBytes int64, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger, maxCoverBytes: maxCoverBytes}
}

// RegisterRoutes sets up the routes for book operations.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	books := router.Group("/books")
	books.Use(authMW)
	{
		books.POST("", h.createBook)
		books.GET("/mine", h.myLibrary)
		books.GET("/browse", h.browse)
		books.GET("/search", h.search)
		books.GET("/genres", h.genres)
		books.GET("/:id", h.getBook)
		books.PUT("/:id", h.updateBook)
		books.PATCH("/:id/status", h.setStatus)
		books.DELETE("/:id", h.deleteBook)
		books.POST("/:id/cover", h.uploadCover)
	}
}

func (h *Handler) createBook(c *gin.Context) {
	var req CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug("Create book: invalid request body", zap.Error(err))
		common.RespondWithBindingError(c, err)
		return
	}
	b, err := h.service.CreateBook(c.Request.Context(), common.GetUserIDFromContext(c), req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Book added to your library.", views.ToBookCard(*b))
}

func (h *Handler) myLibrary(c *gin.Context) {
	books, err := h.service.MyLibrary(c.Request.Context(), common.GetUserIDFromContext(c), c.Query("q"))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Library retrieved successfully.", views.ToBookCards(books))
}

func (h *Handler) browse(c *gin.Context) {
	page, pageSize := common.GetPaginationParams(c)
	books, pagination, err := h.service.Browse(c.Request.Context(), common.GetUserIDFromContext(c), BrowseQuery{
		Query:    c.Query("q"),
		Genre:    c.Query("genre"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondPaginated(c, "Books retrieved successfully.", views.ToBookCards(books), pagination)
}

func (h *Handler) search(c *gin.Context) {
	books, err := h.service.Search(c.Request.Context(), common.GetUserIDFromContext(c), c.Query("q"))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Search completed.", views.ToBookCards(books))
}

func (h *Handler) genres(c *gin.Context) {
	genres, err := h.service.Genres(c.Request.Context())
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Genres retrieved successfully.", genres)
}

func (h *Handler) getBook(c *gin.Context) {
	id, ok := bookIDParam(c)
	if !ok {
		return
	}
	b, err := h.service.GetBook(c.Request.Context(), id)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Book retrieved successfully.", views.ToBookCard(*b))
}

func (h *Handler) updateBook(c *gin.Context) {
	id, ok := bookIDParam(c)
	if !ok {
		return
	}
	var req UpdateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondWithBindingError(c, err)
		return
	}
	b, err := h.service.UpdateBook(c.Request.Context(), common.GetUserIDFromContext(c), id, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Book updated successfully.", views.ToBookCard(*b))
}

func (h *Handler) setStatus(c *gin.Context) {
	id, ok := bookIDParam(c)
	if !ok {
		return
	}
	var req SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondWithBindingError(c, err)
		return
	}
	b, err := h.service.SetBookStatus(c.Request.Context(), common.GetUserIDFromContext(c), common.GetUserNameFromContext(c), id, req.Status)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Book status updated.", views.ToBookCard(*b))
}

func (h *Handler) deleteBook(c *gin.Context) {
	id, ok := bookIDParam(c)
	if !ok {
		return
	}
	if err := h.service.DeleteBook(c.Request.Context(), common.GetUserIDFromContext(c), common.GetUserNameFromContext(c), id); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondNoContent(c)
}

func (h *Handler) uploadCover(c *gin.Context) {
	id, ok := bookIDParam(c)
	if !ok {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxCoverBytes+1<<20)
	fh, err := c.FormFile("cover")
	if err != nil {
		h.logger.Debug("Upload cover: missing or unreadable file", zap.Error(err))
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("A 'cover' image file is required."))
		return
	}
	b, err := h.service.UploadCover(c.Request.Context(), common.GetUserIDFromContext(c), id, fh)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Cover uploaded successfully.", views.ToBookCard(*b))
}

func bookIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid book ID format."))
		return uuid.Nil, false
	}
	return id, true
}
