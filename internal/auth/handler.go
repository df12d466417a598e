// File: internal/auth/handler.go
package auth

import (
	"bookshare_backend/internal/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler struct holds dependencies for auth handlers.
type Handler struct {
	verifier  Verifier
	blocklist TokenBlocklistService
	logger    *zap.Logger
}

// NewHandler creates a new auth handler.
func NewHandler(verifier Verifier, blocklist TokenBlocklistService, logger *zap.Logger) *Handler {
	return &Handler{verifier: verifier, blocklist: blocklist, logger: logger}
}

// RegisterRoutes sets up the routes for authentication operations.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	authGroup := router.Group("/auth")
	authGroup.Use(authMW)
	{
		authGroup.POST("/sign-out", h.signOut)
	}
}

// signOut revokes the caller's provider session and blocks the presented token.
func (h *Handler) signOut(c *gin.Context) {
	ctx := c.Request.Context()
	subject := common.GetAuthSubjectFromContext(c)
	tokenID, expiresAt := common.GetTokenIDFromContext(c)

	if err := h.verifier.Revoke(ctx, subject); err != nil {
		h.logger.Error("Sign-out: failed to revoke provider session", zap.Error(err), zap.String("subject", subject))
		common.RespondWithError(c, common.ErrServiceUnavailable.WithDetails("Could not end the session with the identity provider."))
		return
	}
	if tokenID != "" {
		if err := h.blocklist.AddToBlocklist(ctx, tokenID, expiresAt); err != nil {
			h.logger.Error("Sign-out: failed to blocklist token", zap.Error(err))
			common.RespondWithError(c, common.ErrInternalServer)
			return
		}
	}

	h.logger.Info("User signed out", zap.String("userID", common.GetUserIDFromContext(c).String()))
	common.RespondOK(c, "Signed out successfully.", nil)
}
