// File: internal/middleware/auth.go
package middleware

import (
	"context"

	"bookshare_backend/internal/auth"
	"bookshare_backend/internal/common"
	"bookshare_backend/internal/domain"
	"bookshare_backend/internal/profile"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ProfileProvisioner resolves a verified identity to its profile.
type ProfileProvisioner interface {
	EnsureProfile(ctx context.Context, id profile.Identity) (*domain.Profile, error)
}

// AuthMiddleware verifies the bearer token, rejects signed-out tokens, and sets
// the acting profile on the context.
func AuthMiddleware(verifier auth.Verifier, blocklist auth.TokenBlocklistService, profiles ProfileProvisioner, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader(common.AuthorizationHeader) == "" {
			logger.Debug("Authorization header missing")
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Authorization header is required."))
			return
		}
		tokenString := common.GetTokenFromContext(c)
		if tokenString == "" {
			logger.Debug("Authorization header format invalid")
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Authorization header format must be 'Bearer <token>'."))
			return
		}

		ctx := c.Request.Context()
		vt, err := verifier.Verify(ctx, tokenString)
		if err != nil {
			logger.Warn("Token validation failed", zap.Error(err))
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Token is invalid or expired."))
			return
		}

		blocked, err := blocklist.IsBlocklisted(ctx, vt.TokenID)
		if err != nil {
			logger.Error("Blocklist lookup failed", zap.Error(err))
			common.RespondWithError(c, common.ErrInternalServer)
			return
		}
		if blocked {
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Token has been signed out."))
			return
		}

		p, err := profiles.EnsureProfile(ctx, vt.Identity)
		if err != nil {
			logger.Error("Failed to resolve profile for identity", zap.Error(err), zap.String("subject", vt.Identity.Subject))
			common.RespondWithError(c, err)
			return
		}

		c.Set(common.UserIDKey, p.ID)
		c.Set(common.UserEmailKey, p.Email)
		c.Set(common.UserNameKey, p.DisplayName())
		c.Set(common.AuthSubjectKey, vt.Identity.Subject)
		c.Set(common.TokenIDKey, vt.TokenID)
		c.Set(common.TokenExpiryKey, vt.ExpiresAt)

		logger.Debug("User authenticated", zap.String("userID", p.ID.String()))
		c.Next()
	}
}
