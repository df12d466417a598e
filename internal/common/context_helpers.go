// File: internal/common/context_helpers.go
package common

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GetTokenFromContext returns the bearer token of the Authorization header,
// or "" when the header is missing or uses another scheme.
func GetTokenFromContext(c *gin.Context) string {
	scheme, token, found := strings.Cut(strings.TrimSpace(c.GetHeader(AuthorizationHeader)), " ")
	if !found || !strings.EqualFold(scheme, AuthorizationTypeBearer) {
		return ""
	}
	token = strings.TrimSpace(token)
	if strings.ContainsRune(token, ' ') {
		return ""
	}
	return token
}

// GetUserIDFromContext returns the acting profile ID set by the auth
// middleware, or uuid.Nil.
func GetUserIDFromContext(c *gin.Context) uuid.UUID {
	if id, ok := c.Value(UserIDKey).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}

func GetUserNameFromContext(c *gin.Context) string {
	return c.GetString(UserNameKey)
}

// GetAuthSubjectFromContext is the identity provider's subject for the caller.
func GetAuthSubjectFromContext(c *gin.Context) string {
	return c.GetString(AuthSubjectKey)
}

// GetTokenIDFromContext returns the blocklist key and expiry of the presented token.
func GetTokenIDFromContext(c *gin.Context) (string, time.Time) {
	return c.GetString(TokenIDKey), c.GetTime(TokenExpiryKey)
}
