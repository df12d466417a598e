// File: internal/common/context_keys.go
package common

const (
	// AuthorizationHeader is the header name for authorization token
	AuthorizationHeader = "Authorization"
	// AuthorizationTypeBearer is the prefix for Bearer tokens
	AuthorizationTypeBearer = "Bearer"
	// UserIDKey is the context key for the acting profile's ID
	UserIDKey = "userID"
	// UserEmailKey is the context key for storing the authenticated user's email
	UserEmailKey = "userEmail"
	// UserNameKey is the context key for the acting profile's display name
	UserNameKey = "userName"
	// AuthSubjectKey is the context key for the identity provider subject
	AuthSubjectKey = "authSubject"
	// TokenIDKey is the context key for the presented token's blocklist key
	TokenIDKey = "tokenID"
	// TokenExpiryKey is the context key for the presented token's expiry
	TokenExpiryKey = "tokenExpiry"
)

// LoggerKey is the context key under which the request-scoped logger is stored.
const LoggerKey = "logger"
