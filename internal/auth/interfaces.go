// File: internal/auth/interfaces.go
package auth

import (
	"context"
	"time"

	"bookshare_backend/internal/profile"
)

// VerifiedToken is a bearer token the identity provider accepted.
type VerifiedToken struct {
	Identity profile.Identity
	// TokenID keys the token in the blocklist.
	TokenID   string
	ExpiresAt time.Time
}

// Verifier validates bearer tokens and ends sessions with the identity provider.
type Verifier interface {
	Verify(ctx context.Context, token string) (*VerifiedToken, error)
	Revoke(ctx context.Context, subject string) error
}
