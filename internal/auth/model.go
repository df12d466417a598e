// File: internal/auth/model.go
package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims are the claims carried by locally issued tokens.
type Claims struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// IssueTokenRequest mints a development token.
type IssueTokenRequest struct {
	Subject string `json:"subject" binding:"required"`
	Email   string `json:"email" binding:"omitempty,email"`
	Name    string `json:"name"`
}

// TokenResponse carries a minted token.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresAt   int64  `json:"expires_at"`
}
