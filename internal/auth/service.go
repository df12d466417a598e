// File: internal/auth/service.go
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bookshare_backend/internal/config"
	"bookshare_backend/internal/platform/crypto"
	"bookshare_backend/internal/profile"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// JWTService issues and verifies HS256 tokens for local development and tests.
type JWTService struct {
	secret []byte
	issuer string
	ttl    time.Duration
	logger *zap.Logger
}

// NewJWTService creates a new JWT service.
func NewJWTService(cfg *config.Config, logger *zap.Logger) *JWTService {
	ttl := cfg.JWTTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &JWTService{secret: []byte(cfg.JWTSecret), issuer: cfg.JWTIssuer, ttl: ttl, logger: logger}
}

// Issue signs a token for subject.
func (s *JWTService) Issue(subject, email, name string) (string, time.Time, error) {
	if subject == "" {
		return "", time.Time{}, errors.New("subject is required")
	}
	jti, err := crypto.RandomID(16)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("could not generate token id: %w", err)
	}

	now := time.Now()
	expiresAt := now.Add(s.ttl)
	claims := &Claims{
		Email: email,
		Name:  name,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			Subject:   subject,
			ID:        jti,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		s.logger.Error("Failed to sign access token", zap.Error(err))
		return "", time.Time{}, fmt.Errorf("could not sign access token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify validates a token and returns the identity it carries.
func (s *JWTService) Verify(_ context.Context, tokenString string) (*VerifiedToken, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(s.issuer))
	if err != nil {
		s.logger.Debug("Failed to validate token", zap.Error(err))
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, errors.New("invalid token claims")
	}

	vt := &VerifiedToken{
		Identity: profile.Identity{Subject: claims.Subject, Email: claims.Email, Name: claims.Name},
		TokenID:  crypto.Fingerprint(tokenString),
	}
	if claims.ExpiresAt != nil {
		vt.ExpiresAt = claims.ExpiresAt.Time
	}
	return vt, nil
}

// Revoke is a no-op: locally issued tokens end through the blocklist alone.
func (s *JWTService) Revoke(context.Context, string) error { return nil }
