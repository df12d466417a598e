package firebase

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"bookshare_backend/internal/auth"
	"bookshare_backend/internal/config"
	"bookshare_backend/internal/platform/crypto"
	"bookshare_backend/internal/profile"
)

// tokenVerifier is the part of the Firebase auth client used here.
type tokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
	RevokeRefreshTokens(ctx context.Context, uid string) error
}

// FirebaseService verifies Firebase ID tokens and implements auth.Verifier.
type FirebaseService struct {
	authClient tokenVerifier
	logger     *zap.Logger
}

var _ auth.Verifier = (*FirebaseService)(nil)

// NewFirebaseService initializes the Firebase Admin SDK from the configured service account.
func NewFirebaseService(cfg *config.Config, logger *zap.Logger) (*FirebaseService, error) {
	if cfg.FirebaseServiceAccountKeyPath == "" {
		logger.Error("Firebase service account key path is not configured.")
		return nil, fmt.Errorf("firebase service account key path is required")
	}
	cleanPath := filepath.Clean(cfg.FirebaseServiceAccountKeyPath)
	opt := option.WithCredentialsFile(cleanPath)

	var conf *firebase.Config
	if cfg.FirebaseProjectID != "" {
		conf = &firebase.Config{ProjectID: cfg.FirebaseProjectID}
	}
	app, err := firebase.NewApp(context.Background(), conf, opt)
	if err != nil {
		logger.Error("Failed to initialize Firebase Admin SDK app", zap.Error(err), zap.String("keyPath", cleanPath))
		return nil, fmt.Errorf("error initializing Firebase app: %w", err)
	}

	authClient, err := app.Auth(context.Background())
	if err != nil {
		logger.Error("Failed to get Firebase Auth client", zap.Error(err))
		return nil, fmt.Errorf("error getting Firebase Auth client: %w", err)
	}

	logger.Info("Firebase Admin SDK initialized successfully.")
	return &FirebaseService{authClient: authClient, logger: logger}, nil
}

// Verify checks a Firebase ID token and maps its claims to an identity.
func (s *FirebaseService) Verify(ctx context.Context, idToken string) (*auth.VerifiedToken, error) {
	if idToken == "" {
		return nil, fmt.Errorf("ID token must not be empty")
	}

	token, err := s.authClient.VerifyIDToken(ctx, idToken)
	if err != nil {
		s.logger.Warn("Firebase ID token verification failed", zap.Error(err))
		return nil, fmt.Errorf("failed to verify Firebase ID token: %w", err)
	}

	s.logger.Debug("Firebase ID token verified", zap.String("uid", token.UID))
	return &auth.VerifiedToken{
		Identity: profile.Identity{
			Subject:    token.UID,
			Email:      claimString(token.Claims, "email"),
			Name:       claimString(token.Claims, "name"),
			PictureURL: claimString(token.Claims, "picture"),
		},
		TokenID:   crypto.Fingerprint(idToken),
		ExpiresAt: time.Unix(token.Expires, 0),
	}, nil
}

// Revoke revokes all refresh tokens for uid so the client cannot mint new ID tokens.
func (s *FirebaseService) Revoke(ctx context.Context, uid string) error {
	if err := s.authClient.RevokeRefreshTokens(ctx, uid); err != nil {
		s.logger.Error("Failed to revoke refresh tokens", zap.Error(err), zap.String("uid", uid))
		return fmt.Errorf("failed to revoke refresh tokens: %w", err)
	}
	s.logger.Info("Revoked refresh tokens", zap.String("uid", uid))
	return nil
}

func claimString(claims map[string]interface{}, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}
