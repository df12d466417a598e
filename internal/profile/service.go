// File: internal/profile/service.go
package profile

import (
	"context"
	"errors"
	"strings"

	"bookshare_backend/internal/common"
	"bookshare_backend/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service defines the interface for profile business logic.
type Service interface {
	EnsureProfile(ctx context.Context, id Identity) (*domain.Profile, error)
	GetProfile(ctx context.Context, id uuid.UUID) (*domain.Profile, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, req UpdateProfileRequest) (*domain.Profile, error)
}

// ServiceImplementation implements Service.
type ServiceImplementation struct {
	repo   Repository
	logger *zap.Logger
}

// NewService creates a new profile service.
func NewService(repo Repository, logger *zap.Logger) *ServiceImplementation {
	return &ServiceImplementation{repo: repo, logger: logger}
}

// EnsureProfile returns the profile bound to the identity, creating it on first sight.
func (s *ServiceImplementation) EnsureProfile(ctx context.Context, id Identity) (*domain.Profile, error) {
	if strings.TrimSpace(id.Subject) == "" {
		return nil, common.ErrUnauthorized.WithDetails("Identity has no subject.")
	}

	p, err := s.repo.FindBySubject(ctx, id.Subject)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		s.logger.Error("Error finding profile by subject", zap.Error(err), zap.String("subject", id.Subject))
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(id.Email))
	p = &domain.Profile{
		AuthSubject: id.Subject,
		FullName:    displayName(id.Name, email),
		Email:       email,
	}
	if id.PictureURL != "" {
		pic := id.PictureURL
		p.AvatarURL = &pic
	}

	if err := s.repo.Create(ctx, p); err != nil {
		// A concurrent first request may have created it already.
		if errors.Is(err, common.ErrConflict) {
			return s.repo.FindBySubject(ctx, id.Subject)
		}
		s.logger.Error("Failed to provision profile", zap.Error(err), zap.String("subject", id.Subject))
		return nil, err
	}
	s.logger.Info("Provisioned profile for new identity", zap.String("profileID", p.ID.String()))
	return p, nil
}

func (s *ServiceImplementation) GetProfile(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			s.logger.Error("Error finding profile by ID", zap.Error(err), zap.String("profileID", id.String()))
		}
		return nil, err
	}
	return p, nil
}

func (s *ServiceImplementation) UpdateProfile(ctx context.Context, id uuid.UUID, req UpdateProfileRequest) (*domain.Profile, error) {
	p, err := s.GetProfile(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		name := strings.TrimSpace(*req.FullName)
		if name == "" {
			return nil, common.ErrBadRequest.WithDetails("Full name cannot be blank.")
		}
		p.FullName = name
	}
	if req.Location != nil {
		p.Location = emptyToNil(*req.Location)
	}
	if req.Bio != nil {
		p.Bio = emptyToNil(*req.Bio)
	}
	if req.AvatarURL != nil {
		p.AvatarURL = emptyToNil(*req.AvatarURL)
	}

	if err := s.repo.Update(ctx, p); err != nil {
		s.logger.Error("Failed to update profile", zap.Error(err), zap.String("profileID", id.String()))
		return nil, common.ErrInternalServer.WithDetails("Could not update profile.")
	}
	return p, nil
}

func displayName(name, email string) string {
	if n := strings.TrimSpace(name); n != "" {
		return n
	}
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return "Reader"
}

func emptyToNil(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
