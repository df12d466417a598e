// File: internal/profile/model.go
package profile

import (
	"time"

	"bookshare_backend/internal/domain"

	"github.com/google/uuid"
)

// Identity is what the authentication layer knows about the caller.
type Identity struct {
	Subject    string
	Email      string
	Name       string
	PictureURL string
}

// UpdateProfileRequest holds the editable profile attributes. Nil fields are left unchanged.
type UpdateProfileRequest struct {
	FullName  *string `json:"full_name" binding:"omitempty,min=1,max=255"`
	Location  *string `json:"location" binding:"omitempty,max=255"`
	Bio       *string `json:"bio" binding:"omitempty,max=2000"`
	AvatarURL *string `json:"avatar_url" binding:"omitempty,url,max=512"`
}

// ProfileResponse is the owner's view of their profile.
type ProfileResponse struct {
	ID        uuid.UUID `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Location  *string   `json:"location,omitempty"`
	Bio       *string   `json:"bio,omitempty"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PublicProfileResponse is what other users see.
type PublicProfileResponse struct {
	ID        uuid.UUID `json:"id"`
	FullName  string    `json:"full_name"`
	Location  *string   `json:"location,omitempty"`
	Bio       *string   `json:"bio,omitempty"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
}

func ToProfileResponse(p *domain.Profile) ProfileResponse {
	return ProfileResponse{
		ID:        p.ID,
		FullName:  p.FullName,
		Email:     p.Email,
		Location:  p.Location,
		Bio:       p.Bio,
		AvatarURL: p.AvatarURL,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func ToPublicProfileResponse(p *domain.Profile) PublicProfileResponse {
	return PublicProfileResponse{
		ID:        p.ID,
		FullName:  p.FullName,
		Location:  p.Location,
		Bio:       p.Bio,
		AvatarURL: p.AvatarURL,
	}
}
