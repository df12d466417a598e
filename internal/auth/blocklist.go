// File: internal/auth/blocklist.go
package auth

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

// TokenBlocklistService defines the interface for a token blocklist.
type TokenBlocklistService interface {
	// AddToBlocklist blocks a token until it would have expired anyway.
	AddToBlocklist(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsBlocklisted(ctx context.Context, tokenID string) (bool, error)
}

// InMemoryBlocklistService keeps signed-out tokens in a TTL cache.
type InMemoryBlocklistService struct {
	cache *cache.Cache
}

// InMemoryBlocklistConfig holds the configuration for the InMemoryBlocklistService.
type InMemoryBlocklistConfig struct {
	DefaultExpiration time.Duration
	CleanupInterval   time.Duration
}

// DefaultBlocklistConfig is used when nothing else is configured.
func DefaultBlocklistConfig() InMemoryBlocklistConfig {
	return InMemoryBlocklistConfig{DefaultExpiration: time.Hour, CleanupInterval: 10 * time.Minute}
}

// NewInMemoryBlocklistService creates a new in-memory blocklist service.
func NewInMemoryBlocklistService(cfg InMemoryBlocklistConfig) *InMemoryBlocklistService {
	return &InMemoryBlocklistService{cache: cache.New(cfg.DefaultExpiration, cfg.CleanupInterval)}
}

// AddToBlocklist blocks tokenID until expiresAt. A zero expiry uses the cache default.
func (s *InMemoryBlocklistService) AddToBlocklist(_ context.Context, tokenID string, expiresAt time.Time) error {
	if expiresAt.IsZero() {
		s.cache.SetDefault(tokenID, true)
		return nil
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	s.cache.Set(tokenID, true, ttl)
	return nil
}

func (s *InMemoryBlocklistService) IsBlocklisted(_ context.Context, tokenID string) (bool, error) {
	_, found := s.cache.Get(tokenID)
	return found, nil
}
