// Package isbn looks up book metadata by ISBN to pre-fill new books.
// Failures never block manual entry: callers get "not found" and move on.
package isbn

import (
	"context"
	"errors"
	"strings"
	"time"

	"bookshare_backend/internal/common"
	"bookshare_backend/internal/config"

	"github.com/go-playground/validator/v10"
	"github.com/patrickmn/go-cache"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

const (
	notFoundTTL      = 10 * time.Minute
	breakerFailures  = 3
	breakerCooldown  = 30 * time.Second
	cacheCleanupTick = 10 * time.Minute
)

// Lookuper is the lookup surface used by handlers.
type Lookuper interface {
	Lookup(ctx context.Context, raw string) (*BookInfo, error)
}

// Service validates, caches and circuit-breaks provider lookups.
type Service struct {
	provider Provider
	cache    *cache.Cache
	breaker  *gobreaker.CircuitBreaker
	validate *validator.Validate
	logger   *zap.Logger
}

// NewService wires the Open Library provider from cfg.
func NewService(cfg *config.Config, logger *zap.Logger) *Service {
	return NewServiceWithProvider(NewOpenLibraryClient(cfg.ISBNLookupBaseURL, cfg.ISBNLookupTimeout), cfg.ISBNCacheTTL, logger)
}

// NewServiceWithProvider is NewService with an explicit provider.
func NewServiceWithProvider(p Provider, ttl time.Duration, logger *zap.Logger) *Service {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	logger = logger.Named("isbn")
	return &Service{
		provider: p,
		cache:    cache.New(ttl, cacheCleanupTick),
		breaker:  newBreaker(breakerFailures, breakerCooldown, logger),
		validate: validator.New(),
		logger:   logger,
	}
}

// Normalize strips hyphens and spaces and upper-cases a trailing x.
func Normalize(raw string) string {
	r := strings.NewReplacer("-", "", " ", "")
	return strings.ToUpper(r.Replace(strings.TrimSpace(raw)))
}

// Lookup returns metadata for raw or a common API error.
func (s *Service) Lookup(ctx context.Context, raw string) (*BookInfo, error) {
	isbn := Normalize(raw)
	if err := s.validate.Var(isbn, "required,isbn"); err != nil {
		return nil, common.ErrBadRequest.WithDetails("ISBN must be a valid ISBN-10 or ISBN-13.")
	}

	if v, ok := s.cache.Get(isbn); ok {
		if info, ok := v.(*BookInfo); ok {
			return info, nil
		}
		return nil, common.ErrNotFound.WithDetails("No book found for this ISBN.")
	}

	result, err := s.breaker.Execute(func() (interface{}, error) {
		found, err := s.provider.Fetch(ctx, isbn)
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return found, err
	})
	info, _ := result.(*BookInfo)
	switch {
	case breakerRejected(err):
		s.logger.Debug("ISBN lookup skipped; provider circuit open", zap.String("isbn", isbn))
		return nil, common.ErrNotFound.WithDetails("ISBN lookup is unavailable right now; enter the details manually.")
	case err != nil:
		s.logger.Warn("ISBN lookup failed", zap.String("isbn", isbn), zap.Error(err))
		return nil, common.ErrNotFound.WithDetails("ISBN lookup is unavailable right now; enter the details manually.")
	case info == nil:
		s.cache.Set(isbn, false, notFoundTTL)
		return nil, common.ErrNotFound.WithDetails("No book found for this ISBN.")
	}

	s.cache.SetDefault(isbn, info)
	return info, nil
}
