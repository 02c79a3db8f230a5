// File: internal/auth/blocklist.go
package auth

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

// TokenBlocklistService tracks revoked token IDs until they would have expired.
type TokenBlocklistService interface {
	AddToBlocklist(ctx context.Context, jti string, expiresAt time.Time) error
	IsBlocklisted(ctx context.Context, jti string) (bool, error)
}

// InMemoryBlocklistService is a TokenBlocklistService backed by go-cache.
type InMemoryBlocklistService struct {
	cache *cache.Cache
}

// InMemoryBlocklistConfig holds the configuration for the InMemoryBlocklistService.
type InMemoryBlocklistConfig struct {
	DefaultExpiration time.Duration
	CleanupInterval   time.Duration
}

// NewInMemoryBlocklistService creates a new in-memory blocklist service.
func NewInMemoryBlocklistService(cfg InMemoryBlocklistConfig) *InMemoryBlocklistService {
	return &InMemoryBlocklistService{
		cache: cache.New(cfg.DefaultExpiration, cfg.CleanupInterval),
	}
}

// AddToBlocklist keeps jti for the remaining lifetime of its token.
func (s *InMemoryBlocklistService) AddToBlocklist(_ context.Context, jti string, expiresAt time.Time) error {
	if jti == "" {
		return nil
	}
	duration := time.Until(expiresAt)
	if duration <= 0 {
		return nil
	}
	s.cache.Set(jti, true, duration)
	return nil
}

func (s *InMemoryBlocklistService) IsBlocklisted(_ context.Context, jti string) (bool, error) {
	_, found := s.cache.Get(jti)
	return found, nil
}
