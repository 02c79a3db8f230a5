package settings

import (
	"context"

	"campus_care_backend/internal/common"

	"go.uber.org/zap"
)

type Service interface {
	Get(ctx context.Context) (*Settings, error)
	Update(ctx context.Context, s Settings) (*Settings, error)
}

type ServiceImplementation struct {
	repo   Repository
	cache  Cache
	logger *zap.Logger
}

var _ Service = (*ServiceImplementation)(nil)

func NewService(repo Repository, cache Cache, logger *zap.Logger) *ServiceImplementation {
	return &ServiceImplementation{repo: repo, cache: cache, logger: logger.Named("SettingsService")}
}

// Get serves from cache, falling back to the lazily created row.
func (s *ServiceImplementation) Get(ctx context.Context) (*Settings, error) {
	if cached, ok := s.cache.Get(ctx); ok {
		return cached, nil
	}
	current, err := s.repo.Get(ctx)
	if err != nil {
		s.logger.Error("Failed to load settings", zap.Error(err))
		return nil, common.ErrInternalServer.WithDetails("Could not load settings.")
	}
	s.cache.Set(ctx, current)
	return current, nil
}

// Update replaces the settings wholesale and drops the cached copy.
func (s *ServiceImplementation) Update(ctx context.Context, next Settings) (*Settings, error) {
	if err := s.repo.Replace(ctx, &next); err != nil {
		s.logger.Error("Failed to replace settings", zap.Error(err))
		return nil, common.ErrInternalServer.WithDetails("Could not save settings.")
	}
	s.cache.Invalidate(ctx)
	s.logger.Info("Settings updated",
		zap.Bool("auto_escalation_enabled", next.AutoEscalationEnabled),
		zap.Int("escalation_threshold_hours", next.EscalationThresholdHours),
	)
	return s.Get(ctx)
}
