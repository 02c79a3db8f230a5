// File: cmd/server/providers.go
package main

import (
	"context"
	"log"
	"time"

	"campus_care_backend/internal/auth"
	"campus_care_backend/internal/complaint"
	"campus_care_backend/internal/config"
	"campus_care_backend/internal/filestorage"
	"campus_care_backend/internal/notification"
	"campus_care_backend/internal/platform/cache"
	"campus_care_backend/internal/platform/database"
	"campus_care_backend/internal/platform/logger"
	"campus_care_backend/internal/settings"
	"campus_care_backend/internal/user"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

func provideLogger(cfg *config.Config) (*zap.Logger, func(), error) {
	l, err := logger.New(cfg)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := l.Sync(); err != nil {
			log.Printf("ERROR: Failed to sync logger during cleanup: %v", err)
		}
	}
	return l, cleanup, nil
}

// provideDatabase connects and migrates every table the API owns.
func provideDatabase(cfg *config.Config, logger *zap.Logger) (*gorm.DB, func(), error) {
	db, err := database.NewGORM(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	if err := database.Migrate(db,
		&user.User{},
		&complaint.Complaint{},
		&notification.Notification{},
		&settings.Settings{},
	); err != nil {
		database.CloseGORMDB(db, logger)
		return nil, nil, err
	}
	return db, func() { database.CloseGORMDB(db, logger) }, nil
}

func provideImageStore(cfg *config.Config, logger *zap.Logger) (filestorage.ImageStore, error) {
	return filestorage.NewImageStore(context.Background(), cfg, logger)
}

// provideSettingsCache shares settings through Redis when REDIS_ADDR is set.
func provideSettingsCache(cfg *config.Config, logger *zap.Logger) (settings.Cache, func(), error) {
	if cfg.RedisAddr == "" {
		return settings.NewLocalCache(cfg.SettingsCacheTTL), func() {}, nil
	}
	rdb, err := cache.NewRedisClient(context.Background(), cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := rdb.Close(); err != nil {
			logger.Error("Error closing redis client", zap.Error(err))
		}
	}
	return settings.NewRedisCache(rdb, cfg.SettingsCacheTTL, logger), cleanup, nil
}

func provideBlocklist(cfg *config.Config) *auth.InMemoryBlocklistService {
	return auth.NewInMemoryBlocklistService(auth.InMemoryBlocklistConfig{
		DefaultExpiration: cfg.JWTAccessTokenExpiryMinutes,
		CleanupInterval:   10 * time.Minute,
	})
}
