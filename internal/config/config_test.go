package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.ServerPort)
	assert.Equal(t, 120*time.Second, cfg.MLTimeout)
	assert.Equal(t, 50, cfg.DuplicateSampleSize)
	assert.Equal(t, int64(5<<20), cfg.MaxImageBytes())
	assert.Equal(t, "local", cfg.StorageType)
	assert.Equal(t, "smtp.gmail.com", cfg.SMTPHost)
	assert.Equal(t, 587, cfg.SMTPPort)
	assert.False(t, cfg.SMTPConfigured())
	assert.Contains(t, cfg.DBSource, "dbname=campus_care_db")
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "test-secret")
	t.Setenv("ML_TIMEOUT_SECONDS", "5")
	t.Setenv("SMTP_USER", "reports@example.edu")
	t.Setenv("SMTP_PASS", "app-password")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("STORAGE_TYPE", "minio")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.MLTimeout)
	assert.True(t, cfg.SMTPConfigured())
	assert.Equal(t, "reports@example.edu", cfg.SMTPFrom)
	assert.True(t, cfg.MinioUseSSL)
	assert.Equal(t, "minio", cfg.StorageType)
}

func TestLoad_RequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_RejectsUnknownStorageType(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "test-secret")
	t.Setenv("STORAGE_TYPE", "ftp")

	_, err := Load()
	assert.Error(t, err)
}
