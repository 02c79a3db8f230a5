package settings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&Settings{}))
	return db
}

func TestGORMRepository_GetCreatesDefaultsOnce(t *testing.T) {
	db := newTestDB(t)
	repo := NewGORMRepository(db)
	ctx := context.Background()

	first, err := repo.Get(ctx)
	require.NoError(t, err)
	second, err := repo.Get(ctx)
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&Settings{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, GlobalID, first.ID)
	assert.Equal(t, 48, first.EscalationThresholdHours)
	assert.True(t, first.NotificationPreferences.HighPriority)
	assert.Equal(t, RangeMonth, first.ReportDefaults.DefaultRange)
	assert.Equal(t, first.CreatedAt.Unix(), second.CreatedAt.Unix())
}

func TestGORMRepository_ReplaceWritesFalseValues(t *testing.T) {
	repo := NewGORMRepository(newTestDB(t))
	ctx := context.Background()

	next := Defaults()
	next.AdminEmail = "head@campus.edu"
	next.AutoEscalationEnabled = true
	next.EscalationThresholdHours = 12
	next.NotificationPreferences.StatusUpdates = false
	next.ReportDefaults.DefaultRange = RangeWeek
	require.NoError(t, repo.Replace(ctx, &next))

	got, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "head@campus.edu", got.AdminEmail)
	assert.True(t, got.AutoEscalationEnabled)
	assert.Equal(t, 12, got.EscalationThresholdHours)
	assert.False(t, got.NotificationPreferences.StatusUpdates)
	assert.True(t, got.NotificationPreferences.NewComplaint)
	assert.Equal(t, RangeWeek, got.ReportDefaults.DefaultRange)
}
