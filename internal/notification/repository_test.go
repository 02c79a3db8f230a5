package notification

import (
	"context"
	"testing"
	"time"

	"campus_care_backend/internal/common"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestRepo(t *testing.T) Repository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&Notification{}))
	return NewGORMRepository(db)
}

func TestGORMRepository_LatestAndMarkRead(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	owner := uuid.New()
	stranger := uuid.New()

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	batch := make([]Notification, 0, 25)
	for i := 0; i < 25; i++ {
		batch = append(batch, Notification{UserID: owner, Type: TypeInfo, Title: "t", Message: "m", CreatedAt: base.Add(time.Duration(i) * time.Minute)})
	}
	require.NoError(t, repo.CreateBatch(ctx, batch))
	require.NoError(t, repo.Create(ctx, &Notification{UserID: stranger, Type: TypeInfo, Title: "t", Message: "other"}))

	latest, err := repo.GetLatestByUserID(ctx, owner, LatestLimit)
	require.NoError(t, err)
	require.Len(t, latest, LatestLimit)
	assert.True(t, latest[0].CreatedAt.After(latest[1].CreatedAt))
	assert.Equal(t, base.Add(24*time.Minute), latest[0].CreatedAt.UTC())

	target := latest[0].ID
	err = repo.MarkAsRead(ctx, target, stranger)
	assert.ErrorIs(t, err, common.ErrNotFound)

	require.NoError(t, repo.MarkAsRead(ctx, target, owner))
	require.NoError(t, repo.MarkAsRead(ctx, target, owner))
	got, err := repo.FindByID(ctx, target, owner)
	require.NoError(t, err)
	assert.True(t, got.IsRead)

	count, err := repo.MarkAllAsRead(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, int64(24), count)
}
