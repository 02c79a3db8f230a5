package notification

import (
	"context"
	"errors"
	"fmt"

	"campus_care_backend/internal/common"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, notification *Notification) error
	CreateBatch(ctx context.Context, notifications []Notification) error
	GetLatestByUserID(ctx context.Context, userID uuid.UUID, limit int) ([]Notification, error)
	FindByID(ctx context.Context, notificationID uuid.UUID, userID uuid.UUID) (*Notification, error)
	MarkAsRead(ctx context.Context, notificationID uuid.UUID, userID uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error)
}

// GORMRepository implements the Repository interface using GORM.
type GORMRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM notification repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &GORMRepository{db: db}
}

// Create inserts a new notification into the database.
func (r *GORMRepository) Create(ctx context.Context, notification *Notification) error {
	if err := r.db.WithContext(ctx).Create(notification).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// CreateBatch inserts all notifications in one statement.
func (r *GORMRepository) CreateBatch(ctx context.Context, notifications []Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&notifications).Error; err != nil {
		return fmt.Errorf("failed to create %d notifications: %w", len(notifications), err)
	}
	return nil
}

// GetLatestByUserID returns the newest notifications for a user.
func (r *GORMRepository) GetLatestByUserID(ctx context.Context, userID uuid.UUID, limit int) ([]Notification, error) {
	notifications := make([]Notification, 0, limit)
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&notifications).Error
	if err != nil {
		return nil, fmt.Errorf("fetching notifications for user %s failed: %w", userID, err)
	}
	return notifications, nil
}

// FindByID retrieves a specific notification by its ID, ensuring it belongs to the provided userID.
func (r *GORMRepository) FindByID(ctx context.Context, notificationID uuid.UUID, userID uuid.UUID) (*Notification, error) {
	var notification Notification
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", notificationID, userID).First(&notification).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Notification not found or not owned by user.")
		}
		return nil, fmt.Errorf("failed to find notification %s for user %s: %w", notificationID, userID, err)
	}
	return &notification, nil
}

// MarkAsRead marks a notification read. Marking an already read notification succeeds.
func (r *GORMRepository) MarkAsRead(ctx context.Context, notificationID uuid.UUID, userID uuid.UUID) error {
	if _, err := r.FindByID(ctx, notificationID, userID); err != nil {
		return err
	}

	result := r.db.WithContext(ctx).Model(&Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("is_read", true)
	if result.Error != nil {
		return fmt.Errorf("failed to mark notification %s as read for user %s: %w", notificationID, userID, result.Error)
	}
	return nil
}

// MarkAllAsRead marks all unread notifications for a user as read.
// It returns the count of notifications that were updated.
func (r *GORMRepository) MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Model(&Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to mark all notifications as read for user %s: %w", userID, result.Error)
	}
	return result.RowsAffected, nil
}
