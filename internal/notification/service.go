package notification

import (
	"context"
	"errors"

	"campus_care_backend/internal/common"
	"campus_care_backend/internal/platform/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Message is the content shared by every recipient of a notification.
type Message struct {
	ComplaintID *uuid.UUID
	Type        Type
	Title       string
	Body        string
}

type Service interface {
	CreateNotification(ctx context.Context, userID uuid.UUID, msg Message) (*Notification, error)
	CreateBulk(ctx context.Context, userIDs []uuid.UUID, msg Message) (int, error)
	GetLatestForUser(ctx context.Context, userID uuid.UUID) ([]Notification, error)
	MarkNotificationAsRead(ctx context.Context, notificationID, userID uuid.UUID) error
	MarkAllUserNotificationsAsRead(ctx context.Context, userID uuid.UUID) (int64, error)
}

type ServiceImplementation struct {
	repo    Repository
	metrics *metrics.Metrics
	logger  *zap.Logger
}

var _ Service = (*ServiceImplementation)(nil)

// NewService creates a new notification service.
func NewService(repo Repository, m *metrics.Metrics, logger *zap.Logger) *ServiceImplementation {
	return &ServiceImplementation{repo: repo, metrics: m, logger: logger.Named("NotificationService")}
}

func (s *ServiceImplementation) CreateNotification(ctx context.Context, userID uuid.UUID, msg Message) (*Notification, error) {
	n := &Notification{
		UserID:      userID,
		ComplaintID: msg.ComplaintID,
		Type:        msg.Type,
		Title:       msg.Title,
		Message:     msg.Body,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		s.logger.Error("Failed to create notification", zap.Error(err), zap.String("userID", userID.String()))
		return nil, common.ErrInternalServer.WithDetails("Could not create notification.")
	}
	s.metrics.NotificationsCreated(string(msg.Type), 1)
	return n, nil
}

// CreateBulk writes one notification per user in a single insert and returns how many were created.
func (s *ServiceImplementation) CreateBulk(ctx context.Context, userIDs []uuid.UUID, msg Message) (int, error) {
	if len(userIDs) == 0 {
		return 0, nil
	}
	batch := make([]Notification, len(userIDs))
	for i, id := range userIDs {
		batch[i] = Notification{
			UserID:      id,
			ComplaintID: msg.ComplaintID,
			Type:        msg.Type,
			Title:       msg.Title,
			Message:     msg.Body,
		}
	}
	if err := s.repo.CreateBatch(ctx, batch); err != nil {
		s.logger.Error("Failed to create notification batch", zap.Error(err), zap.Int("recipients", len(userIDs)))
		return 0, common.ErrInternalServer.WithDetails("Could not create notifications.")
	}
	s.metrics.NotificationsCreated(string(msg.Type), len(batch))
	return len(batch), nil
}

func (s *ServiceImplementation) GetLatestForUser(ctx context.Context, userID uuid.UUID) ([]Notification, error) {
	notifications, err := s.repo.GetLatestByUserID(ctx, userID, LatestLimit)
	if err != nil {
		s.logger.Error("Failed to load notifications", zap.Error(err), zap.String("userID", userID.String()))
		return nil, common.ErrInternalServer.WithDetails("Could not retrieve notifications.")
	}
	return notifications, nil
}

func (s *ServiceImplementation) MarkNotificationAsRead(ctx context.Context, notificationID, userID uuid.UUID) error {
	err := s.repo.MarkAsRead(ctx, notificationID, userID)
	if err == nil {
		return nil
	}
	var apiErr *common.APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	s.logger.Error("Failed to mark notification as read", zap.Error(err))
	return common.ErrInternalServer.WithDetails("Could not mark notification as read.")
}

func (s *ServiceImplementation) MarkAllUserNotificationsAsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	count, err := s.repo.MarkAllAsRead(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to mark all notifications as read", zap.Error(err))
		return 0, common.ErrInternalServer.WithDetails("Could not mark all notifications as read.")
	}
	return count, nil
}
