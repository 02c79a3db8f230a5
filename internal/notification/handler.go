package notification

import (
	"campus_care_backend/internal/common"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes mounts /notifications behind authMW.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := router.Group("/notifications", authMW)
	g.GET("", h.getNotifications)
	g.PUT("/read-all", h.markAllNotificationsAsRead)
	g.PUT("/:notification_id/read", h.markNotificationAsRead)
}

func (h *Handler) getNotifications(c *gin.Context) {
	userID := common.GetUserIDFromContext(c)
	if userID == uuid.Nil {
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails("User ID not found in token."))
		return
	}

	notifications, err := h.service.GetLatestForUser(c.Request.Context(), userID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Notifications retrieved successfully.", notifications)
}

func (h *Handler) markNotificationAsRead(c *gin.Context) {
	userID := common.GetUserIDFromContext(c)
	if userID == uuid.Nil {
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails("User ID not found in token."))
		return
	}

	notificationID, err := uuid.Parse(c.Param("notification_id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid notification ID format."))
		return
	}

	if err := h.service.MarkNotificationAsRead(c.Request.Context(), notificationID, userID); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Notification marked as read successfully.", nil)
}

func (h *Handler) markAllNotificationsAsRead(c *gin.Context) {
	userID := common.GetUserIDFromContext(c)
	if userID == uuid.Nil {
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails("User ID not found in token."))
		return
	}

	count, err := h.service.MarkAllUserNotificationsAsRead(c.Request.Context(), userID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "All notifications marked as read successfully.", gin.H{"updated": count})
}
