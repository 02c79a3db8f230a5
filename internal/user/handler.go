package user

import (
	"campus_care_backend/internal/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler serves the caller's own profile.
type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger.Named("UserHandler")}
}

// RegisterRoutes mounts /user/* behind authMW.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := router.Group("/user", authMW)
	g.GET("/profile", h.getProfile)
	g.PUT("/profile", h.updateProfile)
	g.PUT("/password", h.changePassword)
}

func (h *Handler) getProfile(c *gin.Context) {
	u, err := h.service.GetUserByID(c.Request.Context(), common.GetUserIDFromContext(c))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Profile retrieved successfully.", ToUserResponse(u))
}

func (h *Handler) updateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondWithError(c, common.BindingError(err))
		return
	}
	u, err := h.service.UpdateProfile(c.Request.Context(), common.GetUserIDFromContext(c), req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Profile updated successfully.", ToUserResponse(u))
}

func (h *Handler) changePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondWithError(c, common.BindingError(err))
		return
	}
	if err := h.service.ChangePassword(c.Request.Context(), common.GetUserIDFromContext(c), req); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Password updated successfully.", nil)
}
