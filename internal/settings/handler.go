package settings

import (
	"campus_care_backend/internal/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes mounts /settings on an admin-only group.
func (h *Handler) RegisterRoutes(admin *gin.RouterGroup) {
	admin.GET("/settings", h.get)
	admin.PUT("/settings", h.update)
}

func (h *Handler) get(c *gin.Context) {
	s, err := h.service.Get(c.Request.Context())
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Settings retrieved successfully.", s)
}

// update replaces the settings. Omitted fields take their default values.
func (h *Handler) update(c *gin.Context) {
	req := Defaults()
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondWithError(c, common.BindingError(err))
		return
	}
	s, err := h.service.Update(c.Request.Context(), req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Settings updated successfully.", s)
}
