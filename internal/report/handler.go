// File: internal/report/handler.go
package report

import (
	"campus_care_backend/internal/common"
	"campus_care_backend/internal/middleware"

	"github.com/gin-gonic/gin"
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

// RegisterRoutes mounts the dashboard and report routes for admins and supervisors.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	admin := router.Group("/admin", authMW, middleware.RoleAuthMiddleware(common.RoleAdmin))
	{
		admin.GET("/stats", h.getAdminStats)
		admin.GET("/heatmap", h.getHeatmap)
		admin.GET("/reports/export", h.exportReport)
		admin.POST("/reports/email", h.emailDepartmentReport)
	}

	supervisor := router.Group("/supervisor", authMW, middleware.RoleAuthMiddleware(common.RoleSupervisor))
	supervisor.GET("/reports/export", h.exportDepartmentReport)
}

func (h *Handler) getAdminStats(c *gin.Context) {
	stats, err := h.service.AdminStats(c.Request.Context())
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Statistics retrieved successfully.", stats)
}

func (h *Handler) getHeatmap(c *gin.Context) {
	points, err := h.service.Heatmap(c.Request.Context(), c.DefaultQuery("filter", HeatmapTotal))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Heatmap retrieved successfully.", points)
}

func (h *Handler) exportReport(c *gin.Context) {
	var q ExportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		common.RespondWithError(c, common.BindingError(err))
		return
	}
	h.export(c, q)
}

// exportDepartmentReport ignores any department in the query and uses the caller's own.
func (h *Handler) exportDepartmentReport(c *gin.Context) {
	department := common.GetUserDepartmentFromContext(c)
	if department == "" {
		common.RespondWithError(c, common.ErrForbidden.WithDetails("Supervisor department not configured"))
		return
	}
	var q ExportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		common.RespondWithError(c, common.BindingError(err))
		return
	}
	q.Department = department
	h.export(c, q)
}

func (h *Handler) export(c *gin.Context, q ExportQuery) {
	f, err := ParseFilter(q)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	pdf, filename, err := h.service.ExportPDF(c.Request.Context(), f)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondAttachment(c, filename, "application/pdf", pdf)
}

func (h *Handler) emailDepartmentReport(c *gin.Context) {
	var req EmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondWithError(c, common.BindingError(err))
		return
	}
	result, err := h.service.EmailDepartment(c.Request.Context(), req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}

	message := "Report emailed to department supervisors."
	if result.Sent == 0 {
		message = "Report generated, but the email was skipped."
	}
	common.RespondOK(c, message, result)
}
