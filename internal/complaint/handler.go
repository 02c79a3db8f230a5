// File: internal/complaint/handler.go
package complaint

import (
	"errors"
	"io"
	"net/http"

	"campus_care_backend/internal/common"
	"campus_care_backend/internal/config"
	"campus_care_backend/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CodeDuplicateComplaint is the error code of a rejected duplicate.
const CodeDuplicateComplaint = "DUPLICATE_COMPLAINT"

// Handler serves the complaint endpoints for all three roles.
type Handler struct {
	service Service
	cfg     *config.Config
	logger  *zap.Logger
}

// NewHandler creates a new complaint handler.
func NewHandler(service Service, cfg *config.Config, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		cfg:     cfg,
		logger:  logger,
	}
}

// RegisterRoutes mounts the student, admin and supervisor complaint routes.
// submitLimit guards the endpoints that call the classifier.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW, submitLimit gin.HandlerFunc) {
	complaints := router.Group("/complaints", authMW)
	{
		complaints.POST("/predict", submitLimit, h.predict)
		complaints.GET("/:id", h.getComplaint)

		student := complaints.Group("", middleware.RoleAuthMiddleware(common.RoleStudent))
		student.POST("", submitLimit, h.createComplaint)
		student.GET("", h.getMyComplaints)
	}

	admin := router.Group("/admin/complaints", authMW, middleware.RoleAuthMiddleware(common.RoleAdmin))
	{
		admin.GET("", h.adminListComplaints)
		admin.PUT("/:id/status", h.adminUpdateStatus)
		admin.PUT("/:id", h.adminUpdateFields)
	}

	supervisor := router.Group("/supervisor/complaints", authMW, middleware.RoleAuthMiddleware(common.RoleSupervisor))
	{
		supervisor.GET("", h.supervisorListComplaints)
		supervisor.PUT("/:id/status", h.supervisorUpdateStatus)
	}
}

// readImage pulls the "image" multipart file, capped one byte over the limit
// so oversize uploads are still detected.
func (h *Handler) readImage(c *gin.Context) ([]byte, error) {
	fh, err := c.FormFile("image")
	if err != nil {
		return nil, common.ValidationFailure("image", "Image is required")
	}
	f, err := fh.Open()
	if err != nil {
		return nil, common.ErrBadRequest.WithDetails("Could not read the uploaded image.")
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.cfg.MaxImageBytes()+1))
	if err != nil {
		return nil, common.ErrBadRequest.WithDetails("Could not read the uploaded image.")
	}
	return data, nil
}

func (h *Handler) respondError(c *gin.Context, err error) {
	var dup *DuplicateComplaintError
	if errors.As(err, &dup) {
		c.AbortWithStatusJSON(http.StatusBadRequest, DuplicateResponse{
			Code:      CodeDuplicateComplaint,
			Message:   "This appears to be a duplicate complaint",
			Duplicate: dup.Match,
		})
		return
	}
	common.RespondWithError(c, err)
}

func (h *Handler) createComplaint(c *gin.Context) {
	actor := common.GetActorFromContext(c)
	if actor.UserID == uuid.Nil {
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails("User ID not found in token."))
		return
	}

	var form CreateComplaintForm
	if err := c.ShouldBindWith(&form, binding.FormMultipart); err != nil {
		common.RespondWithError(c, common.BindingError(err))
		return
	}
	image, err := h.readImage(c)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}

	created, err := h.service.Create(c.Request.Context(), actor, CreateInput{
		Image:     image,
		Location:  form.Location,
		Note:      form.Note,
		Category:  form.Category,
		Classroom: form.Classroom,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	common.RespondCreated(c, "Complaint submitted successfully.", created)
}

func (h *Handler) predict(c *gin.Context) {
	image, err := h.readImage(c)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	prediction, err := h.service.Predict(c.Request.Context(), image, c.PostForm("note"))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Prediction generated.", prediction)
}

func (h *Handler) getMyComplaints(c *gin.Context) {
	userID := common.GetUserIDFromContext(c)
	if userID == uuid.Nil {
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails("User ID not found in token."))
		return
	}
	complaints, err := h.service.ListForUser(c.Request.Context(), userID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Complaints retrieved successfully.", complaints)
}

func (h *Handler) getComplaint(c *gin.Context) {
	id, ok := complaintID(c)
	if !ok {
		return
	}
	complaint, err := h.service.Get(c.Request.Context(), id, common.GetActorFromContext(c))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Complaint retrieved successfully.", complaint)
}

func (h *Handler) adminListComplaints(c *gin.Context) {
	var filter AdminFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		common.RespondWithError(c, common.BindingError(err))
		return
	}
	page, pageSize := common.GetPaginationParams(c)

	complaints, pagination, err := h.service.ListAll(c.Request.Context(), filter, page, pageSize)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondPaginated(c, "Complaints retrieved successfully.", complaints, pagination)
}

func (h *Handler) adminUpdateStatus(c *gin.Context) {
	h.updateStatus(c, true)
}

func (h *Handler) supervisorUpdateStatus(c *gin.Context) {
	h.updateStatus(c, false)
}

// updateStatus handles both status routes. Supervisors cannot write notes.
func (h *Handler) updateStatus(c *gin.Context, acceptNotes bool) {
	id, ok := complaintID(c)
	if !ok {
		return
	}
	var req StatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondWithError(c, common.BindingError(err))
		return
	}
	notes := req.AdminNotes
	if !acceptNotes {
		notes = nil
	}

	updated, err := h.service.Transition(c.Request.Context(), id, common.GetActorFromContext(c), req.Status, notes)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Complaint status updated successfully.", updated)
}

func (h *Handler) adminUpdateFields(c *gin.Context) {
	id, ok := complaintID(c)
	if !ok {
		return
	}
	var req UpdateFieldsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondWithError(c, common.BindingError(err))
		return
	}
	updated, err := h.service.UpdateFields(c.Request.Context(), id, common.GetActorFromContext(c), req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Complaint updated successfully.", updated)
}

func (h *Handler) supervisorListComplaints(c *gin.Context) {
	var filter DepartmentFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		common.RespondWithError(c, common.BindingError(err))
		return
	}
	view, err := h.service.ListForDepartment(c.Request.Context(), common.GetActorFromContext(c), filter)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Department complaints retrieved successfully.", view)
}

func complaintID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid complaint ID format."))
		return uuid.Nil, false
	}
	return id, true
}
