// File: internal/complaint/service.go
package complaint

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"campus_care_backend/internal/classifier"
	"campus_care_backend/internal/common"
	"campus_care_backend/internal/config"
	"campus_care_backend/internal/domain"
	"campus_care_backend/internal/filestorage"
	"campus_care_backend/internal/notification"
	"campus_care_backend/internal/platform/metrics"
	"campus_care_backend/internal/user"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// UserDirectory is the slice of the user repository complaints need.
type UserDirectory interface {
	ListIDsByRole(ctx context.Context, role string) ([]uuid.UUID, error)
	FindSummaries(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]user.Summary, error)
}

// Notifier writes in-app notifications.
type Notifier interface {
	CreateNotification(ctx context.Context, userID uuid.UUID, msg notification.Message) (*notification.Notification, error)
	CreateBulk(ctx context.Context, userIDs []uuid.UUID, msg notification.Message) (int, error)
}

// Service defines the complaint lifecycle.
type Service interface {
	Create(ctx context.Context, actor common.Actor, in CreateInput) (*Complaint, error)
	Predict(ctx context.Context, image []byte, note string) (*classifier.Prediction, error)
	Transition(ctx context.Context, id uuid.UUID, actor common.Actor, status string, adminNotes *string) (*Complaint, error)
	UpdateFields(ctx context.Context, id uuid.UUID, actor common.Actor, req UpdateFieldsRequest) (*Complaint, error)
	Get(ctx context.Context, id uuid.UUID, actor common.Actor) (*Complaint, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]Complaint, error)
	ListAll(ctx context.Context, filter AdminFilter, page, pageSize int) ([]Complaint, *common.Pagination, error)
	ListForDepartment(ctx context.Context, actor common.Actor, filter DepartmentFilter) (*DepartmentView, error)
	EscalationCandidates(ctx context.Context, olderThan time.Duration, limit int) ([]Complaint, error)
}

// ServiceImplementation implements Service.
type ServiceImplementation struct {
	repo       Repository
	classifier classifier.Classifier
	images     filestorage.ImageStore
	notifier   Notifier
	users      UserDirectory
	metrics    *metrics.Metrics
	cfg        *config.Config
	logger     *zap.Logger
	now        func() time.Time
}

var _ Service = (*ServiceImplementation)(nil)

// NewService creates a new complaint service.
func NewService(
	repo Repository,
	cls classifier.Classifier,
	images filestorage.ImageStore,
	notifier Notifier,
	users UserDirectory,
	m *metrics.Metrics,
	cfg *config.Config,
	logger *zap.Logger,
) *ServiceImplementation {
	return &ServiceImplementation{
		repo:       repo,
		classifier: cls,
		images:     images,
		notifier:   notifier,
		users:      users,
		metrics:    m,
		cfg:        cfg,
		logger:     logger.Named("ComplaintService"),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *ServiceImplementation) detectImage(image []byte) (filestorage.DetectedImage, error) {
	detected, err := filestorage.DetectImage(image, s.cfg.MaxImageBytes())
	switch {
	case err == nil:
		return detected, nil
	case errors.Is(err, filestorage.ErrEmptyImage):
		return detected, common.ValidationFailure("image", "Image is required")
	case errors.Is(err, filestorage.ErrImageTooBig):
		return detected, common.ValidationFailure("image", fmt.Sprintf("Image must be at most %d MB", s.cfg.MaxImageSizeMB))
	default:
		return detected, common.ValidationFailure("image", "Only image files are allowed")
	}
}

// Create classifies, checks for duplicates, stores the image and inserts the complaint.
func (s *ServiceImplementation) Create(ctx context.Context, actor common.Actor, in CreateInput) (*Complaint, error) {
	location := strings.TrimSpace(in.Location)
	if location == "" {
		return nil, common.ValidationFailure("location", "Location is required")
	}
	var userCategory domain.Category
	if raw := strings.TrimSpace(in.Category); raw != "" {
		c, ok := domain.ParseCategory(raw)
		if !ok {
			return nil, common.ValidationFailure("category", "Category must be one of: "+domain.OneOf(domain.Categories))
		}
		userCategory = c
	}
	detected, err := s.detectImage(in.Image)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.RecentImageURLs(ctx, s.cfg.DuplicateSampleSize)
	if err != nil {
		return nil, err
	}

	note := strings.TrimSpace(in.Note)
	pred := s.classifier.Classify(ctx, classifier.Input{Image: in.Image, Note: note, ExistingImages: existing})
	if pred.Duplicate.IsDuplicate {
		s.metrics.DuplicateRejected()
		s.logger.Info("Rejected duplicate complaint",
			zap.String("userID", actor.UserID.String()),
			zap.String("match", pred.Duplicate.MatchLabel()),
			zap.String("similarity", pred.Duplicate.ScoreLabel()),
		)
		return nil, &DuplicateComplaintError{Match: pred.Duplicate}
	}

	c := &Complaint{
		UserID:   actor.UserID,
		Location: location,
		Category: firstNonEmpty(userCategory, pred.Category, domain.DefaultCategory),
		Severity: firstNonEmpty(pred.Severity, domain.DefaultSeverity),
		Priority: firstNonEmpty(pred.Priority, domain.DefaultPriority),
		Note:     firstNonEmpty(note, strings.TrimSpace(pred.Description)),
		Status:   domain.StatusSubmitted,
	}
	if classroom := strings.TrimSpace(in.Classroom); classroom != "" {
		c.Classroom = &classroom
	}

	stored, err := s.images.Save(ctx, filestorage.ComplaintImageFolder, in.Image, detected.ContentType, detected.Extension)
	if err != nil {
		s.logger.Error("Failed to store complaint image", zap.Error(err))
		return nil, common.ErrUpstreamUnavailable.WithDetails("Could not store the image.")
	}
	c.ImageURL = stored.URL
	c.ImageStorageID = stored.StorageID

	now := s.now()
	c.CreatedAt = now
	c.UpdatedAt = now
	c.StatusHistory = datatypes.JSONSlice[StatusEntry]{{Status: domain.StatusSubmitted, Date: now}}

	if err := s.repo.Create(ctx, c); err != nil {
		s.logger.Error("Failed to persist complaint", zap.Error(err))
		return nil, err
	}
	s.metrics.ComplaintCreated(string(c.Category), string(c.Priority))
	s.logger.Info("Complaint created",
		zap.String("complaintID", c.ID.String()),
		zap.String("category", string(c.Category)),
		zap.String("priority", string(c.Priority)),
		zap.Bool("classifierFallback", pred.Fallback),
	)

	s.attachReporters(ctx, []*Complaint{c})
	return c, nil
}

// Predict classifies an image without storing anything.
func (s *ServiceImplementation) Predict(ctx context.Context, image []byte, note string) (*classifier.Prediction, error) {
	if _, err := s.detectImage(image); err != nil {
		return nil, err
	}
	return s.classifier.Classify(ctx, classifier.Input{Image: image, Note: strings.TrimSpace(note)}), nil
}

// Transition writes a new status. Every call appends history; only a real
// change notifies the owner.
func (s *ServiceImplementation) Transition(ctx context.Context, id uuid.UUID, actor common.Actor, rawStatus string, adminNotes *string) (*Complaint, error) {
	status, ok := domain.ParseStatus(rawStatus)
	if !ok {
		return nil, common.ValidationFailure("status", "Invalid status")
	}
	if !actor.IsAdmin() && !actor.IsSupervisor() {
		return nil, common.ErrForbidden
	}

	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.IsSupervisor() && (actor.Department == "" || c.Department() != actor.Department) {
		return nil, common.ErrForbidden.WithDetails("Access denied. Complaint not in your department.")
	}

	var notes *string
	if adminNotes != nil {
		if trimmed := strings.TrimSpace(*adminNotes); trimmed != "" {
			notes = &trimmed
		}
	}

	oldStatus := c.Status
	now := s.now()
	history := make(datatypes.JSONSlice[StatusEntry], 0, len(c.StatusHistory)+1)
	history = append(history, c.StatusHistory...)
	history = append(history, StatusEntry{Status: status, Date: now})

	if err := s.repo.ApplyTransition(ctx, c.ID, status, history, notes, now); err != nil {
		return nil, err
	}
	c.Status = status
	c.StatusHistory = history
	c.UpdatedAt = now
	if notes != nil {
		c.AdminNotes = notes
	}

	if oldStatus != status {
		s.notifyOwner(ctx, c, actor)
	}
	s.attachReporters(ctx, []*Complaint{c})
	return c, nil
}

func (s *ServiceImplementation) notifyOwner(ctx context.Context, c *Complaint, actor common.Actor) {
	title := "Status Updated"
	if actor.IsSupervisor() {
		title = "Status Updated (via Supervisor)"
	}
	complaintID := c.ID
	msg := notification.Message{
		ComplaintID: &complaintID,
		Type:        notificationTypeFor(c.Status),
		Title:       title,
		Body:        fmt.Sprintf("Your report for %q at %s has been updated to: %s", c.Category, c.Location, c.Status),
	}
	if _, err := s.notifier.CreateNotification(ctx, c.UserID, msg); err != nil {
		s.logger.Warn("Status notification failed", zap.Error(err), zap.String("complaintID", c.ID.String()))
	}
}

func notificationTypeFor(status domain.Status) notification.Type {
	switch status {
	case domain.StatusResolved:
		return notification.TypeSuccess
	case domain.StatusInProgress:
		return notification.TypeInfo
	default:
		return notification.TypeWarning
	}
}

// UpdateFields applies admin edits and fans out an escalation notice when
// priority becomes High.
func (s *ServiceImplementation) UpdateFields(ctx context.Context, id uuid.UUID, actor common.Actor, req UpdateFieldsRequest) (*Complaint, error) {
	if !actor.IsAdmin() {
		return nil, common.ErrForbidden
	}

	fields := map[string]interface{}{}
	var priority domain.Priority
	var category domain.Category
	var severity domain.Severity
	if req.Priority != nil {
		p, ok := domain.ParsePriority(*req.Priority)
		if !ok {
			return nil, common.ValidationFailure("priority", "Priority must be one of: "+domain.OneOf(domain.Priorities))
		}
		priority = p
		fields["priority"] = p
	}
	if req.Category != nil {
		c, ok := domain.ParseCategory(*req.Category)
		if !ok {
			return nil, common.ValidationFailure("category", "Category must be one of: "+domain.OneOf(domain.Categories))
		}
		category = c
		fields["category"] = c
	}
	if req.Severity != nil {
		sv, ok := domain.ParseSeverity(*req.Severity)
		if !ok {
			return nil, common.ValidationFailure("severity", "Severity must be one of: "+domain.OneOf(domain.Severities))
		}
		severity = sv
		fields["severity"] = sv
	}
	var notes *string
	if req.AdminNotes != nil {
		if trimmed := strings.TrimSpace(*req.AdminNotes); trimmed != "" {
			notes = &trimmed
			fields["admin_notes"] = trimmed
		}
	}
	var department *string
	clearDepartment := false
	if req.AssignedDepartment != nil {
		if trimmed := strings.TrimSpace(*req.AssignedDepartment); trimmed != "" {
			department = &trimmed
			fields["assigned_department"] = trimmed
		} else {
			clearDepartment = true
			fields["assigned_department"] = nil
		}
	}

	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		s.attachReporters(ctx, []*Complaint{c})
		return c, nil
	}

	now := s.now()
	fields["updated_at"] = now
	if err := s.repo.UpdateFields(ctx, c.ID, fields); err != nil {
		return nil, err
	}

	oldPriority := c.Priority
	if priority != "" {
		c.Priority = priority
	}
	if category != "" {
		c.Category = category
	}
	if severity != "" {
		c.Severity = severity
	}
	if notes != nil {
		c.AdminNotes = notes
	}
	if department != nil {
		c.AssignedDepartment = department
	} else if clearDepartment {
		c.AssignedDepartment = nil
	}
	c.UpdatedAt = now

	if oldPriority != domain.PriorityHigh && c.Priority == domain.PriorityHigh {
		s.fanOutEscalation(ctx, c)
	}
	s.attachReporters(ctx, []*Complaint{c})
	return c, nil
}

func (s *ServiceImplementation) fanOutEscalation(ctx context.Context, c *Complaint) {
	admins, err := s.users.ListIDsByRole(ctx, common.RoleAdmin)
	if err != nil {
		s.logger.Warn("Could not list admins for escalation", zap.Error(err))
		return
	}
	complaintID := c.ID
	msg := notification.Message{
		ComplaintID: &complaintID,
		Type:        notification.TypeWarning,
		Title:       "High Priority Escalation",
		Body:        fmt.Sprintf("The report for %q at %s has been escalated to High priority.", c.Category, c.Location),
	}
	n, err := s.notifier.CreateBulk(ctx, admins, msg)
	if err != nil {
		s.logger.Warn("Escalation fan-out failed", zap.Error(err), zap.String("complaintID", c.ID.String()))
		return
	}
	s.logger.Info("Escalation fan-out sent", zap.String("complaintID", c.ID.String()), zap.Int("admins", n))
}

// Get returns a complaint readable by its owner, any admin, or the assigned department's supervisor.
func (s *ServiceImplementation) Get(ctx context.Context, id uuid.UUID, actor common.Actor) (*Complaint, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	switch {
	case actor.IsAdmin(), c.UserID == actor.UserID:
	case actor.IsSupervisor() && actor.Department != "" && c.Department() == actor.Department:
	default:
		return nil, common.ErrForbidden.WithDetails("Access denied")
	}
	s.attachReporters(ctx, []*Complaint{c})
	return c, nil
}

func (s *ServiceImplementation) ListForUser(ctx context.Context, userID uuid.UUID) ([]Complaint, error) {
	complaints, _, err := s.repo.List(ctx, ListQuery{UserID: &userID}, 0, 0)
	if err != nil {
		return nil, err
	}
	s.attachReporters(ctx, pointers(complaints))
	return complaints, nil
}

func (s *ServiceImplementation) ListAll(ctx context.Context, filter AdminFilter, page, pageSize int) ([]Complaint, *common.Pagination, error) {
	q := ListQuery{}
	var err error
	if q.Category, err = parseOptional(filter.Category, "category", domain.ParseCategory); err != nil {
		return nil, nil, err
	}
	if q.Priority, err = parseOptional(filter.Priority, "priority", domain.ParsePriority); err != nil {
		return nil, nil, err
	}
	if q.Status, err = parseOptional(filter.Status, "status", domain.ParseStatus); err != nil {
		return nil, nil, err
	}

	complaints, total, err := s.repo.List(ctx, q, page, pageSize)
	if err != nil {
		return nil, nil, err
	}
	s.attachReporters(ctx, pointers(complaints))
	return complaints, common.NewPagination(total, page, pageSize), nil
}

// ListForDepartment is the supervisor view of their department.
func (s *ServiceImplementation) ListForDepartment(ctx context.Context, actor common.Actor, filter DepartmentFilter) (*DepartmentView, error) {
	if actor.Department == "" {
		return nil, common.ErrForbidden.WithDetails("Supervisor department not configured")
	}
	department := actor.Department
	q := ListQuery{Department: &department, Search: filter.Search}
	var err error
	if q.Status, err = parseOptional(filter.Status, "status", domain.ParseStatus); err != nil {
		return nil, err
	}
	if q.Priority, err = parseOptional(filter.Priority, "priority", domain.ParsePriority); err != nil {
		return nil, err
	}

	complaints, _, err := s.repo.List(ctx, q, 0, 0)
	if err != nil {
		return nil, err
	}
	counts, err := s.repo.CountBy(ctx, ColumnStatus, ReportFilter{Department: department})
	if err != nil {
		return nil, err
	}

	view := &DepartmentView{Complaints: complaints}
	for _, row := range counts {
		view.Stats.TotalAssigned += row.Total
		switch domain.Status(row.Label) {
		case domain.StatusSubmitted:
			view.Stats.Pending = row.Total
		case domain.StatusInProgress:
			view.Stats.InProgress = row.Total
		case domain.StatusResolved:
			view.Stats.Resolved = row.Total
		}
	}
	s.attachReporters(ctx, pointers(view.Complaints))
	return view, nil
}

// EscalationCandidates lists open, non-High complaints older than olderThan.
func (s *ServiceImplementation) EscalationCandidates(ctx context.Context, olderThan time.Duration, limit int) ([]Complaint, error) {
	return s.repo.FindEscalationCandidates(ctx, s.now().Add(-olderThan), limit)
}

// attachReporters fills in the reporter summary. Lookup failures leave it empty.
func (s *ServiceImplementation) attachReporters(ctx context.Context, complaints []*Complaint) {
	if len(complaints) == 0 || s.users == nil {
		return
	}
	seen := make(map[uuid.UUID]struct{}, len(complaints))
	ids := make([]uuid.UUID, 0, len(complaints))
	for _, c := range complaints {
		if _, ok := seen[c.UserID]; !ok {
			seen[c.UserID] = struct{}{}
			ids = append(ids, c.UserID)
		}
	}
	summaries, err := s.users.FindSummaries(ctx, ids)
	if err != nil {
		s.logger.Warn("Could not load reporter summaries", zap.Error(err))
		return
	}
	for _, c := range complaints {
		if summary, ok := summaries[c.UserID]; ok {
			c.Reporter = &summary
		}
	}
}

func pointers(complaints []Complaint) []*Complaint {
	out := make([]*Complaint, len(complaints))
	for i := range complaints {
		out[i] = &complaints[i]
	}
	return out
}

func parseOptional[T ~string](raw, field string, parse func(string) (T, bool)) (T, error) {
	var zero T
	if strings.TrimSpace(raw) == "" {
		return zero, nil
	}
	v, ok := parse(raw)
	if !ok {
		return zero, common.ValidationFailure(field, fmt.Sprintf("Unknown %s %q", field, raw))
	}
	return v, nil
}

func firstNonEmpty[T ~string](values ...T) T {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	var zero T
	return zero
}
