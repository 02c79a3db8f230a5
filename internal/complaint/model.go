// File: internal/complaint/model.go
package complaint

import (
	"fmt"
	"time"

	"campus_care_backend/internal/classifier"
	"campus_care_backend/internal/common"
	"campus_care_backend/internal/domain"
	"campus_care_backend/internal/user"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// StatusEntry is one audited status write.
type StatusEntry struct {
	Status domain.Status `json:"status"`
	Date   time.Time     `json:"date"`
}

// Complaint is a reported facility issue.
type Complaint struct {
	common.BaseModel
	UserID             uuid.UUID                         `gorm:"type:uuid;not null;index" json:"user_id"`
	ImageURL           string                            `gorm:"type:text;not null" json:"image_url"`
	ImageStorageID     string                            `gorm:"type:varchar(255);not null" json:"image_storage_id"`
	Location           string                            `gorm:"type:varchar(200);not null" json:"location"`
	Classroom          *string                           `gorm:"type:varchar(100)" json:"classroom,omitempty"`
	Note               string                            `gorm:"type:text" json:"note"`
	Category           domain.Category                   `gorm:"type:varchar(20);not null;index" json:"category"`
	Priority           domain.Priority                   `gorm:"type:varchar(10);not null;index" json:"priority"`
	Severity           domain.Severity                   `gorm:"type:varchar(20);not null" json:"severity"`
	Status             domain.Status                     `gorm:"type:varchar(20);not null;index" json:"status"`
	AdminNotes         *string                           `gorm:"type:text" json:"admin_notes,omitempty"`
	AssignedDepartment *string                           `gorm:"type:varchar(100);index" json:"assigned_department,omitempty"`
	StatusHistory      datatypes.JSONSlice[StatusEntry] `gorm:"not null" json:"status_history"`

	Reporter *user.Summary `gorm:"-" json:"user,omitempty"`
}

// TableName specifies the table name for GORM.
func (Complaint) TableName() string {
	return "complaints"
}

// Department returns the assigned department, empty when unassigned.
func (c *Complaint) Department() string {
	if c.AssignedDepartment == nil {
		return ""
	}
	return *c.AssignedDepartment
}

// FirstResolvedAt returns the date of the earliest Resolved history entry.
func (c *Complaint) FirstResolvedAt() (time.Time, bool) {
	for _, h := range c.StatusHistory {
		if h.Status == domain.StatusResolved {
			return h.Date, true
		}
	}
	return time.Time{}, false
}

// --- Inputs ---

// CreateInput is a new complaint as submitted by a student. Priority is
// never client-supplied.
type CreateInput struct {
	Image     []byte
	Location  string
	Note      string
	Category  string
	Classroom string
}

// CreateComplaintForm binds the multipart fields next to the image file.
type CreateComplaintForm struct {
	Location  string `form:"location" binding:"required"`
	Note      string `form:"note"`
	Category  string `form:"category"`
	Classroom string `form:"classroom"`
}

// StatusUpdateRequest is the body of the status endpoints.
type StatusUpdateRequest struct {
	Status     string  `json:"status" binding:"required"`
	AdminNotes *string `json:"adminNotes"`
}

// UpdateFieldsRequest carries the admin-writable fields. Nil means unchanged.
type UpdateFieldsRequest struct {
	Priority           *string `json:"priority"`
	Category           *string `json:"category"`
	Severity           *string `json:"severity"`
	AdminNotes         *string `json:"adminNotes"`
	AssignedDepartment *string `json:"assignedDepartment"`
}

// AdminFilter narrows the admin listing. Empty values match everything.
type AdminFilter struct {
	Category string `form:"category"`
	Priority string `form:"priority"`
	Status   string `form:"status"`
}

// DepartmentFilter narrows the supervisor listing.
type DepartmentFilter struct {
	Status   string `form:"status"`
	Priority string `form:"priority"`
	Search   string `form:"search"`
}

// DepartmentStats summarizes a department's workload.
type DepartmentStats struct {
	TotalAssigned int64 `json:"total_assigned"`
	Pending       int64 `json:"pending"`
	InProgress    int64 `json:"in_progress"`
	Resolved      int64 `json:"resolved"`
}

// DepartmentView is the supervisor dashboard payload.
type DepartmentView struct {
	Complaints []Complaint     `json:"complaints"`
	Stats      DepartmentStats `json:"stats"`
}

// DuplicateComplaintError rejects a submission the classifier matched to an existing complaint.
type DuplicateComplaintError struct {
	Match classifier.DuplicateMatch
}

func (e *DuplicateComplaintError) Error() string {
	return fmt.Sprintf("duplicate complaint (similarity %s, match %q)", e.Match.ScoreLabel(), e.Match.MatchLabel())
}

// DuplicateResponse is the 400 body returned for a DuplicateComplaintError.
type DuplicateResponse struct {
	Code      string                    `json:"code"`
	Message   string                    `json:"message"`
	Duplicate classifier.DuplicateMatch `json:"duplicate"`
}
