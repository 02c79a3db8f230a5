// File: internal/report/model.go
package report

import (
	"time"

	"campus_care_backend/internal/complaint"
)

// Heatmap variants accepted by the dashboard.
const (
	HeatmapTotal    = "total"
	HeatmapHigh     = "high"
	HeatmapPending  = "pending"
	HeatmapResolved = "resolved"
)

// TopLocationCount is how many locations the summary highlights.
const TopLocationCount = 5

// Filter scopes a report. Nil dates are open-ended.
type Filter struct {
	Start      *time.Time
	End        *time.Time
	Department string
}

// Stats is the headline block of a report.
type Stats struct {
	Total              int64   `json:"total"`
	Resolved           int64   `json:"resolved"`
	Pending            int64   `json:"pending"`
	ResolutionRate     float64 `json:"resolution_rate"`
	AvgResolutionHours float64 `json:"avg_resolution_hours"`
}

// Report is the full aggregation rendered into the PDF.
type Report struct {
	Stats        Stats                  `json:"stats"`
	Categories   []complaint.GroupCount `json:"categories"`
	Priorities   []complaint.GroupCount `json:"priorities"`
	Trends       []complaint.GroupCount `json:"trends"`
	Locations    []complaint.GroupCount `json:"locations"`
	TopLocations []complaint.GroupCount `json:"top_locations"`
	Department   string                 `json:"department,omitempty"`
	RangeStart   string                 `json:"range_start"`
	RangeEnd     string                 `json:"range_end"`
	GeneratedAt  time.Time              `json:"generated_at"`
}

// StatusCounts splits the dashboard total by status.
type StatusCounts struct {
	Submitted  int64 `json:"submitted"`
	InProgress int64 `json:"in_progress"`
	Resolved   int64 `json:"resolved"`
}

// AdminStats is the admin dashboard summary.
type AdminStats struct {
	TotalComplaints int64                  `json:"total_complaints"`
	Status          StatusCounts           `json:"status"`
	HighPriority    int64                  `json:"high_priority"`
	CategoryStats   []complaint.GroupCount `json:"category_stats"`
}

// HeatPoint is one location count placed on the campus map.
type HeatPoint struct {
	Location string `json:"location"`
	Count    int64  `json:"count"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
}

// ExportQuery binds the export endpoints' query string.
type ExportQuery struct {
	StartDate  string `form:"startDate"`
	EndDate    string `form:"endDate"`
	Department string `form:"department"`
}

// EmailRequest is the body of the department report action.
type EmailRequest struct {
	Department string `json:"department" binding:"required"`
	StartDate  string `json:"startDate"`
	EndDate    string `json:"endDate"`
}

// EmailResult reports what the department email action did.
type EmailResult struct {
	Recipients []string `json:"recipients"`
	Sent       int      `json:"sent"`
	Skipped    int      `json:"skipped"`
}
