// File: internal/report/service.go
package report

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"campus_care_backend/internal/campus"
	"campus_care_backend/internal/common"
	"campus_care_backend/internal/complaint"
	"campus_care_backend/internal/domain"
	"campus_care_backend/internal/mailer"
	"campus_care_backend/internal/settings"
	"campus_care_backend/internal/user"

	"github.com/gosimple/slug"
	"go.uber.org/zap"
)

// Aggregator is the read-only slice of the complaint repository reports use.
type Aggregator interface {
	CountBy(ctx context.Context, column string, f complaint.ReportFilter) ([]complaint.GroupCount, error)
	CreatedTimes(ctx context.Context, f complaint.ReportFilter) ([]time.Time, error)
	ResolvedRows(ctx context.Context, f complaint.ReportFilter) ([]complaint.ResolutionRow, error)
}

// Recipients finds the supervisors of a department.
type Recipients interface {
	ListByRoleAndDepartment(ctx context.Context, role, department string) ([]user.User, error)
}

// SettingsReader supplies the default report range and admin email.
type SettingsReader interface {
	Get(ctx context.Context) (*settings.Settings, error)
}

type Service interface {
	Build(ctx context.Context, f Filter) (*Report, error)
	AdminStats(ctx context.Context) (*AdminStats, error)
	Heatmap(ctx context.Context, variant string) ([]HeatPoint, error)
	ExportPDF(ctx context.Context, f Filter) ([]byte, string, error)
	EmailDepartment(ctx context.Context, req EmailRequest) (*EmailResult, error)
}

type ServiceImplementation struct {
	complaints Aggregator
	recipients Recipients
	settings   SettingsReader
	renderer   Renderer
	mailer     mailer.Mailer
	logger     *zap.Logger
	now        func() time.Time
}

var _ Service = (*ServiceImplementation)(nil)

func NewService(
	complaints Aggregator,
	recipients Recipients,
	settingsReader SettingsReader,
	renderer Renderer,
	m mailer.Mailer,
	logger *zap.Logger,
) *ServiceImplementation {
	return &ServiceImplementation{
		complaints: complaints,
		recipients: recipients,
		settings:   settingsReader,
		renderer:   renderer,
		mailer:     m,
		logger:     logger.Named("ReportService"),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (f Filter) scope() complaint.ReportFilter {
	return complaint.ReportFilter{Start: f.Start, End: f.End, Department: f.Department}
}

// Build runs every aggregation for the filter.
func (s *ServiceImplementation) Build(ctx context.Context, f Filter) (*Report, error) {
	scope := f.scope()

	byStatus, err := s.complaints.CountBy(ctx, complaint.ColumnStatus, scope)
	if err != nil {
		return nil, err
	}
	categories, err := s.complaints.CountBy(ctx, complaint.ColumnCategory, scope)
	if err != nil {
		return nil, err
	}
	priorities, err := s.complaints.CountBy(ctx, complaint.ColumnPriority, scope)
	if err != nil {
		return nil, err
	}
	locations, err := s.complaints.CountBy(ctx, complaint.ColumnLocation, scope)
	if err != nil {
		return nil, err
	}
	created, err := s.complaints.CreatedTimes(ctx, scope)
	if err != nil {
		return nil, err
	}
	resolved, err := s.complaints.ResolvedRows(ctx, scope)
	if err != nil {
		return nil, err
	}

	r := &Report{
		Stats:       summarize(byStatus),
		Categories:  categories,
		Priorities:  priorities,
		Trends:      dailyCounts(created),
		Locations:   locations,
		Department:  f.Department,
		RangeStart:  "All Time",
		RangeEnd:    "Today",
		GeneratedAt: s.now(),
	}
	r.Stats.AvgResolutionHours = averageResolutionHours(resolved)
	r.TopLocations = locations
	if len(locations) > TopLocationCount {
		r.TopLocations = locations[:TopLocationCount]
	}
	if f.Start != nil {
		r.RangeStart = f.Start.Format(dateLayout)
	}
	if f.End != nil {
		r.RangeEnd = f.End.Format(dateLayout)
	}
	return r, nil
}

func summarize(byStatus []complaint.GroupCount) Stats {
	var st Stats
	for _, row := range byStatus {
		st.Total += row.Total
		switch domain.Status(row.Label) {
		case domain.StatusResolved:
			st.Resolved += row.Total
		case domain.StatusSubmitted, domain.StatusInProgress:
			st.Pending += row.Total
		}
	}
	if st.Total > 0 {
		st.ResolutionRate = round2(float64(st.Resolved) / float64(st.Total) * 100)
	}
	return st
}

// dailyCounts buckets creation times by UTC day, ascending.
func dailyCounts(times []time.Time) []complaint.GroupCount {
	counts := make(map[string]int64)
	for _, t := range times {
		counts[t.UTC().Format(dateLayout)]++
	}
	out := make([]complaint.GroupCount, 0, len(counts))
	for day, n := range counts {
		out = append(out, complaint.GroupCount{Label: day, Total: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

// averageResolutionHours averages first-Resolved minus created, skipping
// non-positive intervals. Zero when nothing qualifies.
func averageResolutionHours(rows []complaint.ResolutionRow) float64 {
	var total time.Duration
	var n int
	for _, row := range rows {
		c := complaint.Complaint{StatusHistory: row.StatusHistory}
		at, ok := c.FirstResolvedAt()
		if !ok {
			continue
		}
		if d := at.Sub(row.CreatedAt); d > 0 {
			total += d
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return round2(total.Hours() / float64(n))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func (s *ServiceImplementation) AdminStats(ctx context.Context) (*AdminStats, error) {
	byStatus, err := s.complaints.CountBy(ctx, complaint.ColumnStatus, complaint.ReportFilter{})
	if err != nil {
		return nil, err
	}
	byPriority, err := s.complaints.CountBy(ctx, complaint.ColumnPriority, complaint.ReportFilter{})
	if err != nil {
		return nil, err
	}
	categories, err := s.complaints.CountBy(ctx, complaint.ColumnCategory, complaint.ReportFilter{})
	if err != nil {
		return nil, err
	}

	stats := &AdminStats{CategoryStats: categories}
	for _, row := range byStatus {
		stats.TotalComplaints += row.Total
		switch domain.Status(row.Label) {
		case domain.StatusSubmitted:
			stats.Status.Submitted = row.Total
		case domain.StatusInProgress:
			stats.Status.InProgress = row.Total
		case domain.StatusResolved:
			stats.Status.Resolved = row.Total
		}
	}
	for _, row := range byPriority {
		if domain.Priority(row.Label) == domain.PriorityHigh {
			stats.HighPriority = row.Total
		}
	}
	return stats, nil
}

// Heatmap counts complaints per campus block. Locations that match no block are left out.
func (s *ServiceImplementation) Heatmap(ctx context.Context, variant string) ([]HeatPoint, error) {
	var scope complaint.ReportFilter
	switch strings.ToLower(strings.TrimSpace(variant)) {
	case "", HeatmapTotal:
	case HeatmapHigh:
		scope.Priority = domain.PriorityHigh
	case HeatmapPending:
		scope.Statuses = []domain.Status{domain.StatusSubmitted, domain.StatusInProgress}
	case HeatmapResolved:
		scope.Statuses = []domain.Status{domain.StatusResolved}
	default:
		return nil, common.ValidationFailure("filter", "Filter must be one of: total high pending resolved")
	}

	rows, err := s.complaints.CountBy(ctx, complaint.ColumnLocation, scope)
	if err != nil {
		return nil, err
	}

	points := make([]HeatPoint, 0, len(rows))
	index := make(map[string]int)
	for _, row := range rows {
		block, ok := campus.Lookup(row.Label)
		if !ok {
			continue
		}
		if i, seen := index[block.Name]; seen {
			points[i].Count += row.Total
			continue
		}
		index[block.Name] = len(points)
		points = append(points, HeatPoint{Location: block.Name, Count: row.Total, X: block.X, Y: block.Y})
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].Count > points[j].Count })
	return points, nil
}

// ExportPDF builds and prints the report. The filename is derived from the department.
func (s *ServiceImplementation) ExportPDF(ctx context.Context, f Filter) ([]byte, string, error) {
	r, err := s.Build(ctx, f)
	if err != nil {
		return nil, "", err
	}
	pdf, err := s.render(ctx, r)
	if err != nil {
		return nil, "", err
	}
	return pdf, reportFilename(f.Department, s.now()), nil
}

func (s *ServiceImplementation) render(ctx context.Context, r *Report) ([]byte, error) {
	html, err := RenderHTML(r)
	if err != nil {
		return nil, err
	}
	pdf, err := s.renderer.RenderPDF(ctx, html)
	if err != nil {
		s.logger.Error("PDF rendering failed", zap.Error(err), zap.String("department", r.Department))
		return nil, common.ErrUpstreamUnavailable.WithDetails("Report rendering failed.")
	}
	return pdf, nil
}

func reportFilename(department string, now time.Time) string {
	if department == "" {
		return "campus-report-" + now.Format(dateLayout) + ".pdf"
	}
	return slug.Make(department) + "-report.pdf"
}

// EmailDepartment sends the department report to each of its supervisors.
// Delivery failures are counted as skipped, never returned.
func (s *ServiceImplementation) EmailDepartment(ctx context.Context, req EmailRequest) (*EmailResult, error) {
	department := strings.TrimSpace(req.Department)
	if department == "" {
		return nil, common.ValidationFailure("department", "Department is required")
	}
	f, err := ParseFilter(ExportQuery{StartDate: req.StartDate, EndDate: req.EndDate, Department: department})
	if err != nil {
		return nil, err
	}

	current, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	if f.Start == nil && f.End == nil {
		start, end := current.ReportWindow(s.now())
		f.Start, f.End = &start, &end
	}

	supervisors, err := s.recipients.ListByRoleAndDepartment(ctx, common.RoleSupervisor, department)
	if err != nil {
		return nil, err
	}
	if len(supervisors) == 0 {
		return nil, common.ErrNotFound.WithDetails("No supervisors found for this department")
	}

	r, err := s.Build(ctx, f)
	if err != nil {
		return nil, err
	}
	pdf, err := s.render(ctx, r)
	if err != nil {
		return nil, err
	}

	var cc []string
	if addr := strings.TrimSpace(current.AdminEmail); addr != "" {
		cc = []string{addr}
	}
	attachment := mailer.Attachment{Filename: reportFilename(department, s.now()), ContentType: "application/pdf", Data: pdf}
	subject := capitalize(department) + " Monthly Activity Report"

	result := &EmailResult{Recipients: make([]string, 0, len(supervisors))}
	for _, sup := range supervisors {
		result.Recipients = append(result.Recipients, sup.Email)
		body, err := renderEmail(sup.Name, department, r.Stats)
		if err != nil {
			return nil, err
		}
		sent, err := s.mailer.Send(ctx, mailer.Message{
			To:          []string{sup.Email},
			Cc:          cc,
			Subject:     subject,
			HTMLBody:    body,
			Attachments: []mailer.Attachment{attachment},
		})
		if err != nil {
			s.logger.Warn("Department report email failed", zap.Error(err), zap.String("to", sup.Email))
		}
		if sent {
			result.Sent++
		} else {
			result.Skipped++
		}
	}
	s.logger.Info("Department report dispatched",
		zap.String("department", department),
		zap.Int("sent", result.Sent),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
