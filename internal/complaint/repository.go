// File: internal/complaint/repository.go
package complaint

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"campus_care_backend/internal/common"
	"campus_care_backend/internal/domain"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ListQuery is the storage-level filter behind every listing.
type ListQuery struct {
	UserID     *uuid.UUID
	Department *string
	Category   domain.Category
	Priority   domain.Priority
	Status     domain.Status
	// Search is a case-insensitive substring of the location.
	Search string
}

// ReportFilter scopes the aggregation queries. Nil bounds are open.
type ReportFilter struct {
	Start      *time.Time
	End        *time.Time
	Department string
	// Statuses and Priority narrow the heatmap variants.
	Statuses []domain.Status
	Priority domain.Priority
}

// GroupCount is one row of a GROUP BY aggregation.
type GroupCount struct {
	Label string `json:"label"`
	Total int64  `json:"count"`
}

// ResolutionRow is the input to the average resolution time.
type ResolutionRow struct {
	CreatedAt     time.Time
	StatusHistory datatypes.JSONSlice[StatusEntry]
}

// Groupable columns for CountBy.
const (
	ColumnStatus   = "status"
	ColumnCategory = "category"
	ColumnPriority = "priority"
	ColumnLocation = "location"
)

// Repository defines the interface for complaint data operations.
type Repository interface {
	Create(ctx context.Context, c *Complaint) error
	FindByID(ctx context.Context, id uuid.UUID) (*Complaint, error)
	RecentImageURLs(ctx context.Context, limit int) ([]string, error)
	ApplyTransition(ctx context.Context, id uuid.UUID, status domain.Status, history datatypes.JSONSlice[StatusEntry], adminNotes *string, at time.Time) error
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	List(ctx context.Context, q ListQuery, page, pageSize int) ([]Complaint, int64, error)
	FindEscalationCandidates(ctx context.Context, createdBefore time.Time, limit int) ([]Complaint, error)

	CountBy(ctx context.Context, column string, f ReportFilter) ([]GroupCount, error)
	CreatedTimes(ctx context.Context, f ReportFilter) ([]time.Time, error)
	ResolvedRows(ctx context.Context, f ReportFilter) ([]ResolutionRow, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM complaint repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, c *Complaint) error {
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		return fmt.Errorf("failed to create complaint: %w", err)
	}
	return nil
}

func (r *gormRepository) FindByID(ctx context.Context, id uuid.UUID) (*Complaint, error) {
	var c Complaint
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Complaint not found")
		}
		return nil, fmt.Errorf("failed to load complaint %s: %w", id, err)
	}
	return &c, nil
}

// RecentImageURLs returns up to limit image URLs, newest first.
func (r *gormRepository) RecentImageURLs(ctx context.Context, limit int) ([]string, error) {
	var urls []string
	err := r.db.WithContext(ctx).Model(&Complaint{}).
		Order("created_at DESC").
		Limit(limit).
		Pluck("image_url", &urls).Error
	if err != nil {
		return nil, fmt.Errorf("failed to sample image urls: %w", err)
	}
	return urls, nil
}

// ApplyTransition writes status, history, notes and updated_at in one UPDATE.
func (r *gormRepository) ApplyTransition(ctx context.Context, id uuid.UUID, status domain.Status, history datatypes.JSONSlice[StatusEntry], adminNotes *string, at time.Time) error {
	fields := map[string]interface{}{
		"status":         status,
		"status_history": history,
		"updated_at":     at,
	}
	if adminNotes != nil {
		fields["admin_notes"] = *adminNotes
	}
	return r.UpdateFields(ctx, id, fields)
}

// UpdateFields applies the given columns to one row.
func (r *gormRepository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&Complaint{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return fmt.Errorf("failed to update complaint %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return common.ErrNotFound.WithDetails("Complaint not found")
	}
	return nil
}

func (r *gormRepository) List(ctx context.Context, q ListQuery, page, pageSize int) ([]Complaint, int64, error) {
	query := r.db.WithContext(ctx).Model(&Complaint{})
	if q.UserID != nil {
		query = query.Where("user_id = ?", *q.UserID)
	}
	if q.Department != nil {
		query = query.Where("assigned_department = ?", *q.Department)
	}
	if q.Category != "" {
		query = query.Where("category = ?", q.Category)
	}
	if q.Priority != "" {
		query = query.Where("priority = ?", q.Priority)
	}
	if q.Status != "" {
		query = query.Where("status = ?", q.Status)
	}
	if s := strings.TrimSpace(q.Search); s != "" {
		query = query.Where(`LOWER(location) LIKE ? ESCAPE '\'`, "%"+escapeLike(strings.ToLower(s))+"%")
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("counting complaints failed: %w", err)
	}

	complaints := make([]Complaint, 0)
	query = query.Order("created_at DESC")
	if pageSize > 0 {
		query = query.Limit(pageSize).Offset(common.Offset(page, pageSize))
	}
	if err := query.Find(&complaints).Error; err != nil {
		return nil, 0, fmt.Errorf("listing complaints failed: %w", err)
	}
	return complaints, total, nil
}

// FindEscalationCandidates returns open, non-High complaints created before the cutoff, oldest first.
func (r *gormRepository) FindEscalationCandidates(ctx context.Context, createdBefore time.Time, limit int) ([]Complaint, error) {
	var complaints []Complaint
	err := r.db.WithContext(ctx).
		Where("status <> ? AND priority <> ? AND created_at < ?", domain.StatusResolved, domain.PriorityHigh, createdBefore).
		Order("created_at ASC").
		Limit(limit).
		Find(&complaints).Error
	if err != nil {
		return nil, fmt.Errorf("finding escalation candidates failed: %w", err)
	}
	return complaints, nil
}

func (r *gormRepository) scoped(ctx context.Context, f ReportFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&Complaint{})
	if f.Start != nil {
		q = q.Where("created_at >= ?", *f.Start)
	}
	if f.End != nil {
		q = q.Where("created_at <= ?", *f.End)
	}
	if f.Department != "" {
		q = q.Where("assigned_department = ?", f.Department)
	}
	if len(f.Statuses) > 0 {
		q = q.Where("status IN ?", f.Statuses)
	}
	if f.Priority != "" {
		q = q.Where("priority = ?", f.Priority)
	}
	return q
}

// CountBy groups the filtered complaints by one of the Column constants,
// largest group first.
func (r *gormRepository) CountBy(ctx context.Context, column string, f ReportFilter) ([]GroupCount, error) {
	switch column {
	case ColumnStatus, ColumnCategory, ColumnPriority, ColumnLocation:
	default:
		return nil, fmt.Errorf("cannot group complaints by %q", column)
	}

	rows := make([]GroupCount, 0)
	err := r.scoped(ctx, f).
		Select(column + " AS label, COUNT(*) AS total").
		Group(column).
		Order("total DESC, label ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("grouping complaints by %s failed: %w", column, err)
	}
	return rows, nil
}

// CreatedTimes returns the creation time of every filtered complaint, oldest first.
func (r *gormRepository) CreatedTimes(ctx context.Context, f ReportFilter) ([]time.Time, error) {
	var times []time.Time
	if err := r.scoped(ctx, f).Order("created_at ASC").Pluck("created_at", &times).Error; err != nil {
		return nil, fmt.Errorf("loading creation times failed: %w", err)
	}
	return times, nil
}

// ResolvedRows returns history for the filtered complaints currently Resolved.
func (r *gormRepository) ResolvedRows(ctx context.Context, f ReportFilter) ([]ResolutionRow, error) {
	var rows []ResolutionRow
	err := r.scoped(ctx, f).
		Select("created_at, status_history").
		Where("status = ?", domain.StatusResolved).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("loading resolved complaints failed: %w", err)
	}
	return rows, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
