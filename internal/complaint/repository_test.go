package complaint

import (
	"context"
	"testing"
	"time"

	"campus_care_backend/internal/common"
	"campus_care_backend/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&Complaint{}))
	return db
}

var baseTime = time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)

type seed struct {
	owner      uuid.UUID
	location   string
	category   domain.Category
	priority   domain.Priority
	status     domain.Status
	department string
	age        time.Duration
	resolvedIn time.Duration
}

func insert(t *testing.T, repo Repository, s seed) *Complaint {
	t.Helper()
	created := baseTime.Add(s.age)
	c := &Complaint{
		UserID:         s.owner,
		ImageURL:       "http://img/" + uuid.NewString() + ".png",
		ImageStorageID: "damage-reports/x.png",
		Location:       s.location,
		Category:       s.category,
		Priority:       s.priority,
		Severity:       domain.SeverityMinor,
		Status:         s.status,
		StatusHistory:  datatypes.JSONSlice[StatusEntry]{{Status: domain.StatusSubmitted, Date: created}},
	}
	if s.department != "" {
		dept := s.department
		c.AssignedDepartment = &dept
	}
	if s.status == domain.StatusResolved {
		c.StatusHistory = append(c.StatusHistory, StatusEntry{Status: domain.StatusResolved, Date: created.Add(s.resolvedIn)})
	}
	c.CreatedAt = created
	c.UpdatedAt = created
	require.NoError(t, repo.Create(context.Background(), c))
	return c
}

func TestGORMRepository_CreateFindAndTransition(t *testing.T) {
	repo := NewGORMRepository(newTestDB(t))
	ctx := context.Background()

	c := insert(t, repo, seed{owner: uuid.New(), location: "Block A", category: domain.CategoryChair, priority: domain.PriorityLow, status: domain.StatusSubmitted})

	found, err := repo.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Block A", found.Location)
	require.Len(t, found.StatusHistory, 1)

	at := baseTime.Add(2 * time.Hour)
	history := append(found.StatusHistory, StatusEntry{Status: domain.StatusInProgress, Date: at})
	notes := "Technician assigned"
	require.NoError(t, repo.ApplyTransition(ctx, c.ID, domain.StatusInProgress, history, &notes, at))

	found, err = repo.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, found.Status)
	require.Len(t, found.StatusHistory, 2)
	assert.Equal(t, domain.StatusInProgress, found.StatusHistory[1].Status)
	assert.True(t, at.Equal(found.StatusHistory[1].Date))
	require.NotNil(t, found.AdminNotes)
	assert.Equal(t, notes, *found.AdminNotes)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, common.ErrNotFound)
	err = repo.UpdateFields(ctx, uuid.New(), map[string]interface{}{"priority": domain.PriorityHigh})
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestGORMRepository_UpdateFieldsClearsDepartment(t *testing.T) {
	repo := NewGORMRepository(newTestDB(t))
	ctx := context.Background()
	c := insert(t, repo, seed{owner: uuid.New(), location: "Lab", category: domain.CategorySocket, priority: domain.PriorityLow, status: domain.StatusSubmitted, department: "Electrical"})

	require.NoError(t, repo.UpdateFields(ctx, c.ID, map[string]interface{}{"assigned_department": nil, "priority": domain.PriorityHigh}))
	found, err := repo.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Nil(t, found.AssignedDepartment)
	assert.Equal(t, domain.PriorityHigh, found.Priority)
}

func TestGORMRepository_RecentImageURLs(t *testing.T) {
	repo := NewGORMRepository(newTestDB(t))
	var newest *Complaint
	for i := 0; i < 4; i++ {
		newest = insert(t, repo, seed{owner: uuid.New(), location: "Block A", category: domain.CategoryOther, priority: domain.PriorityLow, status: domain.StatusSubmitted, age: time.Duration(i) * time.Hour})
	}

	urls, err := repo.RecentImageURLs(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, urls, 3)
	assert.Equal(t, newest.ImageURL, urls[0])
}

func TestGORMRepository_ListFilters(t *testing.T) {
	repo := NewGORMRepository(newTestDB(t))
	ctx := context.Background()
	owner := uuid.New()

	insert(t, repo, seed{owner: owner, location: "Block A - Room 101", category: domain.CategoryChair, priority: domain.PriorityHigh, status: domain.StatusSubmitted, department: "Facilities"})
	insert(t, repo, seed{owner: owner, location: "Library", category: domain.CategoryProjector, priority: domain.PriorityLow, status: domain.StatusResolved, department: "IT", age: time.Hour, resolvedIn: time.Hour})
	insert(t, repo, seed{owner: uuid.New(), location: "block a corridor", category: domain.CategoryPipe, priority: domain.PriorityMedium, status: domain.StatusInProgress, department: "Facilities", age: 2 * time.Hour})
	insert(t, repo, seed{owner: uuid.New(), location: "100%_Hall", category: domain.CategoryBench, priority: domain.PriorityMedium, status: domain.StatusSubmitted, age: 3 * time.Hour})

	mine, total, err := repo.List(ctx, ListQuery{UserID: &owner}, 0, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, mine, 2)
	assert.Equal(t, "Library", mine[0].Location, "newest first")

	dept := "Facilities"
	facilities, _, err := repo.List(ctx, ListQuery{Department: &dept, Search: "BLOCK A"}, 0, 0)
	require.NoError(t, err)
	assert.Len(t, facilities, 2)

	literal, _, err := repo.List(ctx, ListQuery{Search: "%_"}, 0, 0)
	require.NoError(t, err)
	require.Len(t, literal, 1)
	assert.Equal(t, "100%_Hall", literal[0].Location)

	page, total, err := repo.List(ctx, ListQuery{}, 2, 3)
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	assert.Len(t, page, 1)

	high, _, err := repo.List(ctx, ListQuery{Priority: domain.PriorityHigh, Category: domain.CategoryChair, Status: domain.StatusSubmitted}, 1, 10)
	require.NoError(t, err)
	assert.Len(t, high, 1)
}

func TestGORMRepository_FindEscalationCandidates(t *testing.T) {
	repo := NewGORMRepository(newTestDB(t))
	ctx := context.Background()

	old := insert(t, repo, seed{owner: uuid.New(), location: "A", category: domain.CategoryChair, priority: domain.PriorityLow, status: domain.StatusSubmitted})
	insert(t, repo, seed{owner: uuid.New(), location: "B", category: domain.CategoryChair, priority: domain.PriorityHigh, status: domain.StatusSubmitted})
	insert(t, repo, seed{owner: uuid.New(), location: "C", category: domain.CategoryChair, priority: domain.PriorityLow, status: domain.StatusResolved, resolvedIn: time.Hour})
	insert(t, repo, seed{owner: uuid.New(), location: "D", category: domain.CategoryChair, priority: domain.PriorityMedium, status: domain.StatusInProgress, age: 100 * time.Hour})

	got, err := repo.FindEscalationCandidates(ctx, baseTime.Add(24*time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, old.ID, got[0].ID)
}

func TestGORMRepository_Aggregations(t *testing.T) {
	repo := NewGORMRepository(newTestDB(t))
	ctx := context.Background()

	insert(t, repo, seed{owner: uuid.New(), location: "Block A", category: domain.CategoryChair, priority: domain.PriorityHigh, status: domain.StatusResolved, department: "Facilities", resolvedIn: 4 * time.Hour})
	insert(t, repo, seed{owner: uuid.New(), location: "Block A", category: domain.CategoryChair, priority: domain.PriorityLow, status: domain.StatusSubmitted, department: "Facilities", age: 24 * time.Hour})
	insert(t, repo, seed{owner: uuid.New(), location: "Library", category: domain.CategoryProjector, priority: domain.PriorityHigh, status: domain.StatusInProgress, department: "IT", age: 48 * time.Hour})

	byCategory, err := repo.CountBy(ctx, ColumnCategory, ReportFilter{})
	require.NoError(t, err)
	assert.Equal(t, []GroupCount{{Label: "Chair", Total: 2}, {Label: "Projector", Total: 1}}, byCategory)

	byStatus, err := repo.CountBy(ctx, ColumnStatus, ReportFilter{Department: "Facilities"})
	require.NoError(t, err)
	assert.Equal(t, []GroupCount{{Label: "Resolved", Total: 1}, {Label: "Submitted", Total: 1}}, byStatus)

	start := baseTime.Add(12 * time.Hour)
	windowed, err := repo.CountBy(ctx, ColumnLocation, ReportFilter{Start: &start})
	require.NoError(t, err)
	assert.Equal(t, []GroupCount{{Label: "Block A", Total: 1}, {Label: "Library", Total: 1}}, windowed)

	pending, err := repo.CountBy(ctx, ColumnLocation, ReportFilter{Statuses: []domain.Status{domain.StatusSubmitted, domain.StatusInProgress}})
	require.NoError(t, err)
	assert.Equal(t, []GroupCount{{Label: "Block A", Total: 1}, {Label: "Library", Total: 1}}, pending)

	high, err := repo.CountBy(ctx, ColumnLocation, ReportFilter{Priority: domain.PriorityHigh})
	require.NoError(t, err)
	assert.Equal(t, []GroupCount{{Label: "Block A", Total: 1}, {Label: "Library", Total: 1}}, high)

	_, err = repo.CountBy(ctx, "user_id; DROP TABLE complaints", ReportFilter{})
	assert.Error(t, err)

	times, err := repo.CreatedTimes(ctx, ReportFilter{})
	require.NoError(t, err)
	require.Len(t, times, 3)
	assert.True(t, times[0].Equal(baseTime))

	resolved, err := repo.ResolvedRows(ctx, ReportFilter{})
	require.NoError(t, err)
	require.Len(t, resolved, 1)
	at, ok := (&Complaint{StatusHistory: resolved[0].StatusHistory}).FirstResolvedAt()
	require.True(t, ok)
	assert.Equal(t, 4*time.Hour, at.Sub(resolved[0].CreatedAt))
}
