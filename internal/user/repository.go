// File: internal/user/repository.go
package user

import (
	"context"
	"errors"
	"strings"

	"campus_care_backend/internal/common"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines the interface for user data operations.
type Repository interface {
	Create(ctx context.Context, user *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	Update(ctx context.Context, user *User) error
	ListIDsByRole(ctx context.Context, role string) ([]uuid.UUID, error)
	ListByRoleAndDepartment(ctx context.Context, role, department string) ([]User, error)
	FindSummaries(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]Summary, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM user repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// NormalizeEmail is applied before every write and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}

// Create inserts a new user record into the database.
func (r *gormRepository) Create(ctx context.Context, user *User) error {
	user.Email = NormalizeEmail(user.Email)
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			return common.ErrConflict.WithDetails("User with this email already exists.")
		}
		return err
	}
	return nil
}

// FindByEmail retrieves a user by their email address.
func (r *gormRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := r.db.WithContext(ctx).Where("email = ?", NormalizeEmail(email)).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("User not found with this email.")
		}
		return nil, err
	}
	return &u, nil
}

// FindByID retrieves a user by their ID.
func (r *gormRepository) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	var u User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("User not found with this ID.")
		}
		return nil, err
	}
	return &u, nil
}

// Update modifies an existing user record in the database.
func (r *gormRepository) Update(ctx context.Context, user *User) error {
	user.Email = NormalizeEmail(user.Email)
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		if isUniqueViolation(err) {
			return common.ErrConflict.WithDetails("Update failed: email already taken.")
		}
		return err
	}
	return nil
}

// ListIDsByRole returns the IDs of every user holding role.
func (r *gormRepository) ListIDsByRole(ctx context.Context, role string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&User{}).Where("role = ?", role).Order("created_at ASC").Pluck("id", &ids).Error
	return ids, err
}

// ListByRoleAndDepartment returns users of role assigned to department.
func (r *gormRepository) ListByRoleAndDepartment(ctx context.Context, role, department string) ([]User, error) {
	var users []User
	err := r.db.WithContext(ctx).
		Where("role = ? AND department = ?", role, department).
		Order("name ASC").
		Find(&users).Error
	return users, err
}

// FindSummaries loads name and email for a batch of users.
func (r *gormRepository) FindSummaries(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]Summary, error) {
	out := make(map[uuid.UUID]Summary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []Summary
	err := r.db.WithContext(ctx).Model(&User{}).Select("id, name, email").Where("id IN ?", ids).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, s := range rows {
		out[s.ID] = s
	}
	return out, nil
}
