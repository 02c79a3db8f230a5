// File: internal/user/model.go
package user

import (
	"time"

	"campus_care_backend/internal/common"

	"github.com/google/uuid"
)

// User represents the user model in the database.
type User struct {
	common.BaseModel
	Name         string  `gorm:"type:varchar(100);not null"`
	Email        string  `gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash string  `gorm:"type:varchar(255);not null"`
	Role         string  `gorm:"type:varchar(20);not null;default:'student';index"`
	Department   *string `gorm:"type:varchar(100);index"`
}

// TableName specifies the table name for the User model.
func (User) TableName() string {
	return "users"
}

func (u *User) GetID() uuid.UUID  { return u.ID }
func (u *User) GetEmail() string  { return u.Email }
func (u *User) GetRole() string   { return u.Role }
func (u *User) GetDepartment() string {
	if u.Department == nil {
		return ""
	}
	return *u.Department
}

// --- DTOs ---

// RegisterRequest defines the structure for creating a new student account.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=72"` // bcrypt max is 72 bytes
}

// UpdateProfileRequest changes the caller's name and/or email.
type UpdateProfileRequest struct {
	Name  *string `json:"name" binding:"omitempty,min=1,max=100"`
	Email *string `json:"email" binding:"omitempty,email"`
}

// ChangePasswordRequest verifies the old password before setting a new one.
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=6,max=72"`
}

// UserResponse defines the structure for user data sent in API responses.
type UserResponse struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	Department *string   `json:"department,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ToUserResponse converts a User model to a UserResponse DTO.
func ToUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Role:       u.Role,
		Department: u.Department,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

// Summary is the reporter view attached to complaint listings.
type Summary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}
