// File: internal/auth/model.go
package auth

import (
	"campus_care_backend/internal/shared"
	"campus_care_backend/internal/user"
)

// LoginRequest defines the structure for login requests.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	User  user.UserResponse     `json:"user"`
	Token *shared.TokenResponse `json:"token"`
}
