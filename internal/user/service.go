package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"campus_care_backend/internal/common"
	"campus_care_backend/internal/shared"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service defines the user-facing account operations.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*User, *shared.TokenResponse, error)
	Login(ctx context.Context, email, password string) (*User, *shared.TokenResponse, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, req UpdateProfileRequest) (*User, error)
	ChangePassword(ctx context.Context, id uuid.UUID, req ChangePasswordRequest) error
	Promote(ctx context.Context, email, role, department string) (*User, error)
}

// ServiceImplementation implements Service.
type ServiceImplementation struct {
	repo         Repository
	tokenService shared.TokenService
	logger       *zap.Logger
}

var _ Service = (*ServiceImplementation)(nil)

// NewService creates a new user service.
func NewService(repo Repository, tokenService shared.TokenService, logger *zap.Logger) *ServiceImplementation {
	return &ServiceImplementation{
		repo:         repo,
		tokenService: tokenService,
		logger:       logger.Named("UserService"),
	}
}

// Register creates a new student account and issues a token.
func (s *ServiceImplementation) Register(ctx context.Context, req RegisterRequest) (*User, *shared.TokenResponse, error) {
	_, err := s.repo.FindByEmail(ctx, req.Email)
	if err == nil {
		return nil, nil, common.ErrConflict.WithDetails("User with this email already exists.")
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, nil, fmt.Errorf("failed to check existing user by email: %w", err)
	}

	hashed, err := common.HashPassword(req.Password)
	if err != nil {
		s.logger.Error("Failed to hash password during registration", zap.Error(err))
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := &User{
		Name:         strings.TrimSpace(req.Name),
		Email:        req.Email,
		PasswordHash: hashed,
		Role:         common.RoleStudent,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		s.logger.Error("Failed to create user in repository", zap.Error(err), zap.String("email", req.Email))
		return nil, nil, err
	}

	token, err := s.issueToken(u)
	if err != nil {
		return nil, nil, err
	}
	s.logger.Info("User registered successfully", zap.String("userID", u.ID.String()))
	return u, token, nil
}

// Login verifies credentials and issues a token.
func (s *ServiceImplementation) Login(ctx context.Context, email, password string) (*User, *shared.TokenResponse, error) {
	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.logger.Info("User not found during login", zap.String("email", email))
			return nil, nil, common.ErrUnauthorized.WithDetails("Invalid email or password.")
		}
		return nil, nil, fmt.Errorf("finding user by email: %w", err)
	}

	if !common.CheckPasswordHash(password, u.PasswordHash) {
		s.logger.Info("Invalid password attempt", zap.String("userID", u.ID.String()))
		return nil, nil, common.ErrUnauthorized.WithDetails("Invalid email or password.")
	}

	token, err := s.issueToken(u)
	if err != nil {
		return nil, nil, err
	}
	return u, token, nil
}

func (s *ServiceImplementation) issueToken(u *User) (*shared.TokenResponse, error) {
	accessToken, expiresAt, err := s.tokenService.GenerateAccessToken(u)
	if err != nil {
		s.logger.Error("Failed to generate access token", zap.Error(err), zap.String("userID", u.ID.String()))
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	return &shared.TokenResponse{AccessToken: accessToken, ExpiresAt: expiresAt, TokenType: "Bearer"}, nil
}

func (s *ServiceImplementation) GetUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.FindByID(ctx, id)
}

// UpdateProfile applies the provided name and email.
func (s *ServiceImplementation) UpdateProfile(ctx context.Context, id uuid.UUID, req UpdateProfileRequest) (*User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		u.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil && NormalizeEmail(*req.Email) != u.Email {
		existing, err := s.repo.FindByEmail(ctx, *req.Email)
		if err == nil && existing.ID != u.ID {
			return nil, common.ErrConflict.WithDetails("Email is already in use.")
		}
		if err != nil && !errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("checking email availability: %w", err)
		}
		u.Email = *req.Email
	}

	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// ChangePassword replaces the password after verifying the old one.
func (s *ServiceImplementation) ChangePassword(ctx context.Context, id uuid.UUID, req ChangePasswordRequest) error {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !common.CheckPasswordHash(req.OldPassword, u.PasswordHash) {
		return common.ErrBadRequest.WithDetails("Invalid old password")
	}

	hashed, err := common.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	u.PasswordHash = hashed
	if err := s.repo.Update(ctx, u); err != nil {
		return err
	}
	s.logger.Info("Password changed", zap.String("userID", u.ID.String()))
	return nil
}

// Promote changes an existing account's role. Supervisors need a department.
func (s *ServiceImplementation) Promote(ctx context.Context, email, role, department string) (*User, error) {
	if !common.IsValidRole(role) {
		return nil, common.ValidationFailure("role", fmt.Sprintf("unknown role %q", role))
	}
	department = strings.TrimSpace(department)
	if role == common.RoleSupervisor && department == "" {
		return nil, common.ValidationFailure("department", "A supervisor must have a department.")
	}

	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	u.Role = role
	if department != "" {
		u.Department = &department
	} else if role != common.RoleSupervisor {
		u.Department = nil
	}
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	s.logger.Info("User role updated", zap.String("email", u.Email), zap.String("role", role))
	return u, nil
}
