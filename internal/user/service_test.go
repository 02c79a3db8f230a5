package user

import (
	"context"
	"testing"
	"time"

	"campus_care_backend/internal/common"
	"campus_care_backend/internal/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, u *User) error {
	args := m.Called(ctx, u)
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	args := m.Called(ctx, email)
	if u, ok := args.Get(0).(*User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	args := m.Called(ctx, id)
	if u, ok := args.Get(0).(*User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, u *User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *MockUserRepository) ListIDsByRole(ctx context.Context, role string) ([]uuid.UUID, error) {
	args := m.Called(ctx, role)
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockUserRepository) ListByRoleAndDepartment(ctx context.Context, role, department string) ([]User, error) {
	args := m.Called(ctx, role, department)
	return args.Get(0).([]User), args.Error(1)
}

func (m *MockUserRepository) FindSummaries(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]Summary, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(map[uuid.UUID]Summary), args.Error(1)
}

type stubTokenService struct{}

func (stubTokenService) GenerateAccessToken(u shared.UserDataForToken) (string, time.Time, error) {
	return "token-for-" + u.GetRole(), time.Now().Add(time.Hour), nil
}

func (stubTokenService) ValidateToken(string) (*shared.Claims, error) { return nil, nil }

func newTestService(repo Repository) *ServiceImplementation {
	return NewService(repo, stubTokenService{}, zap.NewNop())
}

func TestRegister_AlwaysCreatesStudent(t *testing.T) {
	repo := new(MockUserRepository)
	repo.On("FindByEmail", mock.Anything, "new@campus.edu").Return(nil, common.ErrNotFound.WithDetails("nope"))
	repo.On("Create", mock.Anything, mock.MatchedBy(func(u *User) bool {
		return u.Role == common.RoleStudent && u.PasswordHash != "secret1" && u.Name == "Asha"
	})).Return(nil)

	u, tok, err := newTestService(repo).Register(context.Background(), RegisterRequest{
		Name: " Asha ", Email: "new@campus.edu", Password: "secret1",
	})

	require.NoError(t, err)
	assert.Equal(t, common.RoleStudent, u.Role)
	assert.True(t, common.CheckPasswordHash("secret1", u.PasswordHash))
	assert.Equal(t, "token-for-student", tok.AccessToken)
	assert.Equal(t, "Bearer", tok.TokenType)
	repo.AssertExpectations(t)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	repo := new(MockUserRepository)
	repo.On("FindByEmail", mock.Anything, "dup@campus.edu").Return(&User{Email: "dup@campus.edu"}, nil)

	_, _, err := newTestService(repo).Register(context.Background(), RegisterRequest{
		Name: "Dup", Email: "dup@campus.edu", Password: "secret1",
	})

	assert.ErrorIs(t, err, common.ErrConflict)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestLogin(t *testing.T) {
	hash, err := common.HashPassword("correct-horse")
	require.NoError(t, err)
	existing := &User{BaseModel: common.BaseModel{ID: uuid.New()}, Email: "a@campus.edu", PasswordHash: hash, Role: common.RoleAdmin}

	tests := []struct {
		name     string
		email    string
		password string
		setup    func(r *MockUserRepository)
		wantErr  error
	}{
		{
			name:     "valid credentials",
			email:    "a@campus.edu",
			password: "correct-horse",
			setup: func(r *MockUserRepository) {
				r.On("FindByEmail", mock.Anything, "a@campus.edu").Return(existing, nil)
			},
		},
		{
			name:     "wrong password",
			email:    "a@campus.edu",
			password: "battery-staple",
			setup: func(r *MockUserRepository) {
				r.On("FindByEmail", mock.Anything, "a@campus.edu").Return(existing, nil)
			},
			wantErr: common.ErrUnauthorized,
		},
		{
			name:     "unknown email",
			email:    "ghost@campus.edu",
			password: "whatever",
			setup: func(r *MockUserRepository) {
				r.On("FindByEmail", mock.Anything, "ghost@campus.edu").Return(nil, common.ErrNotFound)
			},
			wantErr: common.ErrUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockUserRepository)
			tt.setup(repo)

			u, tok, err := newTestService(repo).Login(context.Background(), tt.email, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, tok)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, existing.ID, u.ID)
			assert.Equal(t, "token-for-admin", tok.AccessToken)
		})
	}
}

func TestChangePassword(t *testing.T) {
	hash, _ := common.HashPassword("old-pass")
	id := uuid.New()

	t.Run("wrong old password is rejected", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("FindByID", mock.Anything, id).Return(&User{BaseModel: common.BaseModel{ID: id}, PasswordHash: hash}, nil)

		err := newTestService(repo).ChangePassword(context.Background(), id, ChangePasswordRequest{OldPassword: "nope", NewPassword: "new-pass"})

		apiErr, ok := common.IsAPIError(err)
		require.True(t, ok)
		assert.Equal(t, 400, apiErr.StatusCode)
		assert.Equal(t, "Invalid old password", apiErr.Details)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("new password is stored hashed", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("FindByID", mock.Anything, id).Return(&User{BaseModel: common.BaseModel{ID: id}, PasswordHash: hash}, nil)
		repo.On("Update", mock.Anything, mock.MatchedBy(func(u *User) bool {
			return common.CheckPasswordHash("new-pass", u.PasswordHash)
		})).Return(nil)

		err := newTestService(repo).ChangePassword(context.Background(), id, ChangePasswordRequest{OldPassword: "old-pass", NewPassword: "new-pass"})
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})
}

func TestUpdateProfile_EmailTakenByAnotherUser(t *testing.T) {
	id := uuid.New()
	repo := new(MockUserRepository)
	repo.On("FindByID", mock.Anything, id).Return(&User{BaseModel: common.BaseModel{ID: id}, Email: "me@campus.edu"}, nil)
	repo.On("FindByEmail", mock.Anything, "taken@campus.edu").Return(&User{BaseModel: common.BaseModel{ID: uuid.New()}}, nil)

	email := "taken@campus.edu"
	_, err := newTestService(repo).UpdateProfile(context.Background(), id, UpdateProfileRequest{Email: &email})
	assert.ErrorIs(t, err, common.ErrConflict)
}

func TestPromote(t *testing.T) {
	t.Run("supervisor requires department", func(t *testing.T) {
		repo := new(MockUserRepository)
		_, err := newTestService(repo).Promote(context.Background(), "s@campus.edu", common.RoleSupervisor, " ")
		apiErr, ok := common.IsAPIError(err)
		require.True(t, ok)
		assert.Equal(t, "VALIDATION_ERROR", apiErr.Code)
		repo.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
	})

	t.Run("unknown role", func(t *testing.T) {
		_, err := newTestService(new(MockUserRepository)).Promote(context.Background(), "s@campus.edu", "janitor", "")
		assert.Error(t, err)
	})

	t.Run("assigns supervisor department", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("FindByEmail", mock.Anything, "s@campus.edu").Return(&User{Email: "s@campus.edu", Role: common.RoleStudent}, nil)
		repo.On("Update", mock.Anything, mock.Anything).Return(nil)

		u, err := newTestService(repo).Promote(context.Background(), "s@campus.edu", common.RoleSupervisor, "Electrical")
		require.NoError(t, err)
		assert.Equal(t, common.RoleSupervisor, u.Role)
		assert.Equal(t, "Electrical", u.GetDepartment())
	})
}
