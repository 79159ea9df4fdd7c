package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/taskflow/taskflow-api/internal/repo"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, u repo.User) (repo.User, error) {
	args := m.Called(ctx, u)
	return args.Get(0).(repo.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByEmail(ctx context.Context, email string) (repo.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(repo.User), args.Error(1)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	args := m.Called(ctx, userID, passwordHash)
	return args.Error(0)
}

func testAuthService(users repo.UserRepository) *Service {
	return NewService(users, NewPasswordHasher(), testManager(), zap.NewNop())
}

func TestService_SignUp(t *testing.T) {
	tests := []struct {
		name      string
		email     string
		password  string
		setupMock func(*MockUserRepository)
		wantErr   error
	}{
		{
			name:     "successful signup",
			email:    "new@example.com",
			password: "long enough password",
			setupMock: func(m *MockUserRepository) {
				m.On("CreateUser", mock.Anything, mock.MatchedBy(func(u repo.User) bool {
					return u.Email == "new@example.com" && u.PasswordHash != ""
				})).Return(repo.User{ID: "user-1", Email: "new@example.com"}, nil)
			},
		},
		{
			name:      "invalid email",
			email:     "not-an-email",
			password:  "long enough password",
			setupMock: func(m *MockUserRepository) {},
			wantErr:   ErrInvalidEmail,
		},
		{
			name:      "short password",
			email:     "new@example.com",
			password:  "short",
			setupMock: func(m *MockUserRepository) {},
			wantErr:   ErrWeakPassword,
		},
		{
			name:     "duplicate email",
			email:    "taken@example.com",
			password: "long enough password",
			setupMock: func(m *MockUserRepository) {
				m.On("CreateUser", mock.Anything, mock.Anything).
					Return(repo.User{}, repo.ErrorConflict)
			},
			wantErr: repo.ErrorConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUsers := new(MockUserRepository)
			tt.setupMock(mockUsers)

			identity, err := testAuthService(mockUsers).SignUp(context.Background(), tt.email, tt.password)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "user-1", identity.UserID)
				assert.NotEmpty(t, identity.AccessToken)
				assert.NotEmpty(t, identity.RefreshToken)
			}
			mockUsers.AssertExpectations(t)
		})
	}
}

func TestService_SignIn(t *testing.T) {
	hasher := NewPasswordHasher()
	hash, err := hasher.Hash("right password")
	require.NoError(t, err)
	stored := repo.User{ID: "user-1", Email: "user@example.com", PasswordHash: hash}

	t.Run("successful signin", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		mockUsers.On("GetUserByEmail", mock.Anything, "user@example.com").Return(stored, nil)

		identity, err := testAuthService(mockUsers).SignIn(context.Background(), "user@example.com", "right password")

		require.NoError(t, err)
		assert.Equal(t, "user-1", identity.UserID)
		assert.NotEmpty(t, identity.AccessToken)
	})

	t.Run("wrong password", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		mockUsers.On("GetUserByEmail", mock.Anything, "user@example.com").Return(stored, nil)

		_, err := testAuthService(mockUsers).SignIn(context.Background(), "user@example.com", "wrong password")

		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email reports the same error", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		mockUsers.On("GetUserByEmail", mock.Anything, "ghost@example.com").
			Return(repo.User{}, repo.ErrorNotFound)

		_, err := testAuthService(mockUsers).SignIn(context.Background(), "ghost@example.com", "whatever password")

		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestService_PasswordReset(t *testing.T) {
	stored := repo.User{ID: "user-1", Email: "user@example.com"}

	t.Run("full reset flow", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		mockUsers.On("GetUserByEmail", mock.Anything, "user@example.com").Return(stored, nil)
		mockUsers.On("UpdatePassword", mock.Anything, "user-1", mock.AnythingOfType("string")).Return(nil)

		service := testAuthService(mockUsers)

		token, err := service.RequestPasswordReset(context.Background(), "user@example.com")
		require.NoError(t, err)
		require.NotEmpty(t, token)

		err = service.ResetPassword(context.Background(), token, "brand new password")
		require.NoError(t, err)
		mockUsers.AssertExpectations(t)
	})

	t.Run("unknown email reports success without a token", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		mockUsers.On("GetUserByEmail", mock.Anything, "ghost@example.com").
			Return(repo.User{}, repo.ErrorNotFound)

		token, err := testAuthService(mockUsers).RequestPasswordReset(context.Background(), "ghost@example.com")

		require.NoError(t, err)
		assert.Empty(t, token)
	})

	t.Run("access token is not a reset token", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		service := testAuthService(mockUsers)

		access, err := testManager().GenerateAccessToken("user-1", "user@example.com")
		require.NoError(t, err)

		err = service.ResetPassword(context.Background(), access, "brand new password")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
