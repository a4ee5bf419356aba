package services_test

import (
	"context"
	"testing"
	"time"

	"tokocart/internal/models"
	"tokocart/internal/repositories"
	"tokocart/internal/services"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

const testJWTSecret = "test_jwt_secret"

func TestAuthService_RegisterUser(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, testJWTSecret, time.Hour, nil)

	user := &models.User{Username: "testuser", Email: "test@example.com", Password: "password123"}

	mockRepo.On("GetByUsername", ctx, "testuser").Return(nil, repositories.ErrUserNotFound).Once()
	mockRepo.On("GetByEmail", ctx, "test@example.com").Return(nil, repositories.ErrUserNotFound).Once()
	mockRepo.On("Create", ctx, mock.AnythingOfType("*models.User")).Return(nil).Once()

	err := authService.RegisterUser(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("password123")), "password is stored hashed")
	mockRepo.AssertExpectations(t)
}

func TestAuthService_RegisterUser_Duplicates(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, testJWTSecret, time.Hour, nil)

	existing := &models.User{ID: "u1", Username: "taken", Email: "taken@example.com"}
	mockRepo.On("GetByUsername", ctx, "taken").Return(existing, nil).Once()

	err := authService.RegisterUser(ctx, &models.User{Username: "taken", Email: "new@example.com", Password: "password123"})
	assert.ErrorIs(t, err, services.ErrUserExists)
	assert.Contains(t, err.Error(), "already taken")

	mockRepo.On("GetByUsername", ctx, "fresh").Return(nil, repositories.ErrUserNotFound).Once()
	mockRepo.On("GetByEmail", ctx, "taken@example.com").Return(existing, nil).Once()

	err = authService.RegisterUser(ctx, &models.User{Username: "fresh", Email: "taken@example.com", Password: "password123"})
	assert.ErrorIs(t, err, services.ErrUserExists)
	assert.Contains(t, err.Error(), "already registered")
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_LoginAndValidate(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, testJWTSecret, time.Hour, nil)

	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	admin := &models.User{ID: "admin-1", Username: "admin", Email: "admin@example.com", Password: string(hashed), Role: models.RoleAdmin}

	mockRepo.On("GetByEmail", ctx, "admin@example.com").Return(admin, nil).Once()
	token, user, err := authService.LoginUser(ctx, "admin@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "admin-1", user.ID)
	assert.NotEmpty(t, token)

	principal, err := authService.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin-1", principal.UserID)
	assert.Equal(t, "admin", principal.Username)
	assert.True(t, principal.IsAdmin())

	mockRepo.On("GetByUsername", ctx, "admin").Return(admin, nil).Once()
	_, _, err = authService.LoginUser(ctx, "admin", "wrongpassword")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)

	mockRepo.On("GetByUsername", ctx, "ghost").Return(nil, repositories.ErrUserNotFound).Once()
	_, _, err = authService.LoginUser(ctx, "ghost", "password123")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_ValidateToken_Rejects(t *testing.T) {
	authService := services.NewAuthService(new(MockUserRepository), testJWTSecret, time.Hour, nil)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "u1",
		"exp":     time.Now().Add(-time.Hour).Unix(),
	})
	expiredString, err := expired.SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	_, err = authService.ValidateToken(expiredString)
	assert.ErrorIs(t, err, services.ErrInvalidToken)

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "u1",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	foreignString, err := foreign.SignedString([]byte("another_secret"))
	require.NoError(t, err)
	_, err = authService.ValidateToken(foreignString)
	assert.ErrorIs(t, err, services.ErrInvalidToken)

	_, err = authService.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, services.ErrInvalidToken)

	noRole := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "u2",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	noRoleString, err := noRole.SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	principal, err := authService.ValidateToken(noRoleString)
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, principal.Role)
}

func TestAuthService_Profile(t *testing.T) {
	ctx := context.Background()
	users := repositories.NewMemoryUserRepository()
	authService := services.NewAuthService(users, testJWTSecret, time.Hour, nil)

	alice := &models.User{Username: "alice", Email: "alice@example.com", Password: "password123", Phone: "555-0100"}
	require.NoError(t, authService.RegisterUser(ctx, alice))
	bob := &models.User{Username: "bob", Email: "bob@example.com", Password: "password123"}
	require.NoError(t, authService.RegisterUser(ctx, bob))

	profile, err := authService.GetProfile(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", profile.Username)
	assert.Empty(t, profile.Password)

	address := "1 Rabbit Hole"
	updated, err := authService.UpdateProfile(ctx, alice.ID, services.ProfileUpdate{Address: &address})
	require.NoError(t, err)
	assert.Equal(t, address, updated.Address)
	assert.Equal(t, "555-0100", updated.Phone, "unset fields are kept")
	assert.Equal(t, models.RoleUser, updated.Role)
	assert.Empty(t, updated.Password)

	_, _, err = authService.LoginUser(ctx, "alice", "password123")
	assert.NoError(t, err, "profile updates leave the password intact")

	taken := "bob@example.com"
	_, err = authService.UpdateProfile(ctx, alice.ID, services.ProfileUpdate{Email: &taken})
	assert.ErrorIs(t, err, services.ErrUserExists)

	_, err = authService.GetProfile(ctx, "missing")
	assert.ErrorIs(t, err, services.ErrNotFound)
}
