package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"github.com/ignatzorin/lostfound-backend/internal/models"
	"github.com/ignatzorin/lostfound-backend/internal/pkg/apperror"
	"github.com/ignatzorin/lostfound-backend/internal/repository"
)

type mockAuthRepo struct {
	mock.Mock
}

func (m *mockAuthRepo) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	if args.Error(0) == nil {
		user.ID = uuid.New()
		user.IsActive = true
	}
	return args.Error(0)
}

func (m *mockAuthRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockAuthRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockAuthRepo) UpdateLastLoginAt(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func newTestTokenManager() *TokenManager {
	return NewTokenManager("test-access-secret", "test-refresh-secret", 15*time.Minute, 720*time.Hour)
}

func TestAuthService_Register_Success(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := NewAuthService(repo, newTestTokenManager())
	ctx := context.Background()

	repo.On("Create", ctx, mock.AnythingOfType("*models.User")).Return(nil)

	result, err := svc.Register(ctx, RegisterInput{
		Email:    "resident@campus.edu",
		Password: "secure-password-1",
		Username: "resident",
	})

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, models.RoleUser, result.User.Role)
	assert.NotEmpty(t, result.TokenPair.AccessToken)
	assert.NotEmpty(t, result.TokenPair.RefreshToken)
}

func TestAuthService_Register_RoleCannotBeEscalated(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := NewAuthService(repo, newTestTokenManager())
	ctx := context.Background()

	repo.On("Create", ctx, mock.MatchedBy(func(u *models.User) bool {
		return u.Role == models.RoleUser
	})).Return(nil)

	_, err := svc.Register(ctx, RegisterInput{
		Email:    "sneaky@campus.edu",
		Password: "secure-password-1",
	})

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestAuthService_Register_EmailTaken(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := NewAuthService(repo, newTestTokenManager())
	ctx := context.Background()

	repo.On("Create", ctx, mock.AnythingOfType("*models.User")).Return(repository.ErrEmailTaken)

	_, err := svc.Register(ctx, RegisterInput{
		Email:    "resident@campus.edu",
		Password: "secure-password-1",
	})

	assert.Error(t, err)
	var appErr *apperror.AppError
	assert.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.ErrCodeConflict, appErr.Code)
}

func TestAuthService_Register_InvalidInput(t *testing.T) {
	svc := NewAuthService(new(mockAuthRepo), newTestTokenManager())
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Email: "not-an-email", Password: "secure-password-1"})
	assert.Error(t, err)

	_, err = svc.Register(ctx, RegisterInput{Email: "resident@campus.edu", Password: "short"})
	assert.Error(t, err)
}

func TestAuthService_Login_Success(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := NewAuthService(repo, newTestTokenManager())
	ctx := context.Background()

	hash, _ := bcrypt.GenerateFromPassword([]byte("secure-password-1"), bcrypt.DefaultCost)
	user := &models.User{
		ID:           uuid.New(),
		Email:        "resident@campus.edu",
		PasswordHash: string(hash),
		Role:         models.RoleUser,
		IsActive:     true,
	}

	repo.On("GetByEmail", ctx, "resident@campus.edu").Return(user, nil)
	repo.On("UpdateLastLoginAt", ctx, user.ID).Return(nil)

	result, err := svc.Login(ctx, LoginInput{Email: "Resident@Campus.edu", Password: "secure-password-1"})

	assert.NoError(t, err)
	assert.Equal(t, user.ID, result.User.ID)
	assert.NotEmpty(t, result.TokenPair.AccessToken)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := NewAuthService(repo, newTestTokenManager())
	ctx := context.Background()

	hash, _ := bcrypt.GenerateFromPassword([]byte("secure-password-1"), bcrypt.DefaultCost)
	user := &models.User{
		ID:           uuid.New(),
		Email:        "resident@campus.edu",
		PasswordHash: string(hash),
		IsActive:     true,
	}
	repo.On("GetByEmail", ctx, "resident@campus.edu").Return(user, nil)

	_, err := svc.Login(ctx, LoginInput{Email: "resident@campus.edu", Password: "wrong-password"})

	var appErr *apperror.AppError
	assert.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.ErrCodeUnauthorized, appErr.Code)
}

func TestAuthService_Login_InactiveAccount(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := NewAuthService(repo, newTestTokenManager())
	ctx := context.Background()

	hash, _ := bcrypt.GenerateFromPassword([]byte("secure-password-1"), bcrypt.DefaultCost)
	user := &models.User{
		ID:           uuid.New(),
		Email:        "resident@campus.edu",
		PasswordHash: string(hash),
		IsActive:     false,
	}
	repo.On("GetByEmail", ctx, "resident@campus.edu").Return(user, nil)

	_, err := svc.Login(ctx, LoginInput{Email: "resident@campus.edu", Password: "secure-password-1"})

	var appErr *apperror.AppError
	assert.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.ErrCodeForbidden, appErr.Code)
}

func TestAuthService_Refresh_RereadsRoleFromDB(t *testing.T) {
	repo := new(mockAuthRepo)
	tokens := newTestTokenManager()
	svc := NewAuthService(repo, tokens)
	ctx := context.Background()

	user := &models.User{
		ID:       uuid.New(),
		Email:    "resident@campus.edu",
		Role:     models.RoleUser,
		IsActive: true,
	}

	pair, err := tokens.GeneratePair(user)
	assert.NoError(t, err)

	// К моменту обновления роль в базе уже admin.
	promoted := *user
	promoted.Role = models.RoleAdmin
	repo.On("GetByID", ctx, user.ID).Return(&promoted, nil)

	result, err := svc.Refresh(ctx, pair.RefreshToken)
	assert.NoError(t, err)

	principal, err := tokens.ParseAccess(result.TokenPair.AccessToken)
	assert.NoError(t, err)
	assert.True(t, principal.IsAdmin())
}

func TestAuthService_Refresh_InactiveAccount(t *testing.T) {
	repo := new(mockAuthRepo)
	tokens := newTestTokenManager()
	svc := NewAuthService(repo, tokens)
	ctx := context.Background()

	user := &models.User{ID: uuid.New(), Email: "resident@campus.edu", Role: models.RoleUser, IsActive: true}
	pair, err := tokens.GeneratePair(user)
	assert.NoError(t, err)

	deactivated := *user
	deactivated.IsActive = false
	repo.On("GetByID", ctx, user.ID).Return(&deactivated, nil)

	_, err = svc.Refresh(ctx, pair.RefreshToken)

	var appErr *apperror.AppError
	assert.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.ErrCodeForbidden, appErr.Code)
}

func TestAuthService_ResolvePrincipal(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := NewAuthService(repo, newTestTokenManager())
	ctx := context.Background()

	user := &models.User{ID: uuid.New(), Role: models.RoleAdmin, IsActive: true}
	repo.On("GetByID", ctx, user.ID).Return(user, nil)

	principal, err := svc.ResolvePrincipal(ctx, user.ID)

	assert.NoError(t, err)
	assert.Equal(t, user.ID, principal.ID)
	assert.True(t, principal.IsAdmin())
	assert.True(t, principal.IsActive)
}
