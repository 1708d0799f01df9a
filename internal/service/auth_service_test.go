package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"github.com/ignatzorin/audit-backend/internal/models"
	"github.com/ignatzorin/audit-backend/internal/pkg/apperror"
	"github.com/ignatzorin/audit-backend/internal/repository"
)

type mockAuthRepo struct {
	mock.Mock
}

func (m *mockAuthRepo) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
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

func (m *mockAuthRepo) SubmitReviewerApplication(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *mockAuthRepo) SetReviewerApproval(ctx context.Context, userID uuid.UUID, approved bool) (*models.User, error) {
	args := m.Called(ctx, userID, approved)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockAuthRepo) ListReviewerApplications(ctx context.Context, limit, offset int) ([]models.User, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *mockAuthRepo) CreateSession(ctx context.Context, session *models.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *mockAuthRepo) DeleteSession(ctx context.Context, refreshToken string) error {
	args := m.Called(ctx, refreshToken)
	return args.Error(0)
}

func newTestAuthService(repo *mockAuthRepo) *AuthService {
	tm := NewTokenManager("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
	return NewAuthService(repo, tm)
}

func TestAuthService_Register_Success(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := newTestAuthService(repo)
	ctx := context.Background()

	repo.On("GetByEmail", ctx, "client@example.com").Return(nil, repository.ErrUserNotFound)
	repo.On("Create", ctx, mock.MatchedBy(func(u *models.User) bool {
		return u.Role == models.RoleClient &&
			u.ReviewerApplicationStatus == models.ReviewerApplicationNone &&
			u.Email == "client@example.com"
	})).Return(nil)
	repo.On("CreateSession", ctx, mock.Anything).Return(nil)

	res, err := svc.Register(ctx, RegisterInput{
		Email:    "client@example.com",
		Password: "Sup3rSecret!",
		Username: "client_one",
	}, nil)
	assert.NoError(t, err)
	assert.Equal(t, models.RoleClient, res.User.Role)
	assert.NotEmpty(t, res.TokenPair.AccessToken)
	repo.AssertExpectations(t)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := newTestAuthService(repo)
	ctx := context.Background()

	repo.On("GetByEmail", ctx, "taken@example.com").Return(&models.User{ID: uuid.New()}, nil)

	_, err := svc.Register(ctx, RegisterInput{
		Email:    "taken@example.com",
		Password: "Sup3rSecret!",
	}, nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "уже зарегистрирован")
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthService_Register_WeakPassword(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := newTestAuthService(repo)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{
		Email:    "client@example.com",
		Password: "123",
	}, nil)
	assert.Error(t, err)
	repo.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
}

func TestAuthService_Login_Success(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := newTestAuthService(repo)
	ctx := context.Background()

	hash, _ := bcrypt.GenerateFromPassword([]byte("Sup3rSecret!"), bcrypt.DefaultCost)
	user := &models.User{
		ID:           uuid.New(),
		Email:        "client@example.com",
		PasswordHash: string(hash),
		Role:         models.RoleClient,
	}
	repo.On("GetByEmail", ctx, "client@example.com").Return(user, nil)
	repo.On("UpdateLastLoginAt", ctx, user.ID).Return(nil)
	repo.On("CreateSession", ctx, mock.Anything).Return(nil)

	res, err := svc.Login(ctx, LoginInput{Email: "client@example.com", Password: "Sup3rSecret!"}, map[string]string{
		"user_agent": "test-agent",
		"ip":         "127.0.0.1",
	})
	assert.NoError(t, err)
	assert.NotEmpty(t, res.TokenPair.RefreshToken)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := newTestAuthService(repo)
	ctx := context.Background()

	hash, _ := bcrypt.GenerateFromPassword([]byte("Sup3rSecret!"), bcrypt.DefaultCost)
	repo.On("GetByEmail", ctx, "client@example.com").Return(&models.User{
		ID:           uuid.New(),
		PasswordHash: string(hash),
	}, nil)

	_, err := svc.Login(ctx, LoginInput{Email: "client@example.com", Password: "wrong"}, nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "неверный email или пароль")
}

func TestAuthService_ApplyForReviewer_Success(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := newTestAuthService(repo)
	ctx := context.Background()
	userID := uuid.New()

	repo.On("SubmitReviewerApplication", ctx, userID).Return(nil)
	repo.On("GetByID", ctx, userID).Return(&models.User{
		ID:                        userID,
		ReviewerApplicationStatus: models.ReviewerApplicationPending,
	}, nil)

	user, err := svc.ApplyForReviewer(ctx, userID)
	assert.NoError(t, err)
	assert.Equal(t, models.ReviewerApplicationPending, user.ReviewerApplicationStatus)
}

func TestAuthService_ApplyForReviewer_AlreadyPending(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := newTestAuthService(repo)
	ctx := context.Background()
	userID := uuid.New()

	repo.On("SubmitReviewerApplication", ctx, userID).Return(repository.ErrPreconditionFailed)

	_, err := svc.ApplyForReviewer(ctx, userID)
	assert.Error(t, err)
	var appErr *apperror.AppError
	assert.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.ErrCodeConflict, appErr.Code)
}

func TestAuthService_ResolveReviewerApplication_Approve(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := newTestAuthService(repo)
	ctx := context.Background()
	userID := uuid.New()

	repo.On("SetReviewerApproval", ctx, userID, true).Return(&models.User{
		ID:                        userID,
		Role:                      models.RoleReviewer,
		IsReviewerApproved:        true,
		ReviewerApplicationStatus: models.ReviewerApplicationApproved,
	}, nil)

	user, err := svc.ResolveReviewerApplication(ctx, userID, true)
	assert.NoError(t, err)
	assert.True(t, user.IsReviewerApproved)
	assert.Equal(t, models.RoleReviewer, user.Role)
}

func TestAuthService_TokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
	user := &models.User{ID: uuid.New(), Role: models.RoleReviewer}

	pair, _, _, err := tm.GeneratePair(user)
	assert.NoError(t, err)

	userID, role, err := tm.ParseAccess(pair.AccessToken)
	assert.NoError(t, err)
	assert.Equal(t, user.ID, userID)
	assert.Equal(t, models.RoleReviewer, role)

	claims, err := tm.ParseRefresh(pair.RefreshToken)
	assert.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.Subject)
}
