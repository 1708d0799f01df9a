package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ignatzorin/audit-backend/internal/models"
	"github.com/ignatzorin/audit-backend/internal/pkg/apperror"
)

type mockSettingsStore struct {
	mock.Mock
}

func (m *mockSettingsStore) Get(ctx context.Context) (*models.PlatformSettings, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PlatformSettings), args.Error(1)
}

func (m *mockSettingsStore) UpdateFeeRate(ctx context.Context, feeRate float64, updatedBy uuid.UUID) (*models.PlatformSettings, error) {
	args := m.Called(ctx, feeRate, updatedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PlatformSettings), args.Error(1)
}

func TestSettingsService_Get(t *testing.T) {
	store := new(mockSettingsStore)
	svc := NewSettingsService(store)
	ctx := context.Background()

	store.On("Get", ctx).Return(&models.PlatformSettings{FeeRate: 0.1}, nil)

	settings, err := svc.Get(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 0.1, settings.FeeRate)
}

func TestSettingsService_UpdateFeeRate(t *testing.T) {
	store := new(mockSettingsStore)
	svc := NewSettingsService(store)
	ctx := context.Background()
	adminID := uuid.New()

	store.On("UpdateFeeRate", ctx, 0.15, adminID).Return(&models.PlatformSettings{FeeRate: 0.15}, nil)

	settings, err := svc.UpdateFeeRate(ctx, 0.15, adminID)
	assert.NoError(t, err)
	assert.Equal(t, 0.15, settings.FeeRate)
	store.AssertExpectations(t)
}

func TestSettingsService_UpdateFeeRate_OutOfRange(t *testing.T) {
	store := new(mockSettingsStore)
	svc := NewSettingsService(store)
	ctx := context.Background()

	_, err := svc.UpdateFeeRate(ctx, 1.5, uuid.New())
	assert.True(t, apperror.IsValidation(err))

	_, err = svc.UpdateFeeRate(ctx, -0.1, uuid.New())
	assert.True(t, apperror.IsValidation(err))

	store.AssertNotCalled(t, "UpdateFeeRate", mock.Anything, mock.Anything, mock.Anything)
}

// Граничные значения 0 и 1 допустимы.
func TestSettingsService_UpdateFeeRate_Bounds(t *testing.T) {
	store := new(mockSettingsStore)
	svc := NewSettingsService(store)
	ctx := context.Background()
	adminID := uuid.New()

	store.On("UpdateFeeRate", ctx, 0.0, adminID).Return(&models.PlatformSettings{FeeRate: 0}, nil)
	store.On("UpdateFeeRate", ctx, 1.0, adminID).Return(&models.PlatformSettings{FeeRate: 1}, nil)

	_, err := svc.UpdateFeeRate(ctx, 0, adminID)
	assert.NoError(t, err)
	_, err = svc.UpdateFeeRate(ctx, 1, adminID)
	assert.NoError(t, err)
}
