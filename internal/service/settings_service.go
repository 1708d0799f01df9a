package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ignatzorin/audit-backend/internal/models"
	"github.com/ignatzorin/audit-backend/internal/pkg/apperror"
)

// SettingsStore — хранилище платформенных настроек.
type SettingsStore interface {
	Get(ctx context.Context) (*models.PlatformSettings, error)
	UpdateFeeRate(ctx context.Context, feeRate float64, updatedBy uuid.UUID) (*models.PlatformSettings, error)
}

// SettingsService управляет platform-wide настройками, сейчас это только
// ставка комиссии. Обновление действует на будущие capture; уже списанные
// заявки не пересчитываются.
type SettingsService struct {
	store SettingsStore
}

// NewSettingsService создаёт сервис настроек.
func NewSettingsService(store SettingsStore) *SettingsService {
	return &SettingsService{store: store}
}

// Get возвращает текущие настройки платформы.
func (s *SettingsService) Get(ctx context.Context) (*models.PlatformSettings, error) {
	return s.store.Get(ctx)
}

// UpdateFeeRate меняет ставку комиссии. Допустимый диапазон [0, 1];
// при конкурентных обновлениях побеждает последняя запись.
func (s *SettingsService) UpdateFeeRate(ctx context.Context, feeRate float64, updatedBy uuid.UUID) (*models.PlatformSettings, error) {
	if feeRate < 0 || feeRate > 1 {
		return nil, apperror.New(apperror.ErrCodeValidation, fmt.Sprintf("ставка комиссии %.4f вне диапазона [0, 1]", feeRate))
	}
	return s.store.UpdateFeeRate(ctx, feeRate, updatedBy)
}
