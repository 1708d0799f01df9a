package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/audit-backend/internal/models"
)

var ErrSettingsNotFound = errors.New("platform settings not found")

// SettingsRepository — доступ к единственной записи настроек платформы.
type SettingsRepository struct {
	db *sqlx.DB
}

// NewSettingsRepository создаёт новый экземпляр.
func NewSettingsRepository(db *sqlx.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get возвращает текущие настройки.
func (r *SettingsRepository) Get(ctx context.Context) (*models.PlatformSettings, error) {
	var settings models.PlatformSettings
	query := `SELECT id, fee_rate, updated_at, updated_by FROM platform_settings LIMIT 1`
	if err := r.db.GetContext(ctx, &settings, query); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrSettingsNotFound
		}
		return nil, fmt.Errorf("settings repository: get: %w", err)
	}
	return &settings, nil
}

// UpdateFeeRate изменяет комиссию платформы. Last-write-wins: согласование
// с выполняющимися capture не требуется, каждый capture читает ставку
// в момент своего исполнения.
func (r *SettingsRepository) UpdateFeeRate(ctx context.Context, feeRate float64, updatedBy uuid.UUID) (*models.PlatformSettings, error) {
	var settings models.PlatformSettings
	query := `
		UPDATE platform_settings
		SET fee_rate = $1, updated_at = NOW(), updated_by = $2
		RETURNING id, fee_rate, updated_at, updated_by
	`
	if err := r.db.GetContext(ctx, &settings, query, feeRate, updatedBy); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrSettingsNotFound
		}
		return nil, fmt.Errorf("settings repository: update fee rate: %w", err)
	}
	return &settings, nil
}
