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

var ErrCaptureRetryNotFound = errors.New("capture retry not found")

// CaptureRetryRepository — очередь ручного повтора неудавшихся capture.
// Записи видны оператору; автоматического фонового повтора нет.
type CaptureRetryRepository struct {
	db *sqlx.DB
}

// NewCaptureRetryRepository создаёт новый экземпляр.
func NewCaptureRetryRepository(db *sqlx.DB) *CaptureRetryRepository {
	return &CaptureRetryRepository{db: db}
}

// Enqueue добавляет запись о неудавшемся capture.
func (r *CaptureRetryRepository) Enqueue(ctx context.Context, requestID uuid.UUID, paymentIntentID, lastError string) (*models.CaptureRetry, error) {
	var retry models.CaptureRetry
	query := `
		INSERT INTO capture_retries (request_id, payment_intent_id, last_error)
		VALUES ($1, $2, $3)
		RETURNING id, request_id, payment_intent_id, last_error, attempts, resolved_at, created_at, updated_at
	`
	if err := r.db.GetContext(ctx, &retry, query, requestID, paymentIntentID, lastError); err != nil {
		return nil, fmt.Errorf("capture retry repository: enqueue: %w", err)
	}
	return &retry, nil
}

// GetByID возвращает запись очереди.
func (r *CaptureRetryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.CaptureRetry, error) {
	var retry models.CaptureRetry
	query := `
		SELECT id, request_id, payment_intent_id, last_error, attempts, resolved_at, created_at, updated_at
		FROM capture_retries
		WHERE id = $1
	`
	if err := r.db.GetContext(ctx, &retry, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCaptureRetryNotFound
		}
		return nil, fmt.Errorf("capture retry repository: get by id: %w", err)
	}
	return &retry, nil
}

// ListPending возвращает неразрешённые записи, старые первыми.
func (r *CaptureRetryRepository) ListPending(ctx context.Context, limit, offset int) ([]models.CaptureRetry, error) {
	var retries []models.CaptureRetry
	query := `
		SELECT id, request_id, payment_intent_id, last_error, attempts, resolved_at, created_at, updated_at
		FROM capture_retries
		WHERE resolved_at IS NULL
		ORDER BY created_at
		LIMIT $1 OFFSET $2
	`
	if err := r.db.SelectContext(ctx, &retries, query, limit, offset); err != nil {
		return nil, fmt.Errorf("capture retry repository: list pending: %w", err)
	}
	return retries, nil
}

// MarkResolved отмечает запись как разрешённую.
func (r *CaptureRetryRepository) MarkResolved(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE capture_retries SET resolved_at = NOW(), updated_at = NOW() WHERE id = $1 AND resolved_at IS NULL`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("capture retry repository: mark resolved: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("capture retry repository: mark resolved rows affected: %w", err)
	}
	if affected == 0 {
		return ErrCaptureRetryNotFound
	}
	return nil
}

// RecordFailure увеличивает счётчик попыток и сохраняет последнюю ошибку.
func (r *CaptureRetryRepository) RecordFailure(ctx context.Context, id uuid.UUID, lastError string) error {
	query := `
		UPDATE capture_retries
		SET attempts = attempts + 1, last_error = $2, updated_at = NOW()
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, id, lastError)
	if err != nil {
		return fmt.Errorf("capture retry repository: record failure: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("capture retry repository: record failure rows affected: %w", err)
	}
	if affected == 0 {
		return ErrCaptureRetryNotFound
	}
	return nil
}
