package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ignatzorin/audit-backend/internal/models"
)

// Ошибки уровня репозитория.
var (
	ErrRequestNotFound  = errors.New("audit request not found")
	ErrDeliveryNotFound = errors.New("audit delivery not found")

	// ErrClaimLost — условное обновление клейма не затронуло ни одной строки:
	// заявка больше не в статусе open.
	ErrClaimLost = errors.New("claim lost")

	// ErrPreconditionFailed — предусловие перехода статуса не выполнено
	// на авторитетном состоянии строки.
	ErrPreconditionFailed = errors.New("status precondition failed")
)

// requestColumns — общий список колонок заявки для SELECT.
const requestColumns = `
	id, client_id, reviewer_id, category, title, ai_chat_url, content,
	budget, status, category_options, payment_intent_id,
	created_at, updated_at, claimed_at, completed_at
`

// RequestRepository — журнал заявок на аудит. Единственный владелец строк
// audit_requests: все переходы статусов выражены условными UPDATE по одной
// строке, атомарность которых гарантирует база, а не блокировки приложения.
type RequestRepository struct {
	db *sqlx.DB
}

// NewRequestRepository создаёт новый экземпляр.
func NewRequestRepository(db *sqlx.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

// Create сохраняет новую заявку. Холд у провайдера уже должен существовать:
// payment_intent_id обязателен, заявка без холда в базу не попадает.
func (r *RequestRepository) Create(ctx context.Context, req *models.AuditRequest) error {
	query := `
		INSERT INTO audit_requests
			(client_id, category, title, ai_chat_url, content, budget, status, category_options, payment_intent_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowxContext(
		ctx,
		query,
		req.ClientID,
		req.Category,
		req.Title,
		req.AIChatURL,
		req.Content,
		req.Budget,
		req.Status,
		req.CategoryOptions,
		req.PaymentIntentID,
	).Scan(&req.ID, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		return fmt.Errorf("request repository: insert: %w", err)
	}

	return nil
}

// GetByID возвращает заявку по идентификатору.
func (r *RequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.AuditRequest, error) {
	var req models.AuditRequest
	query := `SELECT ` + requestColumns + ` FROM audit_requests WHERE id = $1`
	if err := r.db.GetContext(ctx, &req, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("request repository: get by id: %w", err)
	}
	if err := req.CategoryOptions.Resolve(req.Category); err != nil {
		return nil, fmt.Errorf("request repository: resolve options: %w", err)
	}
	return &req, nil
}

// ListByStatus возвращает заявки в заданном статусе, новые первыми.
func (r *RequestRepository) ListByStatus(ctx context.Context, status string, limit, offset int) ([]models.AuditRequest, error) {
	query := `
		SELECT ` + requestColumns + `
		FROM audit_requests
		WHERE status = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	return r.list(ctx, query, status, limit, offset)
}

// ListByClientID возвращает заявки клиента.
func (r *RequestRepository) ListByClientID(ctx context.Context, clientID uuid.UUID, limit, offset int) ([]models.AuditRequest, error) {
	query := `
		SELECT ` + requestColumns + `
		FROM audit_requests
		WHERE client_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	return r.list(ctx, query, clientID, limit, offset)
}

// ListByReviewerID возвращает заявки, взятые ревьюером.
func (r *RequestRepository) ListByReviewerID(ctx context.Context, reviewerID uuid.UUID, limit, offset int) ([]models.AuditRequest, error) {
	query := `
		SELECT ` + requestColumns + `
		FROM audit_requests
		WHERE reviewer_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	return r.list(ctx, query, reviewerID, limit, offset)
}

func (r *RequestRepository) list(ctx context.Context, query string, args ...interface{}) ([]models.AuditRequest, error) {
	var requests []models.AuditRequest
	if err := r.db.SelectContext(ctx, &requests, query, args...); err != nil {
		return nil, fmt.Errorf("request repository: list: %w", err)
	}
	for i := range requests {
		if err := requests[i].CategoryOptions.Resolve(requests[i].Category); err != nil {
			return nil, fmt.Errorf("request repository: resolve options: %w", err)
		}
	}
	return requests, nil
}

// ClaimOpen — атомарный compare-and-set эксклюзивного назначения: заявка
// переводится в in_progress с ревьюером только если она всё ещё open.
// Ноль затронутых строк означает проигранную гонку (ErrClaimLost) — победил
// другой ревьюер или заявку успели отменить; оба исхода неразличимы
// намеренно.
func (r *RequestRepository) ClaimOpen(ctx context.Context, requestID, reviewerID uuid.UUID, now time.Time) error {
	query := `
		UPDATE audit_requests
		SET reviewer_id = $2,
		    status = 'in_progress',
		    claimed_at = $3,
		    updated_at = NOW()
		WHERE id = $1 AND status = 'open' AND reviewer_id IS NULL
	`

	res, err := r.db.ExecContext(ctx, query, requestID, reviewerID, now)
	if err != nil {
		return fmt.Errorf("request repository: claim: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("request repository: claim rows affected: %w", err)
	}
	if affected == 0 {
		return ErrClaimLost
	}
	return nil
}

// CompleteWithDelivery в одной транзакции переводит заявку в completed и
// создаёт результат аудита. Условный UPDATE проверяет, что заявка в
// in_progress и закреплена именно за этим ревьюером; уникальный индекс на
// request_id отклоняет второй результат.
func (r *RequestRepository) CompleteWithDelivery(ctx context.Context, requestID, reviewerID uuid.UUID, delivery *models.AuditDelivery, now time.Time) error {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("request repository: begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	query := `
		UPDATE audit_requests
		SET status = 'completed',
		    completed_at = $3,
		    updated_at = NOW()
		WHERE id = $1 AND status = 'in_progress' AND reviewer_id = $2
	`

	res, err := tx.ExecContext(ctx, query, requestID, reviewerID, now)
	if err != nil {
		return fmt.Errorf("request repository: complete: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("request repository: complete rows affected: %w", err)
	}
	if affected == 0 {
		err = ErrPreconditionFailed
		return err
	}

	insert := `
		INSERT INTO audit_deliveries (request_id, reviewer_id, verdict, comment, revision)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err = tx.QueryRowxContext(
		ctx,
		insert,
		requestID,
		reviewerID,
		delivery.Verdict,
		delivery.Comment,
		delivery.Revision,
	).Scan(&delivery.ID, &delivery.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			// Уникальность request_id: результат уже существует.
			err = ErrPreconditionFailed
			return err
		}
		return fmt.Errorf("request repository: insert delivery: %w", err)
	}

	delivery.RequestID = requestID
	delivery.ReviewerID = reviewerID

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("request repository: commit: %w", err)
	}
	return nil
}

// CancelIfActive переводит заявку в cancelled, если она ещё не терминальна.
// Возвращает payment_intent_id отменённой заявки для снятия холда.
func (r *RequestRepository) CancelIfActive(ctx context.Context, requestID uuid.UUID) (string, error) {
	query := `
		UPDATE audit_requests
		SET status = 'cancelled',
		    reviewer_id = NULL,
		    claimed_at = NULL,
		    updated_at = NOW()
		WHERE id = $1 AND status IN ('open', 'in_progress')
		RETURNING payment_intent_id
	`

	var paymentIntentID string
	if err := r.db.GetContext(ctx, &paymentIntentID, query, requestID); err != nil {
		if err == sql.ErrNoRows {
			return "", ErrPreconditionFailed
		}
		return "", fmt.Errorf("request repository: cancel: %w", err)
	}
	return paymentIntentID, nil
}

// GetDeliveryByRequestID возвращает результат аудита по заявке.
func (r *RequestRepository) GetDeliveryByRequestID(ctx context.Context, requestID uuid.UUID) (*models.AuditDelivery, error) {
	var delivery models.AuditDelivery
	query := `
		SELECT id, request_id, reviewer_id, verdict, comment, revision, created_at
		FROM audit_deliveries
		WHERE request_id = $1
	`
	if err := r.db.GetContext(ctx, &delivery, query, requestID); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrDeliveryNotFound
		}
		return nil, fmt.Errorf("request repository: get delivery: %w", err)
	}
	return &delivery, nil
}
