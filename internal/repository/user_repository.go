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

// Ошибки уровня репозитория пользователей.
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrSessionNotFound = errors.New("session not found")
)

const userColumns = `
	id, email, username, password_hash, role, is_reviewer_approved,
	reviewer_application_status, last_login_at, created_at, updated_at
`

// UserRepository отвечает за работу с таблицами users и sessions.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository создаёт экземпляр репозитория.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create создаёт нового пользователя.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (email, username, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, is_reviewer_approved, reviewer_application_status, created_at, updated_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		user.Email, user.Username, user.PasswordHash, user.Role,
	).Scan(
		&user.ID,
		&user.IsReviewerApproved,
		&user.ReviewerApplicationStatus,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return fmt.Errorf("user repository: create: %w", err)
	}

	return nil
}

// GetByEmail возвращает пользователя по email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("user repository: get by email: %w", err)
	}
	return &user, nil
}

// GetByID возвращает пользователя по идентификатору.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("user repository: get by id: %w", err)
	}
	return &user, nil
}

// UpdateLastLoginAt обновляет отметку последнего входа.
func (r *UserRepository) UpdateLastLoginAt(ctx context.Context, userID uuid.UUID) error {
	query := `UPDATE users SET last_login_at = NOW(), updated_at = NOW() WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("user repository: update last login: %w", err)
	}
	return nil
}

// SubmitReviewerApplication переводит заявку пользователя на роль ревьюера
// в pending. Повторная подача при уже рассматриваемой заявке отклоняется
// условием статуса.
func (r *UserRepository) SubmitReviewerApplication(ctx context.Context, userID uuid.UUID) error {
	query := `
		UPDATE users
		SET reviewer_application_status = 'pending', updated_at = NOW()
		WHERE id = $1 AND reviewer_application_status IN ('none', 'rejected')
	`
	res, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("user repository: submit reviewer application: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("user repository: submit reviewer application rows affected: %w", err)
	}
	if affected == 0 {
		return ErrPreconditionFailed
	}
	return nil
}

// SetReviewerApproval фиксирует решение администратора по заявке ревьюера.
func (r *UserRepository) SetReviewerApproval(ctx context.Context, userID uuid.UUID, approved bool) (*models.User, error) {
	status := models.ReviewerApplicationRejected
	role := models.RoleClient
	if approved {
		status = models.ReviewerApplicationApproved
		role = models.RoleReviewer
	}

	var user models.User
	query := `
		UPDATE users
		SET is_reviewer_approved = $2,
		    reviewer_application_status = $3,
		    role = CASE WHEN $2 THEN $4 ELSE role END,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns + `
	`
	if err := r.db.GetContext(ctx, &user, query, userID, approved, status, role); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("user repository: set reviewer approval: %w", err)
	}
	return &user, nil
}

// ListReviewerApplications возвращает пользователей с заявками в pending.
func (r *UserRepository) ListReviewerApplications(ctx context.Context, limit, offset int) ([]models.User, error) {
	var users []models.User
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE reviewer_application_status = 'pending'
		ORDER BY updated_at
		LIMIT $1 OFFSET $2
	`
	if err := r.db.SelectContext(ctx, &users, query, limit, offset); err != nil {
		return nil, fmt.Errorf("user repository: list reviewer applications: %w", err)
	}
	return users, nil
}

// CreateSession сохраняет refresh сессию пользователя.
func (r *UserRepository) CreateSession(ctx context.Context, session *models.Session) error {
	query := `
		INSERT INTO sessions (user_id, refresh_token, user_agent, ip_address, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	if err := r.db.QueryRowxContext(
		ctx, query,
		session.UserID, session.RefreshToken, session.UserAgent, session.IPAddress, session.ExpiresAt,
	).Scan(&session.ID, &session.CreatedAt); err != nil {
		return fmt.Errorf("user repository: create session: %w", err)
	}
	return nil
}

// GetSessionByToken возвращает сессию по refresh токену.
func (r *UserRepository) GetSessionByToken(ctx context.Context, refreshToken string) (*models.Session, error) {
	var session models.Session
	query := `
		SELECT id, user_id, refresh_token, user_agent, ip_address, expires_at, created_at
		FROM sessions
		WHERE refresh_token = $1
	`
	if err := r.db.GetContext(ctx, &session, query, refreshToken); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("user repository: get session: %w", err)
	}
	return &session, nil
}

// DeleteSession удаляет сессию по refresh токену.
func (r *UserRepository) DeleteSession(ctx context.Context, refreshToken string) error {
	query := `DELETE FROM sessions WHERE refresh_token = $1`
	if _, err := r.db.ExecContext(ctx, query, refreshToken); err != nil {
		return fmt.Errorf("user repository: delete session: %w", err)
	}
	return nil
}
