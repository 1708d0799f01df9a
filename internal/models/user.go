package models

import (
	"time"

	"github.com/google/uuid"
)

// Роли пользователей.
const (
	RoleClient   = "client"
	RoleReviewer = "reviewer"
	RoleAdmin    = "admin"
)

// Статусы заявки на роль ревьюера.
const (
	ReviewerApplicationNone     = "none"
	ReviewerApplicationPending  = "pending"
	ReviewerApplicationApproved = "approved"
	ReviewerApplicationRejected = "rejected"
)

// User описывает пользователя платформы. Клеймить заявки может только
// пользователь с is_reviewer_approved = true.
type User struct {
	ID                        uuid.UUID  `db:"id" json:"id"`
	Email                     string     `db:"email" json:"email"`
	Username                  string     `db:"username" json:"username"`
	PasswordHash              string     `db:"password_hash" json:"-"`
	Role                      string     `db:"role" json:"role"`
	IsReviewerApproved        bool       `db:"is_reviewer_approved" json:"is_reviewer_approved"`
	ReviewerApplicationStatus string     `db:"reviewer_application_status" json:"reviewer_application_status"`
	LastLoginAt               *time.Time `db:"last_login_at" json:"last_login_at,omitempty"`
	CreatedAt                 time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt                 time.Time  `db:"updated_at" json:"updated_at"`
}

// Session представляет сохранённую сессию пользователя.
type Session struct {
	ID           uuid.UUID `db:"id" json:"id"`
	UserID       uuid.UUID `db:"user_id" json:"user_id"`
	RefreshToken string    `db:"refresh_token" json:"refresh_token"`
	UserAgent    *string   `db:"user_agent" json:"user_agent,omitempty"`
	IPAddress    *string   `db:"ip_address" json:"ip_address,omitempty"`
	ExpiresAt    time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
