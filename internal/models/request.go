package models

import (
	"time"

	"github.com/google/uuid"
)

// Статусы заявки на аудит.
const (
	RequestStatusOpen       = "open"
	RequestStatusInProgress = "in_progress"
	RequestStatusCompleted  = "completed"
	RequestStatusCancelled  = "cancelled"
)

// Категории аудита.
const (
	CategoryITCode      = "it_code"
	CategoryTranslation = "translation"
	CategoryAcademic    = "academic"
)

// AllowedBudgets — фиксированный набор допустимых бюджетов в минимальных
// единицах валюты. Другие суммы при создании заявки отклоняются.
var AllowedBudgets = []int64{1000, 3000, 5000, 10000, 30000, 50000}

// IsAllowedBudget проверяет, входит ли сумма в допустимый набор.
func IsAllowedBudget(budget int64) bool {
	for _, b := range AllowedBudgets {
		if b == budget {
			return true
		}
	}
	return false
}

// IsValidCategory проверяет, что категория из закрытого набора.
func IsValidCategory(category string) bool {
	switch category {
	case CategoryITCode, CategoryTranslation, CategoryAcademic:
		return true
	}
	return false
}

// IsTerminalStatus сообщает, является ли статус терминальным.
// Из completed и cancelled переходов не существует.
func IsTerminalStatus(status string) bool {
	return status == RequestStatusCompleted || status == RequestStatusCancelled
}

// AuditRequest описывает заявку клиента на аудит AI-сгенерированного
// материала. Заявка одновременно единица работы и единица движения денег:
// payment_intent_id ссылается на холд у платёжного провайдера и
// устанавливается ровно один раз при создании.
type AuditRequest struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	ClientID        uuid.UUID       `db:"client_id" json:"client_id"`
	ReviewerID      *uuid.UUID      `db:"reviewer_id" json:"reviewer_id,omitempty"`
	Category        string          `db:"category" json:"category"`
	Title           string          `db:"title" json:"title"`
	AIChatURL       *string         `db:"ai_chat_url" json:"ai_chat_url,omitempty"`
	Content         string          `db:"content" json:"content"`
	Budget          int64           `db:"budget" json:"budget"`
	Status          string          `db:"status" json:"status"`
	CategoryOptions CategoryOptions `db:"category_options" json:"category_options"`
	PaymentIntentID string          `db:"payment_intent_id" json:"payment_intent_id"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
	ClaimedAt       *time.Time      `db:"claimed_at" json:"claimed_at,omitempty"`
	CompletedAt     *time.Time      `db:"completed_at" json:"completed_at,omitempty"`
}
