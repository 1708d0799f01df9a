package models

import (
	"time"

	"github.com/google/uuid"
)

// Вердикты аудита.
const (
	VerdictApproved      = "approved"
	VerdictNeedsRevision = "needs_revision"
	VerdictDangerous     = "dangerous"
)

// IsValidVerdict проверяет, что вердикт из закрытого набора.
func IsValidVerdict(verdict string) bool {
	switch verdict {
	case VerdictApproved, VerdictNeedsRevision, VerdictDangerous:
		return true
	}
	return false
}

// AuditDelivery — результат работы ревьюера. Не более одной записи на заявку,
// после создания не изменяется (append-only журнал).
type AuditDelivery struct {
	ID         uuid.UUID `db:"id" json:"id"`
	RequestID  uuid.UUID `db:"request_id" json:"request_id"`
	ReviewerID uuid.UUID `db:"reviewer_id" json:"reviewer_id"`
	Verdict    string    `db:"verdict" json:"verdict"`
	Comment    string    `db:"comment" json:"comment"`
	Revision   *string   `db:"revision" json:"revision,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
