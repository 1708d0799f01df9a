package models

import (
	"time"

	"github.com/google/uuid"
)

// PlatformSettings — единственная запись с настройками платформы.
// fee_rate читается в момент capture, а не в момент создания заявки.
type PlatformSettings struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	FeeRate   float64    `db:"fee_rate" json:"fee_rate"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
	UpdatedBy *uuid.UUID `db:"updated_by" json:"updated_by,omitempty"`
}

// CaptureRetry — запись очереди ручного повтора capture. Создаётся, когда
// заявка уже completed, а списание холда не удалось: завершённый аудит
// не откатывается, провал списания разбирает оператор.
type CaptureRetry struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	RequestID       uuid.UUID  `db:"request_id" json:"request_id"`
	PaymentIntentID string     `db:"payment_intent_id" json:"payment_intent_id"`
	LastError       string     `db:"last_error" json:"last_error"`
	Attempts        int        `db:"attempts" json:"attempts"`
	ResolvedAt      *time.Time `db:"resolved_at" json:"resolved_at,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}
