package dto

import "encoding/json"

// RegisterRequest represents the registration payload
type RegisterRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Username string `json:"username"`
}

// LoginRequest represents the login payload
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest represents the token refresh payload
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// CreateAuditRequestRequest represents the request to create an audit request.
// CategoryOptions is the category-specific questionnaire, stored as-is after
// validation against the declared category.
type CreateAuditRequestRequest struct {
	Category        string          `json:"category" binding:"required"`
	Title           string          `json:"title" binding:"required"`
	AIChatURL       string          `json:"ai_chat_url"`
	Content         string          `json:"content" binding:"required"`
	Budget          int64           `json:"budget" binding:"required"`
	CategoryOptions json.RawMessage `json:"category_options" binding:"required"`
}

// DeliverAuditRequest represents the reviewer's audit result submission
type DeliverAuditRequest struct {
	Verdict  string `json:"verdict" binding:"required"`
	Comment  string `json:"comment" binding:"required"`
	Revision string `json:"revision"`
}

// UpdateFeeRateRequest represents the admin fee rate update
type UpdateFeeRateRequest struct {
	FeeRate *float64 `json:"fee_rate" binding:"required"`
}