package dto

import (
	"github.com/ignatzorin/audit-backend/internal/models"
)

// AuditRequestResponse represents an audit request with its delivery when
// the caller is a party to the request
type AuditRequestResponse struct {
	*models.AuditRequest
	Delivery *models.AuditDelivery `json:"delivery,omitempty"`
}

// NewAuditRequestResponse creates an AuditRequestResponse from components
func NewAuditRequestResponse(req *models.AuditRequest, delivery *models.AuditDelivery) *AuditRequestResponse {
	return &AuditRequestResponse{
		AuditRequest: req,
		Delivery:     delivery,
	}
}

// PaginatedRequestsResponse represents a paginated audit request list
type PaginatedRequestsResponse struct {
	Data       []models.AuditRequest `json:"data"`
	Pagination Pagination            `json:"pagination"`
}

// Pagination represents pagination metadata
type Pagination struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// SuccessResponse represents a standard success response
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
