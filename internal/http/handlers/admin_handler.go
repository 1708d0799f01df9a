package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/audit-backend/internal/dto"
	"github.com/ignatzorin/audit-backend/internal/http/handlers/common"
	"github.com/ignatzorin/audit-backend/internal/service"
)

// AdminHandler — административные операции: настройки платформы, заявки
// на роль ревьюера и очередь неудавшихся capture.
type AdminHandler struct {
	auth     *service.AuthService
	requests *service.RequestService
	settings *service.SettingsService
}

// NewAdminHandler создаёт хэндлер.
func NewAdminHandler(auth *service.AuthService, requests *service.RequestService, settings *service.SettingsService) *AdminHandler {
	return &AdminHandler{
		auth:     auth,
		requests: requests,
		settings: settings,
	}
}

// GetSettings GET /admin/settings
func (h *AdminHandler) GetSettings(c *gin.Context) {
	settings, err := h.settings.Get(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, settings)
}

// UpdateFeeRate PUT /admin/settings/fee-rate
func (h *AdminHandler) UpdateFeeRate(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req dto.UpdateFeeRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	settings, err := h.settings.UpdateFeeRate(c.Request.Context(), *req.FeeRate, userID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, settings)
}

// ListReviewerApplications GET /admin/reviewer-applications
func (h *AdminHandler) ListReviewerApplications(c *gin.Context) {
	limit, offset := common.GetPagination(c)

	users, err := h.auth.ListReviewerApplications(c.Request.Context(), limit, offset)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": users})
}

// ApproveReviewer POST /admin/reviewers/:id/approve
func (h *AdminHandler) ApproveReviewer(c *gin.Context) {
	h.resolveReviewer(c, true)
}

// RejectReviewer POST /admin/reviewers/:id/reject
func (h *AdminHandler) RejectReviewer(c *gin.Context) {
	h.resolveReviewer(c, false)
}

func (h *AdminHandler) resolveReviewer(c *gin.Context, approved bool) {
	userID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	user, err := h.auth.ResolveReviewerApplication(c.Request.Context(), userID, approved)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// ListCaptureRetries GET /admin/capture-retries
func (h *AdminHandler) ListCaptureRetries(c *gin.Context) {
	limit, offset := common.GetPagination(c)

	retries, err := h.requests.ListCaptureRetries(c.Request.Context(), limit, offset)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": retries})
}

// RetryCapture POST /admin/capture-retries/:id/retry
func (h *AdminHandler) RetryCapture(c *gin.Context) {
	retryID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	retry, err := h.requests.RetryCapture(c.Request.Context(), retryID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, retry)
}
