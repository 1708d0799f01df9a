package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/audit-backend/internal/service"
)

// SettingsHandler отдаёт публичные настройки платформы.
type SettingsHandler struct {
	settings *service.SettingsService
}

// NewSettingsHandler создаёт хэндлер.
func NewSettingsHandler(settings *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// GetFeeRate GET /settings/fee-rate
// Текущая ставка комиссии видна всем аутентифицированным пользователям:
// ревьюер должен понимать выплату до клейма.
func (h *SettingsHandler) GetFeeRate(c *gin.Context) {
	settings, err := h.settings.Get(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"fee_rate": settings.FeeRate})
}
