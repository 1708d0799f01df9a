package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/ignatzorin/audit-backend/internal/http/middleware"
)

func TestRequestHandler_Create_Unauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &RequestHandler{requests: nil}
	r.POST("/requests", handler.Create)

	req, _ := http.NewRequest("POST", "/requests", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequestHandler_Get_InvalidUUID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &RequestHandler{requests: nil}
	r.GET("/requests/:id", func(c *gin.Context) {
		c.Set(middleware.ContextUserIDKey, uuid.New())
		c.Set(middleware.ContextRoleKey, "client")
	}, handler.Get)

	req, _ := http.NewRequest("GET", "/requests/not-a-uuid", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRequestHandler_Create_BadOptions(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &RequestHandler{requests: nil}
	r.POST("/requests", func(c *gin.Context) {
		c.Set(middleware.ContextUserIDKey, uuid.New())
	}, handler.Create)

	// Категория из закрытого набора, но анкета не является JSON объектом.
	body := `{"category":"it_code","title":"Ревью","content":"Проверка сгенерированного кода","budget":5000,"category_options":"oops"}`
	req, _ := http.NewRequest("POST", "/requests", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRequestHandler_Claim_Unauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &RequestHandler{requests: nil}
	r.POST("/requests/:id/claim", handler.Claim)

	req, _ := http.NewRequest("POST", "/requests/"+uuid.NewString()+"/claim", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequestHandler_Deliver_InvalidUUID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &RequestHandler{requests: nil}
	r.POST("/requests/:id/delivery", func(c *gin.Context) {
		c.Set(middleware.ContextUserIDKey, uuid.New())
	}, handler.Deliver)

	req, _ := http.NewRequest("POST", "/requests/bad/delivery", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRequestHandler_Cancel_Unauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &RequestHandler{requests: nil}
	r.POST("/requests/:id/cancel", handler.Cancel)

	req, _ := http.NewRequest("POST", "/requests/"+uuid.NewString()+"/cancel", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminHandler_UpdateFeeRate_MissingBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &AdminHandler{}
	r.PUT("/admin/settings/fee-rate", func(c *gin.Context) {
		c.Set(middleware.ContextUserIDKey, uuid.New())
	}, handler.UpdateFeeRate)

	req, _ := http.NewRequest("PUT", "/admin/settings/fee-rate", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminHandler_RetryCapture_InvalidUUID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &AdminHandler{}
	r.POST("/admin/capture-retries/:id/retry", handler.RetryCapture)

	req, _ := http.NewRequest("POST", "/admin/capture-retries/xyz/retry", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
