package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ignatzorin/audit-backend/internal/pkg/apperror"
)

// newTestClient поднимает заглушку провайдера и возвращает клиента поверх неё.
func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "sk_test_123", "jpy", 5*time.Second)
}

func TestClient_Authorize(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/payment_intents", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_123", r.Header.Get("Authorization"))

		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "5000", r.PostForm.Get("amount"))
		assert.Equal(t, "jpy", r.PostForm.Get("currency"))
		assert.Equal(t, "manual", r.PostForm.Get("capture_method"))
		assert.Equal(t, "req-1", r.PostForm.Get("metadata[request_id]"))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"id": "pi_123", "amount": 5000, "currency": "jpy", "status": "requires_capture",
		})
	})

	holdID, err := client.Authorize(context.Background(), 5000, map[string]string{"request_id": "req-1"})
	assert.NoError(t, err)
	assert.Equal(t, "pi_123", holdID)
}

func TestClient_Authorize_ProviderRejects(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{
				"type": "card_error", "code": "card_declined", "message": "Your card was declined.",
			},
		})
	})

	_, err := client.Authorize(context.Background(), 5000, nil)
	assert.Error(t, err)
	assert.True(t, apperror.IsPaymentProvider(err))
}

func TestClient_Capture(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/payment_intents/pi_123/capture", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id": "pi_123", "amount": 5000, "currency": "jpy", "status": "succeeded",
		})
	})

	receipt, err := client.Capture(context.Background(), "pi_123")
	assert.NoError(t, err)
	assert.Equal(t, "pi_123", receipt.HoldID)
	assert.Equal(t, int64(5000), receipt.Amount)
}

func TestClient_Capture_AlreadyCaptured(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{
				"type":    "invalid_request_error",
				"code":    "payment_intent_unexpected_state",
				"message": "This PaymentIntent has already been captured.",
			},
		})
	})

	_, err := client.Capture(context.Background(), "pi_123")
	assert.Error(t, err)
	assert.True(t, apperror.IsAlreadyCaptured(err))
}

func TestClient_Cancel_AfterCapture(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{
				"type":    "invalid_request_error",
				"code":    "payment_intent_unexpected_state",
				"message": "This PaymentIntent has already been captured, it cannot be canceled.",
			},
		})
	})

	err := client.Cancel(context.Background(), "pi_123")
	assert.True(t, apperror.IsAlreadyCaptured(err))
}

func TestClient_Cancel(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/payment_intents/pi_123/cancel", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id": "pi_123", "status": "canceled",
		})
	})

	assert.NoError(t, client.Cancel(context.Background(), "pi_123"))
}

func TestClient_Status(t *testing.T) {
	statuses := map[string]HoldStatus{
		"requires_capture": HoldStatusAuthorized,
		"succeeded":        HoldStatusCaptured,
		"canceled":         HoldStatusCancelled,
		"processing":       HoldStatusFailed,
	}

	for provider, expected := range statuses {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"id": "pi_123", "status": provider,
			})
		})

		status, err := client.Status(context.Background(), "pi_123")
		assert.NoError(t, err)
		assert.Equal(t, expected, status)
	}
}

func TestClient_EmptyBaseURL(t *testing.T) {
	client := NewClient("", "sk", "jpy", time.Second)
	_, err := client.Authorize(context.Background(), 1000, nil)
	assert.True(t, apperror.IsPaymentProvider(err))
}
