package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ignatzorin/audit-backend/internal/pkg/apperror"
)

// Статусы холда у провайдера.
type HoldStatus string

const (
	HoldStatusAuthorized HoldStatus = "authorized"
	HoldStatusCaptured   HoldStatus = "captured"
	HoldStatusCancelled  HoldStatus = "cancelled"
	HoldStatusFailed     HoldStatus = "failed"
)

// Receipt — подтверждение списания холда.
type Receipt struct {
	HoldID     string    `json:"hold_id"`
	Amount     int64     `json:"amount"`
	Currency   string    `json:"currency"`
	CapturedAt time.Time `json:"captured_at"`
}

// Client — HTTP клиент платёжного провайдера (Stripe-совместимый API
// платёжных намерений с capture_method=manual). Authorize резервирует
// средства без списания, capture списывает, cancel отпускает холд.
type Client struct {
	baseURL    string
	apiKey     string
	currency   string
	httpClient *http.Client
}

// NewClient создаёт экземпляр клиента.
func NewClient(baseURL, apiKey, currency string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		apiKey:   apiKey,
		currency: currency,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// intentResponse — ответ провайдера по платёжному намерению.
type intentResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
}

// providerError — тело ошибки провайдера.
type providerError struct {
	Error struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Authorize создаёт холд на сумму amount без движения средств.
// Возвращает идентификатор холда (payment intent).
func (c *Client) Authorize(ctx context.Context, amount int64, metadata map[string]string) (string, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(amount, 10))
	form.Set("currency", c.currency)
	form.Set("capture_method", "manual")
	for k, v := range metadata {
		form.Set("metadata["+k+"]", v)
	}

	var intent intentResponse
	if err := c.do(ctx, http.MethodPost, "/v1/payment_intents", form, &intent); err != nil {
		return "", err
	}
	return intent.ID, nil
}

// Capture списывает ранее авторизованный холд. Если холд уже списан,
// возвращает apperror.ErrAlreadyCaptured — повторный вызов не приводит
// к двойному списанию.
func (c *Client) Capture(ctx context.Context, holdID string) (*Receipt, error) {
	var intent intentResponse
	if err := c.do(ctx, http.MethodPost, "/v1/payment_intents/"+holdID+"/capture", url.Values{}, &intent); err != nil {
		return nil, err
	}
	return &Receipt{
		HoldID:     intent.ID,
		Amount:     intent.Amount,
		Currency:   intent.Currency,
		CapturedAt: time.Now(),
	}, nil
}

// Cancel отпускает холд. После capture отмена невозможна —
// возвращается apperror.ErrAlreadyCaptured.
func (c *Client) Cancel(ctx context.Context, holdID string) error {
	return c.do(ctx, http.MethodPost, "/v1/payment_intents/"+holdID+"/cancel", url.Values{}, nil)
}

// Status возвращает текущее состояние холда. Используется задачами сверки.
func (c *Client) Status(ctx context.Context, holdID string) (HoldStatus, error) {
	var intent intentResponse
	if err := c.do(ctx, http.MethodGet, "/v1/payment_intents/"+holdID, nil, &intent); err != nil {
		return "", err
	}

	switch intent.Status {
	case "requires_capture":
		return HoldStatusAuthorized, nil
	case "succeeded":
		return HoldStatusCaptured, nil
	case "canceled":
		return HoldStatusCancelled, nil
	default:
		return HoldStatusFailed, nil
	}
}

// do выполняет запрос к провайдеру и декодирует ответ либо ошибку.
func (c *Client) do(ctx context.Context, method, path string, form url.Values, out interface{}) error {
	if c.baseURL == "" {
		return apperror.New(apperror.ErrCodePaymentProvider, "payment: baseURL не задан")
	}

	var body io.Reader
	if form != nil && method != http.MethodGet {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("payment: не удалось собрать запрос: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodePaymentProvider, "payment: провайдер недоступен")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodePaymentProvider, "payment: не удалось прочитать ответ провайдера")
	}

	if resp.StatusCode >= 400 {
		return c.mapError(resp.StatusCode, raw)
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return apperror.Wrap(err, apperror.ErrCodePaymentProvider, "payment: некорректный ответ провайдера")
		}
	}
	return nil
}

// mapError переводит ошибку провайдера в типизированную ошибку приложения.
func (c *Client) mapError(status int, raw []byte) error {
	var pe providerError
	if err := json.Unmarshal(raw, &pe); err != nil || pe.Error.Message == "" {
		return apperror.New(apperror.ErrCodePaymentProvider,
			fmt.Sprintf("payment: провайдер ответил статусом %d", status))
	}

	// Попытка capture/cancel по уже списанному холду различается отдельно:
	// для caller это контрактное состояние, а не сбой провайдера.
	if pe.Error.Code == "payment_intent_unexpected_state" &&
		strings.Contains(pe.Error.Message, "already been captured") {
		return apperror.ErrAlreadyCaptured
	}

	return apperror.New(apperror.ErrCodePaymentProvider, "payment: "+pe.Error.Message)
}
