package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/audit-backend/internal/logger"
	"github.com/ignatzorin/audit-backend/internal/models"
	"github.com/ignatzorin/audit-backend/internal/payment"
	"github.com/ignatzorin/audit-backend/internal/pkg/apperror"
	"github.com/ignatzorin/audit-backend/internal/repository"
	"github.com/ignatzorin/audit-backend/internal/validation"
)

// RequestLedger описывает зависимости сервиса от журнала заявок.
// Переходы статусов выполняются только условными обновлениями журнала,
// никогда прямым присваиванием полей из нескольких конкурентных вызовов.
type RequestLedger interface {
	Create(ctx context.Context, req *models.AuditRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.AuditRequest, error)
	ListByStatus(ctx context.Context, status string, limit, offset int) ([]models.AuditRequest, error)
	ListByClientID(ctx context.Context, clientID uuid.UUID, limit, offset int) ([]models.AuditRequest, error)
	ListByReviewerID(ctx context.Context, reviewerID uuid.UUID, limit, offset int) ([]models.AuditRequest, error)
	ClaimOpen(ctx context.Context, requestID, reviewerID uuid.UUID, now time.Time) error
	CompleteWithDelivery(ctx context.Context, requestID, reviewerID uuid.UUID, delivery *models.AuditDelivery, now time.Time) error
	CancelIfActive(ctx context.Context, requestID uuid.UUID) (string, error)
	GetDeliveryByRequestID(ctx context.Context, requestID uuid.UUID) (*models.AuditDelivery, error)
}

// EscrowGateway — контракт платёжного провайдера: authorize резервирует
// средства, capture списывает холд, cancel отпускает его.
type EscrowGateway interface {
	Authorize(ctx context.Context, amount int64, metadata map[string]string) (string, error)
	Capture(ctx context.Context, holdID string) (*payment.Receipt, error)
	Cancel(ctx context.Context, holdID string) error
	Status(ctx context.Context, holdID string) (payment.HoldStatus, error)
}

// UserDirectory — чтение пользователей для проверки прав.
type UserDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// FeeRateSource — чтение текущей ставки комиссии. Ставка читается в момент
// capture, а не в момент создания заявки.
type FeeRateSource interface {
	Get(ctx context.Context) (*models.PlatformSettings, error)
}

// CaptureRetryQueue — очередь ручного повтора неудавшихся capture.
type CaptureRetryQueue interface {
	Enqueue(ctx context.Context, requestID uuid.UUID, paymentIntentID, lastError string) (*models.CaptureRetry, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.CaptureRetry, error)
	ListPending(ctx context.Context, limit, offset int) ([]models.CaptureRetry, error)
	MarkResolved(ctx context.Context, id uuid.UUID) error
	RecordFailure(ctx context.Context, id uuid.UUID, lastError string) error
}

// RequestService управляет жизненным циклом заявки на аудит:
// open -> in_progress -> completed, с отменой из open и in_progress.
// Терминальные статусы неизменяемы.
type RequestService struct {
	ledger   RequestLedger
	gateway  EscrowGateway
	users    UserDirectory
	settings FeeRateSource
	retries  CaptureRetryQueue
}

// NewRequestService создаёт сервис заявок.
func NewRequestService(ledger RequestLedger, gateway EscrowGateway, users UserDirectory, settings FeeRateSource, retries CaptureRetryQueue) *RequestService {
	return &RequestService{
		ledger:   ledger,
		gateway:  gateway,
		users:    users,
		settings: settings,
		retries:  retries,
	}
}

// CreateRequestInput содержит данные новой заявки.
type CreateRequestInput struct {
	Category        string
	Title           string
	AIChatURL       string
	Content         string
	Budget          int64
	CategoryOptions models.CategoryOptions
}

// DeliverInput содержит результат аудита от ревьюера.
type DeliverInput struct {
	Verdict  string
	Comment  string
	Revision string
}

// DeliverResult — итог завершения заявки: сама заявка, результат аудита
// и расчёт распределения средств (nil, если capture отложен в очередь).
type DeliverResult struct {
	Request    *models.AuditRequest  `json:"request"`
	Delivery   *models.AuditDelivery `json:"delivery"`
	Settlement *Settlement           `json:"settlement,omitempty"`

	// CaptureQueued выставляется, когда списание холда не удалось и
	// передано оператору. Заявка при этом остаётся completed.
	CaptureQueued bool `json:"capture_queued,omitempty"`
}

// CreateRequest создаёт заявку: сначала авторизуется холд у провайдера,
// затем заявка сохраняется в журнале. Создание и авторизация — одна
// логическая единица: при отказе авторизации заявка не создаётся, при
// отказе сохранения свежий холд снимается. Заявка без валидного холда
// существовать не должна.
func (s *RequestService) CreateRequest(ctx context.Context, clientID uuid.UUID, in CreateRequestInput) (*models.AuditRequest, error) {
	// Валидация до любых побочных эффектов: откатывать нечего.
	if err := s.validateCreate(in); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	holdID, err := s.gateway.Authorize(ctx, in.Budget, map[string]string{
		"client_id": clientID.String(),
		"category":  in.Category,
	})
	if err != nil {
		return nil, err
	}

	req := &models.AuditRequest{
		ClientID:        clientID,
		Category:        in.Category,
		Title:           in.Title,
		Content:         in.Content,
		Budget:          in.Budget,
		Status:          models.RequestStatusOpen,
		CategoryOptions: in.CategoryOptions,
		PaymentIntentID: holdID,
	}
	if in.AIChatURL != "" {
		req.AIChatURL = &in.AIChatURL
	}

	if err := s.ledger.Create(ctx, req); err != nil {
		// Сохранение не удалось — снимаем свежий холд, чтобы не держать
		// средства клиента без заявки.
		if cancelErr := s.gateway.Cancel(ctx, holdID); cancelErr != nil {
			s.log().WithFields(logrus.Fields{
				"hold_id": holdID,
				"error":   cancelErr.Error(),
			}).Error("не удалось снять холд после сбоя сохранения заявки")
		}
		return nil, err
	}

	return req, nil
}

func (s *RequestService) validateCreate(in CreateRequestInput) error {
	if err := validation.ValidateCategory(in.Category); err != nil {
		return err
	}
	if err := validation.ValidateTitle(in.Title); err != nil {
		return err
	}
	if err := validation.ValidateContent(in.Content); err != nil {
		return err
	}
	if err := validation.ValidateBudget(in.Budget); err != nil {
		return err
	}
	if err := validation.ValidateAIChatURL(in.AIChatURL); err != nil {
		return err
	}
	return validation.ValidateCategoryOptions(in.Category, in.CategoryOptions)
}

// ClaimRequest — эксклюзивное назначение ревьюера. Гонка многих ревьюеров
// за одну заявку решается одним условным обновлением журнала: ровно один
// победитель, остальные получают ErrClaimLost и должны перечитать пул
// открытых заявок, а не повторять клейм этой же.
func (s *RequestService) ClaimRequest(ctx context.Context, requestID, reviewerID uuid.UUID) (*models.AuditRequest, error) {
	reviewer, err := s.users.GetByID(ctx, reviewerID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.ErrUserNotFound
		}
		return nil, err
	}
	if !reviewer.IsReviewerApproved {
		return nil, apperror.New(apperror.ErrCodeForbidden, "клейм доступен только одобренным ревьюерам")
	}

	if err := s.ledger.ClaimOpen(ctx, requestID, reviewerID, time.Now()); err != nil {
		if errors.Is(err, repository.ErrClaimLost) {
			// Проигранная гонка или отменённая заявка — для вызывающего
			// один и тот же исход.
			return nil, apperror.ErrClaimLost
		}
		return nil, err
	}

	return s.ledger.GetByID(ctx, requestID)
}

// DeliverAudit принимает результат аудита от назначенного ревьюера,
// переводит заявку в completed и списывает холд с расчётом распределения
// по текущей ставке комиссии.
//
// Политика отказа capture: завершение не откатывается. Результат аудита
// уже произведён, и отзыв выполненной работы — небезопасное корректирующее
// действие; провал списания логируется и уходит в очередь ручного повтора.
func (s *RequestService) DeliverAudit(ctx context.Context, requestID, reviewerID uuid.UUID, in DeliverInput) (*DeliverResult, error) {
	if err := s.validateDeliver(in); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	delivery := &models.AuditDelivery{
		Verdict: in.Verdict,
		Comment: in.Comment,
	}
	if in.Revision != "" {
		delivery.Revision = &in.Revision
	}

	// Условное обновление проверяет статус и назначенного ревьюера на
	// авторитетном состоянии строки; уникальный индекс отклоняет второй
	// результат. Оба отказа неразделимо означают невыполненное предусловие.
	if err := s.ledger.CompleteWithDelivery(ctx, requestID, reviewerID, delivery, time.Now()); err != nil {
		if errors.Is(err, repository.ErrPreconditionFailed) {
			return nil, apperror.ErrInvalidTransition
		}
		return nil, err
	}

	req, err := s.ledger.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	result := &DeliverResult{Request: req, Delivery: delivery}

	settlement, captureErr := s.settleCapture(ctx, req)
	if captureErr != nil {
		s.log().WithFields(logrus.Fields{
			"request_id":        requestID,
			"payment_intent_id": req.PaymentIntentID,
			"error":             captureErr.Error(),
		}).Warn("capture не удался, заявка остаётся completed, списание передано оператору")

		if _, qErr := s.retries.Enqueue(ctx, requestID, req.PaymentIntentID, captureErr.Error()); qErr != nil {
			s.log().WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      qErr.Error(),
			}).Error("не удалось поставить capture в очередь повтора")
		}

		result.CaptureQueued = true
		return result, nil
	}

	result.Settlement = settlement
	return result, nil
}

// settleCapture читает текущую ставку комиссии, считает распределение
// и списывает холд. Ставка берётся в момент исполнения capture.
func (s *RequestService) settleCapture(ctx context.Context, req *models.AuditRequest) (*Settlement, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}

	settlement, err := ComputeSettlement(req.Budget, settings.FeeRate)
	if err != nil {
		return nil, err
	}

	if _, err := s.gateway.Capture(ctx, req.PaymentIntentID); err != nil {
		return nil, err
	}

	return &settlement, nil
}

func (s *RequestService) validateDeliver(in DeliverInput) error {
	if err := validation.ValidateVerdict(in.Verdict); err != nil {
		return err
	}
	if err := validation.ValidateComment(in.Comment); err != nil {
		return err
	}
	return validation.ValidateLength("исправленный вариант", in.Revision, 0, validation.MaxRevisionLength)
}

// CancelRequest отменяет заявку клиента, пока она не терминальна.
// Гонка отмены с клеймом решается той же дисциплиной условных обновлений:
// чья проверка status = 'open' легла первой, тот и победил.
func (s *RequestService) CancelRequest(ctx context.Context, requestID, callerID uuid.UUID, role string) (*models.AuditRequest, error) {
	req, err := s.ledger.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repository.ErrRequestNotFound) {
			return nil, apperror.ErrRequestNotFound
		}
		return nil, err
	}

	if role != models.RoleAdmin && req.ClientID != callerID {
		return nil, apperror.ErrForbidden
	}

	paymentIntentID, err := s.ledger.CancelIfActive(ctx, requestID)
	if err != nil {
		if errors.Is(err, repository.ErrPreconditionFailed) {
			return nil, apperror.ErrInvalidTransition
		}
		return nil, err
	}

	// Заявка уже отменена в журнале; отказ снятия холда — забота сверки,
	// но вызывающему он виден. AlreadyCaptured здесь означает нарушение
	// контракта и наружу отдаётся как есть.
	if err := s.gateway.Cancel(ctx, paymentIntentID); err != nil {
		s.log().WithFields(logrus.Fields{
			"request_id":        requestID,
			"payment_intent_id": paymentIntentID,
			"error":             err.Error(),
		}).Error("не удалось снять холд отменённой заявки")
		return nil, err
	}

	return s.ledger.GetByID(ctx, requestID)
}

// GetRequest возвращает заявку. Открытые заявки видны всем
// аутентифицированным пользователям; остальные — только сторонам и
// администратору. Результат аудита прикладывается только сторонам.
func (s *RequestService) GetRequest(ctx context.Context, requestID, callerID uuid.UUID, role string) (*models.AuditRequest, *models.AuditDelivery, error) {
	req, err := s.ledger.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repository.ErrRequestNotFound) {
			return nil, nil, apperror.ErrRequestNotFound
		}
		return nil, nil, err
	}

	isParty := req.ClientID == callerID ||
		(req.ReviewerID != nil && *req.ReviewerID == callerID) ||
		role == models.RoleAdmin

	if !isParty && req.Status != models.RequestStatusOpen {
		return nil, nil, apperror.ErrForbidden
	}

	if !isParty {
		return req, nil, nil
	}

	delivery, err := s.ledger.GetDeliveryByRequestID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repository.ErrDeliveryNotFound) {
			return req, nil, nil
		}
		return nil, nil, err
	}
	return req, delivery, nil
}

// OpenPool возвращает пул открытых заявок для ревьюеров.
func (s *RequestService) OpenPool(ctx context.Context, limit, offset int) ([]models.AuditRequest, error) {
	limit = normalizeLimit(limit)
	return s.ledger.ListByStatus(ctx, models.RequestStatusOpen, limit, offset)
}

// MyRequests возвращает заявки клиента.
func (s *RequestService) MyRequests(ctx context.Context, clientID uuid.UUID, limit, offset int) ([]models.AuditRequest, error) {
	limit = normalizeLimit(limit)
	return s.ledger.ListByClientID(ctx, clientID, limit, offset)
}

// MyAssignments возвращает заявки, взятые ревьюером.
func (s *RequestService) MyAssignments(ctx context.Context, reviewerID uuid.UUID, limit, offset int) ([]models.AuditRequest, error) {
	limit = normalizeLimit(limit)
	return s.ledger.ListByReviewerID(ctx, reviewerID, limit, offset)
}

// ListCaptureRetries возвращает очередь неудавшихся capture для оператора.
func (s *RequestService) ListCaptureRetries(ctx context.Context, limit, offset int) ([]models.CaptureRetry, error) {
	limit = normalizeLimit(limit)
	return s.retries.ListPending(ctx, limit, offset)
}

// RetryCapture — ручной повтор списания по записи очереди. Успех и
// AlreadyCaptured (списание выполнила предыдущая попытка) разрешают запись;
// любой другой отказ увеличивает счётчик попыток и остаётся в очереди.
func (s *RequestService) RetryCapture(ctx context.Context, retryID uuid.UUID) (*models.CaptureRetry, error) {
	retry, err := s.retries.GetByID(ctx, retryID)
	if err != nil {
		if errors.Is(err, repository.ErrCaptureRetryNotFound) {
			return nil, apperror.New(apperror.ErrCodeNotFound, "запись очереди не найдена")
		}
		return nil, err
	}
	if retry.ResolvedAt != nil {
		return retry, nil
	}

	_, captureErr := s.gateway.Capture(ctx, retry.PaymentIntentID)
	if captureErr != nil && !apperror.IsAlreadyCaptured(captureErr) {
		if rErr := s.retries.RecordFailure(ctx, retryID, captureErr.Error()); rErr != nil {
			s.log().WithFields(logrus.Fields{
				"retry_id": retryID,
				"error":    rErr.Error(),
			}).Error("не удалось записать неудачную попытку capture")
		}
		return nil, captureErr
	}

	if err := s.retries.MarkResolved(ctx, retryID); err != nil {
		return nil, err
	}
	return s.retries.GetByID(ctx, retryID)
}

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return 20
	}
	return limit
}

// log возвращает логгер; в тестах глобальный логгер может быть не настроен.
func (s *RequestService) log() *logrus.Logger {
	if logger.Log != nil {
		return logger.Log
	}
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}
