package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ErrCodeNotFound          ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized      ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden         ErrorCode = "FORBIDDEN"
	ErrCodeBadRequest        ErrorCode = "BAD_REQUEST"
	ErrCodeConflict          ErrorCode = "CONFLICT"
	ErrCodeInternal          ErrorCode = "INTERNAL_ERROR"
	ErrCodeValidation        ErrorCode = "VALIDATION_ERROR"
	ErrCodeClaimLost         ErrorCode = "CLAIM_LOST"
	ErrCodeInvalidTransition ErrorCode = "INVALID_TRANSITION"
	ErrCodeAlreadyCaptured   ErrorCode = "ALREADY_CAPTURED"
	ErrCodePaymentProvider   ErrorCode = "PAYMENT_PROVIDER_ERROR"
)

type AppError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Cause      error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is сопоставляет ошибки по коду: обёрнутая через Wrap ошибка
// совпадает с сентинелом того же кода через errors.Is.
func (e *AppError) Is(target error) bool {
	other, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == other.Code
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Cause:      err,
	}
}

func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeBadRequest, ErrCodeValidation:
		return http.StatusBadRequest
	case ErrCodeConflict, ErrCodeClaimLost, ErrCodeInvalidTransition, ErrCodeAlreadyCaptured:
		return http.StatusConflict
	case ErrCodePaymentProvider:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func IsNotFound(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrCodeNotFound
}

func IsForbidden(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrCodeForbidden
}

func IsValidation(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrCodeValidation
}

func IsClaimLost(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrCodeClaimLost
}

func IsInvalidTransition(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrCodeInvalidTransition
}

func IsAlreadyCaptured(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrCodeAlreadyCaptured
}

func IsPaymentProvider(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrCodePaymentProvider
}

var (
	ErrRequestNotFound  = New(ErrCodeNotFound, "заявка не найдена")
	ErrDeliveryNotFound = New(ErrCodeNotFound, "результат аудита не найден")
	ErrUserNotFound     = New(ErrCodeNotFound, "пользователь не найден")
	ErrUnauthorized     = New(ErrCodeUnauthorized, "требуется авторизация")
	ErrForbidden        = New(ErrCodeForbidden, "недостаточно прав")

	// ErrClaimLost — безобидный исход гонки за заявку: условное обновление
	// не затронуло ни одной строки, победил другой ревьюер (или заявку
	// успели отменить). Повтор по той же заявке не предпринимается.
	ErrClaimLost = New(ErrCodeClaimLost, "заявку уже забрал другой ревьюер")

	// ErrInvalidTransition — предусловие перехода статуса не выполнено.
	// Операция отклоняется целиком, частичных изменений не остаётся.
	ErrInvalidTransition = New(ErrCodeInvalidTransition, "недопустимый переход статуса заявки")

	// ErrAlreadyCaptured — попытка отменить уже списанный холд.
	// Нарушение контракта вызывающей стороны, не повторяемое условие.
	ErrAlreadyCaptured = New(ErrCodeAlreadyCaptured, "холд уже списан")
)
