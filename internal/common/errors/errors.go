package errors

import (
	stderrors "errors"
	"fmt"
	"runtime"
	"sort"
	"strings"
	"time"
)

// ErrorCode представляет код ошибки
type ErrorCode string

const (
	// Общие ошибки
	ErrCodeInternal   ErrorCode = "INTERNAL_ERROR"
	ErrCodeValidation ErrorCode = "VALIDATION_ERROR"
	ErrCodeNotFound   ErrorCode = "NOT_FOUND"
	ErrCodeBadRequest ErrorCode = "BAD_REQUEST"

	// Ошибки продажи номеров
	ErrCodeQuotaExceeded ErrorCode = "QUOTA_EXCEEDED"
	ErrCodeConflict      ErrorCode = "CONFLICT"
	ErrCodeStorage       ErrorCode = "STORAGE_ERROR"
	ErrCodeFatal         ErrorCode = "FATAL_ERROR"
)

// AppError представляет типизированную ошибку приложения
type AppError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Context   map[string]string      `json:"context,omitempty"`
	Stack     []string               `json:"-"`
	Timestamp time.Time              `json:"timestamp"`
	RequestID string                 `json:"request_id,omitempty"`
	Cause     error                  `json:"-"`
}

// Error возвращает строковое представление ошибки
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap возвращает причину ошибки
func (e *AppError) Unwrap() error {
	return e.Cause
}

// IsInternal проверяет, является ли ошибка внутренней ошибкой
func (e *AppError) IsInternal() bool {
	return e.Code == ErrCodeInternal
}

// Retryable reports whether the same request may simply be sent again.
// Only storage failures qualify: the number selection is still valid.
func (e *AppError) Retryable() bool {
	return e.Code == ErrCodeStorage
}

// RequiresRefresh reports whether the caller must reload the number pool
// and re-select before trying again.
func (e *AppError) RequiresRefresh() bool {
	return e.Code == ErrCodeConflict
}

// WithContext добавляет контекст к ошибке
func (e *AppError) WithContext(key, value string) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]string)
	}
	e.Context[key] = value
	return e
}

// WithDetail добавляет детальную информацию к ошибке
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithRequestID добавляет ID запроса к ошибке
func (e *AppError) WithRequestID(requestID string) *AppError {
	e.RequestID = requestID
	return e
}

// New создает новую ошибку приложения
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
		Stack:     getStackTrace(),
	}
}

// Wrap оборачивает существующую ошибку
func Wrap(err error, code ErrorCode, message string) *AppError {
	appErr := New(code, message)
	appErr.Cause = err
	return appErr
}

// Wrapf оборачивает существующую ошибку с форматированием
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *AppError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// getStackTrace возвращает стек вызовов
func getStackTrace() []string {
	var stack []string
	for i := 2; ; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}
		fn := runtime.FuncForPC(pc)
		if fn == nil {
			continue
		}
		if strings.Contains(fn.Name(), "internal/common/errors") {
			continue
		}
		stack = append(stack, fmt.Sprintf("%s:%d %s", file, line, fn.Name()))
		if len(stack) >= 10 {
			break
		}
	}
	return stack
}

// NewValidationError создает ошибку валидации
func NewValidationError(field, reason string) *AppError {
	return New(ErrCodeValidation, fmt.Sprintf("Validation failed for field '%s': %s", field, reason)).
		WithDetail("field", field).
		WithDetail("reason", reason)
}

// NewNotFoundError создает ошибку "не найдено"
func NewNotFoundError(resource, id interface{}) *AppError {
	return New(ErrCodeNotFound, fmt.Sprintf("%s not found", resource)).
		WithDetail("resource", resource).
		WithDetail("id", id)
}

// NewQuotaExceededError is returned when a selection or sale would take a
// seller past min(cant_max, remaining inventory).
func NewQuotaExceededError(limit, requested int) *AppError {
	return New(ErrCodeQuotaExceeded, fmt.Sprintf("Quota exceeded: %d more number(s) allowed, %d requested", limit, requested)).
		WithDetail("limit", limit).
		WithDetail("requested", requested)
}

// NewConflictError carries the exact numbers that are no longer available to
// the caller. The list is copied and sorted.
func NewConflictError(numbers []int) *AppError {
	sorted := append([]int(nil), numbers...)
	sort.Ints(sorted)
	return New(ErrCodeConflict, fmt.Sprintf("Numbers no longer available: %v", sorted)).
		WithDetail("numbers", sorted)
}

// NewStorageError wraps a proof upload or persistence failure.
func NewStorageError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeStorage, fmt.Sprintf("Storage operation failed: %s", operation)).
		WithDetail("operation", operation)
}

// NewFatalError reports a missing required identifier. Never retried.
func NewFatalError(reason string) *AppError {
	return New(ErrCodeFatal, reason).WithDetail("reason", reason)
}

// AsAppError приводит ошибку к AppError
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if err != nil && stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err is an AppError with the given code.
func HasCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}

func IsValidation(err error) bool    { return HasCode(err, ErrCodeValidation) }
func IsQuotaExceeded(err error) bool { return HasCode(err, ErrCodeQuotaExceeded) }
func IsConflict(err error) bool      { return HasCode(err, ErrCodeConflict) }
func IsStorage(err error) bool       { return HasCode(err, ErrCodeStorage) }
func IsFatal(err error) bool         { return HasCode(err, ErrCodeFatal) }
func IsNotFound(err error) bool      { return HasCode(err, ErrCodeNotFound) }

// ConflictNumbers returns the offending numbers of a conflict error, or nil.
func ConflictNumbers(err error) []int {
	appErr, ok := AsAppError(err)
	if !ok || appErr.Code != ErrCodeConflict {
		return nil
	}
	numbers, _ := appErr.Details["numbers"].([]int)
	return numbers
}
