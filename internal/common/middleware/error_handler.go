package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"raffle-sales-backend/internal/common/errors"
)

const requestIDKey = "request_id"

// ErrorHandler middleware для обработки ошибок
func ErrorHandler(logger zerolog.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		requestID := GetRequestID(c)

		// Логируем панику
		logger.Error().
			Str("request_id", requestID).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Interface("panic", recovered).
			Str("stack", string(debug.Stack())).
			Msg("Panic recovered")

		appErr := errors.New(errors.ErrCodeInternal, "Internal server error").
			WithDetail("panic", fmt.Sprintf("%v", recovered))

		SendError(c, appErr, logger)
	})
}

// RequestID middleware для добавления ID запроса
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set(requestIDKey, requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// ErrorResponse представляет ответ с ошибкой. Retryable means the same
// request may be sent again unchanged; RefreshRequired means the client must
// reload the numbers and re-select first.
type ErrorResponse struct {
	Success         bool             `json:"success"`
	Error           *errors.AppError `json:"error"`
	Retryable       bool             `json:"retryable"`
	RefreshRequired bool             `json:"refresh_required"`
	Timestamp       time.Time        `json:"timestamp"`
	RequestID       string           `json:"request_id"`
	Path            string           `json:"path,omitempty"`
	Method          string           `json:"method,omitempty"`
}

// SendError writes err as a JSON error response. Errors that are not
// AppErrors are reported as internal errors.
func SendError(c *gin.Context, err error, logger zerolog.Logger) {
	appErr, ok := errors.AsAppError(err)
	if !ok {
		appErr = errors.Wrap(err, errors.ErrCodeInternal, "Internal server error")
	}

	requestID := GetRequestID(c)
	appErr.WithRequestID(requestID).
		WithContext("path", c.Request.URL.Path).
		WithContext("method", c.Request.Method)

	statusCode := HTTPStatus(appErr)
	logError(appErr, statusCode, logger, c)

	c.AbortWithStatusJSON(statusCode, ErrorResponse{
		Success:         false,
		Error:           appErr,
		Retryable:       appErr.Retryable(),
		RefreshRequired: appErr.RequiresRefresh(),
		Timestamp:       time.Now(),
		RequestID:       requestID,
		Path:            c.Request.URL.Path,
		Method:          c.Request.Method,
	})
}

// HTTPStatus возвращает HTTP статус код для ошибки
func HTTPStatus(appErr *errors.AppError) int {
	switch appErr.Code {
	case errors.ErrCodeValidation, errors.ErrCodeBadRequest, errors.ErrCodeFatal:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeConflict:
		return http.StatusConflict
	case errors.ErrCodeQuotaExceeded:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeStorage:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// logError логирует ошибку с контекстом
func logError(appErr *errors.AppError, status int, logger zerolog.Logger, c *gin.Context) {
	var event *zerolog.Event
	switch {
	case status >= http.StatusInternalServerError:
		event = logger.Error()
	case appErr.Code == errors.ErrCodeFatal:
		event = logger.Warn()
	default:
		event = logger.Info()
	}

	event = event.
		Str("request_id", GetRequestID(c)).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Int("status", status).
		Str("error_code", string(appErr.Code)).
		Str("error_message", appErr.Message)
	if len(appErr.Details) > 0 {
		event = event.Interface("details", appErr.Details)
	}
	if appErr.Cause != nil {
		event = event.AnErr("cause", appErr.Cause)
	}
	event.Msg("Request failed")
}

// GetRequestID получает ID запроса из контекста
func GetRequestID(c *gin.Context) string {
	if requestID, exists := c.Get(requestIDKey); exists {
		if id, ok := requestID.(string); ok {
			return id
		}
	}
	return "unknown"
}
