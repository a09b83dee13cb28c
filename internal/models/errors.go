package models

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// ErrorResponse represents a standardized API error response
type ErrorResponse struct {
	Error        string `json:"error"`
	Code         string `json:"code,omitempty"`
	RetryAfterMs int64  `json:"retryAfterMs,omitempty"`
}

// AppError represents a custom application error
type AppError struct {
	Code         string
	Message      string
	RetryAfterMs int64
	Err          error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Predefined error constructors
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s not found", resource),
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    "VALIDATION_ERROR",
		Message: message,
	}
}

func NewRateLimitError(action string, retryAfterMs int64) *AppError {
	return &AppError{
		Code:         "RATE_LIMITED",
		Message:      fmt.Sprintf("%s rate limit exceeded", action),
		RetryAfterMs: retryAfterMs,
	}
}

func NewOriginDeniedError() *AppError {
	return &AppError{
		Code:    "ORIGIN_DENIED",
		Message: "cors denied",
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: "internal server error",
		Err:     err,
	}
}

// IsNotFound reports whether err is (or wraps) a NOT_FOUND AppError.
func IsNotFound(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == "NOT_FOUND"
}

// RespondWithError creates a standardized error response. Internal errors are
// logged by the caller; the client only ever sees the generic message.
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	var response ErrorResponse

	var appErr *AppError
	if errors.As(err, &appErr) {
		response = ErrorResponse{
			Error:        appErr.Message,
			Code:         appErr.Code,
			RetryAfterMs: appErr.RetryAfterMs,
		}
	} else {
		response = ErrorResponse{
			Error: "internal server error",
			Code:  "INTERNAL_ERROR",
		}
	}

	return c.Status(status).JSON(response)
}
