// Package apperrors defines the closed set of error kinds the services
// return and the handlers map to HTTP status codes.
package apperrors

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// Kind identifies a category of application error.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindInvalidToken
)

// AppError is a typed error carrying a kind and a user-facing message.
type AppError struct {
	Kind    Kind
	Message string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	return e.Message
}

// StatusCode maps the error kind to an HTTP status code.
func (e *AppError) StatusCode() int {
	switch e.Kind {
	case KindValidation, KindInvalidToken:
		return fiber.StatusBadRequest
	case KindUnauthorized:
		return fiber.StatusUnauthorized
	case KindForbidden:
		return fiber.StatusForbidden
	case KindNotFound:
		return fiber.StatusNotFound
	case KindConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

func Validation(message string) *AppError {
	return &AppError{Kind: KindValidation, Message: message}
}

func Unauthorized(message string) *AppError {
	return &AppError{Kind: KindUnauthorized, Message: message}
}

func Forbidden(message string) *AppError {
	return &AppError{Kind: KindForbidden, Message: message}
}

func NotFound(message string) *AppError {
	return &AppError{Kind: KindNotFound, Message: message}
}

func Conflict(message string) *AppError {
	return &AppError{Kind: KindConflict, Message: message}
}

func InvalidToken(message string) *AppError {
	return &AppError{Kind: KindInvalidToken, Message: message}
}

func Internal(message string) *AppError {
	return &AppError{Kind: KindInternal, Message: message}
}

// From extracts an *AppError from err, wrapping unknown errors as Internal
// with a generic message so internals never leak to the client.
func From(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("Internal Server Error")
}

// IsKind reports whether err is an AppError of the given kind.
func IsKind(err error, kind Kind) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Kind == kind
}
