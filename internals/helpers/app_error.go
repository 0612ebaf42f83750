// file: internals/helpers/app_error.go
package helper

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type ErrorKind string

const (
	KindValidation    ErrorKind = "validation"
	KindNotFound      ErrorKind = "not_found"
	KindAuthorization ErrorKind = "authorization"
	KindDuplicate     ErrorKind = "duplicate"
	KindRateLimited   ErrorKind = "rate_limited"
	KindSignature     ErrorKind = "signature"
	KindGateway       ErrorKind = "gateway"
	KindInternal      ErrorKind = "internal"
)

// AppError is what services return; controllers turn it into a response with JsonFromError.
type AppError struct {
	Kind    ErrorKind
	Message string
	Data    map[string]any // extra payload for the client (e.g. conflicting payment id)
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

func (e *AppError) Status() int {
	switch e.Kind {
	case KindValidation, KindSignature:
		return fiber.StatusBadRequest
	case KindNotFound:
		return fiber.StatusNotFound
	case KindAuthorization:
		return fiber.StatusForbidden
	case KindDuplicate:
		return fiber.StatusConflict
	case KindRateLimited:
		return fiber.StatusTooManyRequests
	default:
		return fiber.StatusInternalServerError
	}
}

func newErr(kind ErrorKind, format string, args ...any) *AppError {
	return &AppError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) *AppError { return newErr(KindValidation, format, args...) }
func NotFound(format string, args ...any) *AppError   { return newErr(KindNotFound, format, args...) }
func Forbidden(format string, args ...any) *AppError  { return newErr(KindAuthorization, format, args...) }
func Duplicate(format string, args ...any) *AppError  { return newErr(KindDuplicate, format, args...) }
func RateLimited(format string, args ...any) *AppError {
	return newErr(KindRateLimited, format, args...)
}
func Signature(format string, args ...any) *AppError { return newErr(KindSignature, format, args...) }

func Gateway(err error, format string, args ...any) *AppError {
	e := newErr(KindGateway, format, args...)
	e.Err = err
	return e
}

func Internal(err error, format string, args ...any) *AppError {
	e := newErr(KindInternal, format, args...)
	e.Err = err
	return e
}

// WithData attaches client-visible fields.
func (e *AppError) WithData(k string, v any) *AppError {
	if e.Data == nil {
		e.Data = map[string]any{}
	}
	e.Data[k] = v
	return e
}

// Wrap records err as the cause so errors.Is still matches it.
func (e *AppError) Wrap(err error) *AppError {
	e.Err = err
	return e
}

// KindOf returns the kind of err, KindInternal for anything that is not an AppError.
func KindOf(err error) ErrorKind {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

func IsKind(err error, kind ErrorKind) bool {
	var ae *AppError
	return errors.As(err, &ae) && ae.Kind == kind
}

// IsUniqueViolation recognises unique-constraint failures from postgres and sqlite.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}

// IsNotFound reports gorm's record-not-found.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
