// Package apperr defines the request fault taxonomy shared by all handlers.
package apperr

import (
	"errors"
	"fmt"
)

type Reason string

const (
	REASON_MISSING_FIELD     Reason = "MISSING_FIELD"
	REASON_INVALID_CODE      Reason = "INVALID_CODE"
	REASON_UNAUTHORIZED      Reason = "UNAUTHORIZED"
	REASON_INVALID_TOKEN     Reason = "INVALID_TOKEN"
	REASON_NOT_FOUND         Reason = "NOT_FOUND"
	REASON_STORE_UNAVAILABLE Reason = "STORE_UNAVAILABLE"
	REASON_DELIVERY_FAILED   Reason = "DELIVERY_FAILED"
)

type Error struct {
	Reason  Reason
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.Reason, e.Message)
	}
	return fmt.Sprintf("%s: %s. Cause: %s", e.Reason, e.Message, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func newError(reason Reason, message string, cause error) *Error {
	return &Error{
		Reason:  reason,
		Message: message,
		Cause:   cause,
	}
}

func NewMissingFieldError(field string) *Error {
	return newError(REASON_MISSING_FIELD, fmt.Sprintf("%s is required", field), nil)
}

func NewInvalidCodeError(message string) *Error {
	return newError(REASON_INVALID_CODE, message, nil)
}

func NewUnauthorizedError(message string) *Error {
	return newError(REASON_UNAUTHORIZED, message, nil)
}

func NewInvalidTokenError(message string, cause error) *Error {
	return newError(REASON_INVALID_TOKEN, message, cause)
}

func NewNotFoundError(message string) *Error {
	return newError(REASON_NOT_FOUND, message, nil)
}

func NewStoreUnavailableError(message string, cause error) *Error {
	return newError(REASON_STORE_UNAVAILABLE, message, cause)
}

func NewDeliveryFailedError(message string, cause error) *Error {
	return newError(REASON_DELIVERY_FAILED, message, cause)
}

// ReasonOf extracts the taxonomy reason from err, or "" when err is not an
// *Error.
func ReasonOf(err error) Reason {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Reason
	}
	return ""
}
