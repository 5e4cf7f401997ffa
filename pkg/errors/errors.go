package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code
type ErrorCode int

// AppError represents an application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
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

// Common error codes
const (
	ErrNotFound ErrorCode = iota + 1000
	ErrBadRequest
	ErrUnauthorized
	ErrForbidden
	ErrInternal
)

// Scheduling error codes. These are the outcomes the booking core is
// contractually allowed to return; handlers map them to HTTP statuses.
const (
	ErrInvalidDayOfWeek ErrorCode = iota + 2000
	ErrDuplicateSpecialDay
	ErrInvalidInterval
	ErrOutsideWorkingHours
	ErrSlotConflict
	ErrInvalidTransition
	ErrServiceLookup
	ErrDuplicatePayment
)

// Error constructors
func NewNotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Err:     err,
	}
}

func NewBadRequest(message string, err error) *AppError {
	return &AppError{
		Code:    ErrBadRequest,
		Message: message,
		Err:     err,
	}
}

func NewInternal(err error) *AppError {
	return &AppError{
		Code:    ErrInternal,
		Message: "internal server error",
		Err:     err,
	}
}

// Common errors
func NotFound(resource string, err error) *AppError {
	return NewNotFound(resource, err)
}

func BadRequest(message string, err error) *AppError {
	return NewBadRequest(message, err)
}

func Internal(err error) *AppError {
	return NewInternal(err)
}

func Unauthorized(err error) *AppError {
	return &AppError{
		Code:    ErrUnauthorized,
		Message: "unauthorized",
		Err:     err,
	}
}

// Scheduling errors

func InvalidDayOfWeek(day int) *AppError {
	return &AppError{
		Code:    ErrInvalidDayOfWeek,
		Message: fmt.Sprintf("day_of_week %d outside [0,6]", day),
	}
}

func DuplicateSpecialDay(date string) *AppError {
	return &AppError{
		Code:    ErrDuplicateSpecialDay,
		Message: fmt.Sprintf("special day already exists for %s", date),
	}
}

func InvalidInterval(message string) *AppError {
	return &AppError{
		Code:    ErrInvalidInterval,
		Message: message,
	}
}

func OutsideWorkingHours() *AppError {
	return &AppError{
		Code:    ErrOutsideWorkingHours,
		Message: "requested interval is outside the provider's working hours",
	}
}

func SlotConflict() *AppError {
	return &AppError{
		Code:    ErrSlotConflict,
		Message: "requested slot overlaps an existing appointment",
	}
}

func InvalidTransition(from, to string) *AppError {
	return &AppError{
		Code:    ErrInvalidTransition,
		Message: fmt.Sprintf("illegal status transition %s -> %s", from, to),
	}
}

func DuplicatePayment(appointmentID string) *AppError {
	return &AppError{
		Code:    ErrDuplicatePayment,
		Message: fmt.Sprintf("payment already exists for appointment %s", appointmentID),
	}
}

func ServiceLookup(err error) *AppError {
	return &AppError{
		Code:    ErrServiceLookup,
		Message: "failed to resolve billable services",
		Err:     err,
	}
}

// IsCode reports whether err is an AppError carrying the given code.
func IsCode(err error, code ErrorCode) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}
