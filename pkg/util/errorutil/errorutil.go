package errorutil

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
)

// Error codes returned to callers.
const (
	CodeValidationFailed   = "VALIDATION_FAILED"
	CodeNotFound           = "NOT_FOUND"
	CodeConflict           = "CONFLICT"
	CodePreconditionFailed = "PRECONDITION_FAILED"
	CodePersistenceFailed  = "PERSISTENCE_FAILED"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeInternal           = "INTERNAL_ERROR"
)

// Reasons refine a code so callers can branch without parsing messages.
const (
	ReasonInvalidFormat        = "InvalidFormat"
	ReasonMissingPhone         = "MissingPhone"
	ReasonMissingCallType      = "MissingCallType"
	ReasonInvalidRating        = "InvalidRating"
	ReasonInvalidInput         = "InvalidInput"
	ReasonCustomerNotFound     = "CustomerNotFound"
	ReasonComplaintNotFound    = "ComplaintNotFound"
	ReasonProductNotFound      = "ProductNotFound"
	ReasonCategoryNotFound     = "CategoryNotFound"
	ReasonSessionNotFound      = "SessionNotFound"
	ReasonSurveyNotFound       = "SurveyNotFound"
	ReasonUsernameTaken        = "UsernameTaken"
	ReasonPhoneTaken           = "PhoneTaken"
	ReasonAlreadySubmitted     = "AlreadySubmitted"
	ReasonAlreadyEnded         = "AlreadyEnded"
	ReasonAlreadyClosed        = "AlreadyClosed"
	ReasonComplaintNotClosed   = "ComplaintNotClosed"
	ReasonNoStaffAvailable     = "NoStaffAvailable"
	ReasonNoPriorityConfigured = "NoPriorityConfigured"
	ReasonNoStatusConfigured   = "NoStatusConfigured"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Reason     string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, reason, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Reason: reason, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(reason, message string, details map[string]any) error {
	return NewDomainError(CodeValidationFailed, reason, message, http.StatusBadRequest, details)
}

func NewNotFound(reason, resource string, details map[string]any) error {
	return NewDomainError(CodeNotFound, reason, fmt.Sprintf("%s not found", resource), http.StatusNotFound, details)
}

func NewConflict(reason, message string, details map[string]any) error {
	return NewDomainError(CodeConflict, reason, message, http.StatusConflict, details)
}

func NewPreconditionFailed(reason, message string, details map[string]any) error {
	return NewDomainError(CodePreconditionFailed, reason, message, http.StatusPreconditionFailed, details)
}

func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthorized, "", message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError(CodeForbidden, "", message, http.StatusForbidden, nil)
}

// NewPersistenceFailed wraps a storage error raised inside an atomic unit.
func NewPersistenceFailed(op string, err error) error {
	return &DomainError{
		Code:       CodePersistenceFailed,
		Message:    op + " failed",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return NewDomainError(CodeNotFound, "", "resource not found", http.StatusNotFound, nil)
	}
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// MapError keeps domain errors intact and wraps everything else as a
// persistence failure of op.
func MapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return NewPersistenceFailed(op, err)
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code string) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr) && domainErr.Code == code
}

// IsReason reports whether err carries the given reason.
func IsReason(err error, reason string) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr) && domainErr.Reason == reason
}
