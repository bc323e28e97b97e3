// Package utils provides the error taxonomy, the response envelope, request
// validation and logging helpers shared by every layer of the service.
package utils

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"

	"github.com/yasinhessnawi1/backoffice-auth/internal/constants"
)

// Standard error types that can be used for error checking
var (
	ErrNotFound                = errors.New("resource not found")
	ErrUnauthorized            = errors.New("unauthorized access")
	ErrBadRequest              = errors.New("invalid request")
	ErrInternalServer          = errors.New("internal server error")
	ErrValidation              = errors.New("validation error")
	ErrDuplicate               = errors.New("duplicate resource")
	ErrDuplicateEmail          = errors.New("email already registered")
	ErrInvalidCredentials      = errors.New("invalid credentials")
	ErrUnknownEmail            = errors.New("no account matches the email")
	ErrInvalidOrExpiredTicket  = errors.New("password reset ticket is invalid or expired")
	ErrConfirmationMismatch    = errors.New("password confirmation does not match")
	ErrTokenCreationFailed     = errors.New("could not create token")
	ErrUnableToSendResetLink   = errors.New("unable to send reset link")
	ErrRequestProcessingFailed = errors.New("failed to process request")
	ErrTooManyRequests         = errors.New("too many requests")
)

// ValidationErrors maps a request field to its messages, in the order the
// rules failed.
type ValidationErrors map[string][]string

// Add appends a message for field.
func (v ValidationErrors) Add(field, message string) {
	v[field] = append(v[field], message)
}

// Has reports whether field already failed a rule.
func (v ValidationErrors) Has(field string) bool {
	return len(v[field]) > 0
}

// AppError represents an application-specific error with HTTP status code.
// Details, when set, becomes the `data` member of the error envelope.
type AppError struct {
	Err        error       // The underlying error
	StatusCode int         // HTTP status code
	Message    string      // User-facing message
	DevInfo    string      // Cause, logged but never sent
	Details    interface{} // Structured detail for the client
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.DevInfo != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.DevInfo)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError with the given parameters.
func New(err error, statusCode int, message string) *AppError {
	return &AppError{
		Err:        err,
		StatusCode: statusCode,
		Message:    message,
	}
}

// NewValidationErrors creates the 422 error carrying per-field messages.
func NewValidationErrors(fields ValidationErrors) *AppError {
	return &AppError{
		Err:        ErrValidation,
		StatusCode: http.StatusUnprocessableEntity,
		Message:    constants.MsgValidationError,
		Details:    fields,
	}
}

// NewValidationError creates a 422 error for a single field.
func NewValidationError(field, message string) *AppError {
	return NewValidationErrors(ValidationErrors{field: {message}})
}

// NewDuplicateEmailError reports a taken email as a validation failure.
func NewDuplicateEmailError() *AppError {
	appErr := NewValidationError("email", fmt.Sprintf(constants.MsgFieldTaken, "email"))
	appErr.Err = ErrDuplicateEmail
	return appErr
}

// NewBadRequestError creates a new bad request error.
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Err:        ErrBadRequest,
		StatusCode: http.StatusBadRequest,
		Message:    message,
	}
}

// NewNotFoundError creates a new not found error.
func NewNotFoundError(resourceType string, identifier interface{}) *AppError {
	return &AppError{
		Err:        ErrNotFound,
		StatusCode: http.StatusNotFound,
		Message:    constants.MsgResourceNotFound,
		DevInfo:    fmt.Sprintf("%s with identifier '%v' not found", resourceType, identifier),
	}
}

// NewUnauthorizedError creates a new unauthorized error.
func NewUnauthorizedError(message string) *AppError {
	if message == "" {
		message = constants.MsgAuthRequired
	}
	return &AppError{
		Err:        ErrUnauthorized,
		StatusCode: http.StatusUnauthorized,
		Message:    message,
	}
}

// NewInvalidCredentialsError is returned for an unknown email and for a wrong
// password alike.
func NewInvalidCredentialsError() *AppError {
	return &AppError{
		Err:        ErrInvalidCredentials,
		StatusCode: http.StatusUnauthorized,
		Message:    constants.MsgInvalidCredentials,
	}
}

// NewTokenCreationError wraps a failure while persisting an account or its token.
func NewTokenCreationError(cause error) *AppError {
	return &AppError{
		Err:        ErrTokenCreationFailed,
		StatusCode: http.StatusInternalServerError,
		Message:    constants.MsgCouldNotCreateToken,
		DevInfo:    causeText(cause),
	}
}

// NewUnableToSendResetLinkError reports a broker status other than "sent".
func NewUnableToSendResetLinkError(status string) *AppError {
	return &AppError{
		Err:        ErrUnableToSendResetLink,
		StatusCode: http.StatusInternalServerError,
		Message:    constants.MsgUnableToSendReset,
		DevInfo:    status,
	}
}

// NewRequestProcessingError reports a failure raised by the delivery channel.
// The cause is echoed in the envelope as data.error.
func NewRequestProcessingError(cause error) *AppError {
	return &AppError{
		Err:        ErrRequestProcessingFailed,
		StatusCode: http.StatusInternalServerError,
		Message:    constants.MsgFailedToProcess,
		DevInfo:    causeText(cause),
		Details:    map[string]string{"error": causeText(cause)},
	}
}

// NewTooManyRequestsError is returned by the rate limiter.
func NewTooManyRequestsError() *AppError {
	return &AppError{
		Err:        ErrTooManyRequests,
		StatusCode: http.StatusTooManyRequests,
		Message:    constants.MsgTooManyRequests,
	}
}

// NewInternalServerError creates a new internal server error.
func NewInternalServerError(err error) *AppError {
	return &AppError{
		Err:        ErrInternalServer,
		StatusCode: http.StatusInternalServerError,
		Message:    constants.MsgInternalServerError,
		DevInfo:    causeText(err),
	}
}

func causeText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// IsUniqueViolation reports whether err is a unique-constraint violation
// raised by either supported driver.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == constants.PGErrorDuplicateConstraint
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == constants.MySQLErrorDuplicateEntry
	}

	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, constants.DBErrorDuplicateKey) || strings.Contains(errMsg, "unique constraint")
}

// ParseError converts any error into an AppError.
func ParseError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, ErrDuplicateEmail):
		return NewDuplicateEmailError()
	case errors.Is(err, ErrInvalidCredentials):
		return NewInvalidCredentialsError()
	case errors.Is(err, ErrUnauthorized):
		return NewUnauthorizedError("")
	case errors.Is(err, ErrNotFound):
		return NewNotFoundError("Resource", "")
	case errors.Is(err, ErrBadRequest):
		return NewBadRequestError(err.Error())
	case errors.Is(err, ErrTooManyRequests):
		return NewTooManyRequestsError()
	}

	if IsUniqueViolation(err) {
		return &AppError{
			Err:        ErrDuplicate,
			StatusCode: http.StatusConflict,
			Message:    "A resource with the same unique identifier already exists",
			DevInfo:    err.Error(),
		}
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == constants.PGErrorForeignKeyConstraint {
		return &AppError{
			Err:        ErrBadRequest,
			StatusCode: http.StatusBadRequest,
			Message:    "This operation violates a foreign key constraint",
			DevInfo:    pqErr.Error(),
		}
	}

	return NewInternalServerError(err)
}

// IsNotFoundError checks if an error is a not found error.
func IsNotFoundError(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode == http.StatusNotFound
	}
	return errors.Is(err, ErrNotFound)
}
