// Package constants provides shared constant values used throughout the application.
//
// The errorcodes.go file defines the user-facing messages written into the
// response envelope and the log categories used by the auth helpers.
package constants

// Envelope messages returned by the auth endpoints.
const (
	MsgRegistered          = "Registered successfully"
	MsgLoggedIn            = "Logged in successfully"
	MsgLoggedOut           = "Logged out successfully"
	MsgResetLinkSent       = "Password reset link sent to your email"
	MsgAuthenticated       = "Authenticated account"
	MsgValidationError     = "Validation Error"
	MsgInvalidCredentials  = "Invalid credentials"
	MsgCouldNotCreateToken = "Could not create token"
	MsgUnableToSendReset   = "Unable to send reset link"
	MsgFailedToProcess     = "Failed to process request"
)

// Generic messages used by middleware and fallbacks.
const (
	MsgAuthRequired        = "Unauthenticated."
	MsgInternalServerError = "An internal server error occurred"
	MsgRequestBodyTooLarge = "Request body too large"
	MsgEmptyRequestBody    = "Request body must not be empty"
	MsgMalformedJSON       = "Request body contains malformed JSON"
	MsgResourceNotFound    = "The requested resource could not be found"
	MsgMethodNotAllowed    = "This method is not allowed for this resource"
	MsgTooManyRequests     = "Too Many Attempts."
	MsgServiceUnavailable  = "Service unavailable"
)

// Password reset status messages, keyed by the broker status.
const (
	MsgResetSent         = "We have emailed your password reset link."
	MsgResetDone         = "Your password has been reset."
	MsgResetInvalidUser  = "We can't find a user with that email address."
	MsgResetInvalidToken = "This password reset token is invalid."
	MsgResetThrottled    = "Please wait before retrying."
	MsgResetNotSent      = "The password reset link could not be sent."
)

// Field-level validation messages. The verb is replaced by the field name.
const (
	MsgFieldRequired     = "The %s field is required."
	MsgFieldString       = "The %s field must be a string."
	MsgFieldEmail        = "The %s field must be a valid email address."
	MsgFieldMax          = "The %s field must not be greater than %s characters."
	MsgFieldMin          = "The %s field must be at least %s characters."
	MsgFieldInvalid      = "The %s field is invalid."
	MsgFieldTaken        = "The %s has already been taken."
	MsgFieldNotFound     = "The selected %s is invalid."
	MsgFieldConfirmation = "The %s field confirmation does not match."
)

// Log categories and events written by the auth helpers.
const (
	LogCategoryAuth = "auth"

	LogEventLogin = "login"

	LogEventRegister = "register"

	LogEventLogout = "logout"

	LogEventPasswordResetRequest = "password_reset_request"

	LogEventPasswordReset = "password_reset"

	LogRedactedValue = "[REDACTED]"

	// LogMaxUserAgentLength bounds the user agent written to request logs.
	LogMaxUserAgentLength = 256
)
