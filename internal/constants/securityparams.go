package constants

// Account kinds. Each kind has its own table and password broker.
const (
	AccountKindCustomer = "customer"
	AccountKindAdmin    = "admin"
)

// Input limits
const (
	MinPasswordLength = 8
	MaxNameLength     = 255
	MaxEmailLength    = 255
)

// Password reset status keys returned by the broker.
const (
	ResetStatusSent         = "passwords.sent"
	ResetStatusReset        = "passwords.reset"
	ResetStatusInvalidUser  = "passwords.user"
	ResetStatusInvalidToken = "passwords.token"
	ResetStatusThrottled    = "passwords.throttled"
	ResetStatusNotSent      = "passwords.not_sent"
	ResetStatusConfirmation = "passwords.confirmation"
)

// Context Key Names, also used as log field names.
const (
	AccountIDContextKey   = "account_id"
	AccountKindContextKey = "account_kind"
	EmailContextKey       = "email"
	RequestIDContextKey   = "request_id"
)
