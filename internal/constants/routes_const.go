package constants

// Base Routes
const (
	APIBasePath = "/api/v1"
	HealthPath  = "/health"
	VersionPath = "/version"
)

// Auth route groups, one per account kind.
const (
	CustomerAuthBasePath = "/api/v1/customer/auth"
	AdminAuthBasePath    = "/api/v1/admin/auth"
)

// Auth routes relative to the account kind group.
const (
	AuthRegisterPath = "/register"
	AuthLoginPath    = "/login"
	AuthLogoutPath   = "/logout"
	AuthForgotPath   = "/forgot"
	AuthResetPath    = "/reset"
	AuthMePath       = "/me"
)
