// Package constants provides shared constant values used throughout the application.
//
// The defaults.go file defines default values and limits used throughout the application.
// These constants provide fallbacks for configuration settings and define
// security parameters. Changes to these values may significantly impact
// application behavior and security.
package constants

// Default Configuration Values define fallback settings when not specified in configuration.
const (
	// DefaultServerPort is the default HTTP server port.
	DefaultServerPort = 8080

	// DefaultDBMaxConnections is the default maximum number of database connections.
	DefaultDBMaxConnections = 20

	// DefaultDBMinConnections is the default number of idle database connections kept open.
	DefaultDBMinConnections = 5

	// DefaultDBPostgresPort is used when no port is configured and the driver is postgres.
	DefaultDBPostgresPort = 5432

	// DefaultDBMySQLPort is used when no port is configured and the driver is mysql.
	DefaultDBMySQLPort = 3306

	// DefaultLogLevel is the default logging verbosity level.
	DefaultLogLevel = "info"

	// DefaultLogFormat is the default logging output format.
	DefaultLogFormat = "json"

	// DefaultLogFilePattern is the strftime pattern appended to the log file path on rotation.
	DefaultLogFilePattern = ".%Y%m%d"

	// DefaultMailProvider delivers reset links to the log only.
	DefaultMailProvider = MailProviderLog

	// DefaultSendGridHost is the SendGrid API base URL.
	DefaultSendGridHost = "https://api.sendgrid.com"

	// DefaultMailFromName is the sender display name for outgoing mail.
	DefaultMailFromName = "Backoffice"

	// DefaultResetURL is the format of the link sent in password reset emails.
	// The first verb is the account kind, the second the token and the third the escaped email.
	DefaultResetURL = "http://localhost:8000/%s/auth/password/reset/%s?email=%s"

	// DefaultAdminName is the display name used when seeding the first administrator.
	DefaultAdminName = "Administrator"
)

// Mail providers able to deliver password reset links.
const (
	MailProviderLog      = "log"
	MailProviderSendGrid = "sendgrid"
)

// Environment Types define the recognized application running environments.
const (
	// EnvDevelopment identifies a development environment with debugging features enabled.
	EnvDevelopment = "development"

	// EnvTesting identifies a testing environment for automated tests.
	EnvTesting = "testing"

	// EnvProduction identifies a production environment with optimized settings.
	EnvProduction = "production"
)

// MaxRequestBodySize is the maximum size in bytes for HTTP request bodies.
const MaxRequestBodySize = 1048576 // 1MB in bytes

// Default Password Hash Settings define the parameters for password hashing.
const (
	// DefaultPasswordHashMemory is the memory cost parameter for Argon2id hashing.
	DefaultPasswordHashMemory = 64 * 1024

	// DefaultPasswordHashIterations is the number of iterations for Argon2id hashing.
	DefaultPasswordHashIterations = 3

	// DefaultPasswordHashParallelism is the parallelism parameter for Argon2id hashing.
	DefaultPasswordHashParallelism = 2

	// DefaultPasswordHashSaltLength is the length in bytes of the random salt.
	DefaultPasswordHashSaltLength = 16

	// DefaultPasswordHashKeyLength is the length in bytes of the generated hash.
	DefaultPasswordHashKeyLength = 32

	// DevPasswordHashMemory is a reduced memory setting for development environments.
	DevPasswordHashMemory = 16 * 1024

	// DevPasswordHashIterations is a reduced iteration count for development environments.
	DevPasswordHashIterations = 1
)

// Rate limiting defaults applied to the unauthenticated auth endpoints.
const (
	DefaultRateLimitRequestsPerSecond = 1.0
	DefaultRateLimitBurst             = 10
)

// Token Constants define values related to bearer token management.
const (
	// DefaultJWTIssuer is the issuer claim value for bearer tokens.
	DefaultJWTIssuer = "backoffice-auth"

	// BearerTokenPrefix is the prefix for Authorization header bearer tokens.
	BearerTokenPrefix = "Bearer "

	// DefaultTokenName is stored with every issued token, mirroring the login client name.
	DefaultTokenName = "auth_token"

	// ResetTokenBytes is the number of random bytes in a password reset token.
	ResetTokenBytes = 32
)
