package constants

import "time"

// Server Timeouts
const (
	DefaultReadTimeout     = 5 * time.Second
	DefaultWriteTimeout    = 10 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
)

// Database Timeouts
const (
	DBConnectionTimeout   = 30 * time.Second
	DBQueryTimeout        = 15 * time.Second
	DBHealthCheckTimeout  = 5 * time.Second
	DBConnMaxLifetime     = 1 * time.Hour
	DBConnMaxIdleTime     = 30 * time.Minute
	DBMaintenanceInterval = 1 * time.Hour
)

// Password reset defaults
const (
	DefaultPasswordResetTTL      = 60 * time.Minute
	DefaultPasswordResetThrottle = 0
)

// Outbound mail
const (
	MailSendTimeout = 10 * time.Second
)

// Rate limiter bookkeeping
const (
	RateLimitCleanupInterval = 10 * time.Minute
	RateLimitIdleExpiry      = 30 * time.Minute
)

// Log file rotation
const (
	DefaultLogMaxAge       = 7 * 24 * time.Hour
	DefaultLogRotationTime = 24 * time.Hour
)
