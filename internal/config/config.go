package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/yasinhessnawi1/backoffice-auth/internal/constants"
)

// AppConfig represents the entire application configuration
type AppConfig struct {
	App           AppSettings           `yaml:"app"`
	Database      DatabaseSettings      `yaml:"database"`
	Server        ServerSettings        `yaml:"server"`
	Tokens        TokenSettings         `yaml:"tokens"`
	PasswordReset PasswordResetSettings `yaml:"password_reset"`
	Mail          MailSettings          `yaml:"mail"`
	Logging       LoggingSettings       `yaml:"logging"`
	CORS          CORSSettings          `yaml:"cors"`
	RateLimit     RateLimitSettings     `yaml:"rate_limit"`
	PasswordHash  HashSettings          `yaml:"password_hash"`
	Maintenance   MaintenanceSettings   `yaml:"maintenance"`
	Admin         AdminSeedSettings     `yaml:"admin"`
}

// AppSettings contains general application settings
type AppSettings struct {
	Environment string `yaml:"environment" env:"APP_ENV"`
	Name        string `yaml:"name" env:"APP_NAME"`
	Version     string `yaml:"version" env:"APP_VERSION"`
}

// DatabaseSettings contains database connection settings
type DatabaseSettings struct {
	Driver   string `yaml:"driver" env:"DB_DRIVER"`
	Host     string `yaml:"host" env:"DB_HOST"`
	Port     int    `yaml:"port" env:"DB_PORT"`
	Name     string `yaml:"name" env:"DB_NAME"`
	User     string `yaml:"user" env:"DB_USER"`
	Password string `yaml:"password" env:"DB_PASSWORD"`
	SSLMode  string `yaml:"sslmode" env:"DB_SSLMODE"`
	MaxConns int    `yaml:"max_conns" env:"DB_MAX_CONNS"`
	MinConns int    `yaml:"min_conns" env:"DB_MIN_CONNS"`
}

// ServerSettings contains HTTP server settings
type ServerSettings struct {
	Host            string        `yaml:"host" env:"SERVER_HOST"`
	Port            int           `yaml:"port" env:"SERVER_PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT"`
}

// TokenSettings configures bearer token signing.
// A zero Expiry issues tokens that stay valid until revoked.
type TokenSettings struct {
	Secret string        `yaml:"secret" env:"TOKEN_SECRET"`
	Issuer string        `yaml:"issuer" env:"TOKEN_ISSUER"`
	Expiry time.Duration `yaml:"expiry" env:"TOKEN_EXPIRY"`
}

// PasswordResetSettings configures the password reset brokers.
type PasswordResetSettings struct {
	TTL      time.Duration `yaml:"ttl" env:"PASSWORD_RESET_TTL"`
	Throttle time.Duration `yaml:"throttle" env:"PASSWORD_RESET_THROTTLE"`
	ResetURL string        `yaml:"reset_url" env:"PASSWORD_RESET_URL"`
}

// MailSettings selects and configures the delivery channel for reset links.
type MailSettings struct {
	Provider       string `yaml:"provider" env:"MAIL_PROVIDER"`
	SendGridAPIKey string `yaml:"sendgrid_api_key" env:"SENDGRID_API_KEY"`
	SendGridHost   string `yaml:"sendgrid_host" env:"SENDGRID_HOST"`
	FromAddress    string `yaml:"from_address" env:"MAIL_FROM_ADDRESS"`
	FromName       string `yaml:"from_name" env:"MAIL_FROM_NAME"`
}

// LoggingSettings contains logging configuration
type LoggingSettings struct {
	Level        string        `yaml:"level" env:"LOG_LEVEL"`
	Format       string        `yaml:"format" env:"LOG_FORMAT"`
	RequestLog   bool          `yaml:"request_log" env:"LOG_REQUESTS"`
	FilePath     string        `yaml:"file_path" env:"LOG_FILE_PATH"`
	MaxAge       time.Duration `yaml:"max_age" env:"LOG_MAX_AGE"`
	RotationTime time.Duration `yaml:"rotation_time" env:"LOG_ROTATION_TIME"`
}

// CORSSettings contains CORS configuration
type CORSSettings struct {
	AllowedOrigins   []string `yaml:"allowed_origins" env:"ALLOWED_ORIGINS" env-separator:","`
	AllowCredentials bool     `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS"`
}

// RateLimitSettings configures the per-client limiter on the auth endpoints.
// Clients are keyed on the socket peer unless TrustProxyHeaders is set, which
// should only happen behind a proxy that overwrites X-Forwarded-For.
type RateLimitSettings struct {
	Enabled           bool    `yaml:"enabled" env:"RATE_LIMIT_ENABLED"`
	RequestsPerSecond float64 `yaml:"requests_per_second" env:"RATE_LIMIT_RPS"`
	Burst             int     `yaml:"burst" env:"RATE_LIMIT_BURST"`
	TrustProxyHeaders bool    `yaml:"trust_proxy_headers" env:"RATE_LIMIT_TRUST_PROXY_HEADERS"`
}

// HashSettings contains password hashing settings
type HashSettings struct {
	Memory      uint32 `yaml:"memory" env:"HASH_MEMORY"`
	Iterations  uint32 `yaml:"iterations" env:"HASH_ITERATIONS"`
	Parallelism uint8  `yaml:"parallelism" env:"HASH_PARALLELISM"`
	SaltLength  uint32 `yaml:"salt_length" env:"HASH_SALT_LENGTH"`
	KeyLength   uint32 `yaml:"key_length" env:"HASH_KEY_LENGTH"`
}

// MaintenanceSettings controls the background sweep of expired tickets and tokens.
type MaintenanceSettings struct {
	Interval time.Duration `yaml:"interval" env:"MAINTENANCE_INTERVAL"`
}

// AdminSeedSettings describes the administrator created by the seed command.
type AdminSeedSettings struct {
	Name     string `yaml:"name" env:"ADMIN_NAME"`
	Email    string `yaml:"email" env:"ADMIN_EMAIL"`
	Password string `yaml:"password" env:"ADMIN_PASSWORD"`
}

// ConnectionString returns the driver specific data source name.
func (dbs *DatabaseSettings) ConnectionString() string {
	if dbs.Driver == constants.DriverMySQL {
		// username:password@tcp(host:port)/dbname
		password := dbs.Password
		if password != "" {
			password = ":" + password
		}

		return fmt.Sprintf(
			"%s%s@tcp(%s:%d)/%s?parseTime=true&loc=UTC&charset=utf8mb4&collation=utf8mb4_unicode_ci",
			dbs.User, password, dbs.Host, dbs.Port, dbs.Name,
		)
	}

	dsn := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(dbs.User, dbs.Password),
		Host:   fmt.Sprintf("%s:%d", dbs.Host, dbs.Port),
		Path:   "/" + dbs.Name,
	}
	if dbs.Password == "" {
		dsn.User = url.User(dbs.User)
	}

	query := url.Values{}
	query.Set("sslmode", dbs.SSLMode)
	query.Set("connect_timeout", "15")
	dsn.RawQuery = query.Encode()

	return dsn.String()
}

// ServerAddress returns the complete server address
func (ss *ServerSettings) ServerAddress() string {
	return fmt.Sprintf("%s:%d", ss.Host, ss.Port)
}

// IsDevelopment checks if the application is running in development mode
func (as *AppSettings) IsDevelopment() bool {
	return strings.ToLower(as.Environment) == constants.EnvDevelopment
}

// IsProduction checks if the application is running in production mode
func (as *AppSettings) IsProduction() bool {
	return strings.ToLower(as.Environment) == constants.EnvProduction
}

// IsTesting checks if the application is running in testing mode
func (as *AppSettings) IsTesting() bool {
	return strings.ToLower(as.Environment) == constants.EnvTesting
}

// Load loads the configuration from a config file and environment variables
func Load(configPath string) (*AppConfig, error) {
	config := &AppConfig{}

	// Load configuration from file if it exists
	if _, err := os.Stat(configPath); err == nil {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}

		err = yaml.Unmarshal(data, config)
		if err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}

	// Override with environment variables
	if err := LoadEnv(config); err != nil {
		return nil, fmt.Errorf("error loading environment variables: %w", err)
	}

	setDefaults(config)

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logConfig(config)

	return config, nil
}

// setDefaults sets default values for any missing configuration
func setDefaults(config *AppConfig) {
	if config.App.Environment == "" {
		config.App.Environment = constants.EnvDevelopment
	}
	if config.App.Name == "" {
		config.App.Name = "backoffice-auth"
	}
	if config.App.Version == "" {
		config.App.Version = "1.0.0"
	}

	if config.Server.Host == "" {
		config.Server.Host = "127.0.0.1"
	}
	if config.Server.Port == 0 {
		config.Server.Port = constants.DefaultServerPort
	}
	if config.Server.ReadTimeout == 0 {
		config.Server.ReadTimeout = constants.DefaultReadTimeout
	}
	if config.Server.WriteTimeout == 0 {
		config.Server.WriteTimeout = constants.DefaultWriteTimeout
	}
	if config.Server.ShutdownTimeout == 0 {
		config.Server.ShutdownTimeout = constants.DefaultShutdownTimeout
	}

	// Database defaults
	if config.Database.Driver == "" {
		config.Database.Driver = constants.DriverPostgres
	}
	if config.Database.Host == "" {
		config.Database.Host = "localhost"
	}
	if config.Database.Port == 0 {
		if config.Database.Driver == constants.DriverMySQL {
			config.Database.Port = constants.DefaultDBMySQLPort
		} else {
			config.Database.Port = constants.DefaultDBPostgresPort
		}
	}
	if config.Database.SSLMode == "" {
		config.Database.SSLMode = constants.PostgresSSLDisable
	}
	if config.Database.MaxConns == 0 {
		config.Database.MaxConns = constants.DefaultDBMaxConnections
	}
	if config.Database.MinConns == 0 {
		config.Database.MinConns = constants.DefaultDBMinConnections
	}

	// Token defaults
	if config.Tokens.Issuer == "" {
		config.Tokens.Issuer = constants.DefaultJWTIssuer
	}

	// Password reset defaults
	if config.PasswordReset.TTL == 0 {
		config.PasswordReset.TTL = constants.DefaultPasswordResetTTL
	}
	if config.PasswordReset.ResetURL == "" {
		config.PasswordReset.ResetURL = constants.DefaultResetURL
	}

	// Mail defaults. Production has to name its provider.
	if config.Mail.Provider == "" && (config.App.IsDevelopment() || config.App.IsTesting()) {
		config.Mail.Provider = constants.DefaultMailProvider
	}
	if config.Mail.FromName == "" {
		config.Mail.FromName = constants.DefaultMailFromName
	}
	if config.Mail.SendGridHost == "" {
		config.Mail.SendGridHost = constants.DefaultSendGridHost
	}

	// Logging defaults
	if config.Logging.Level == "" {
		config.Logging.Level = constants.DefaultLogLevel
	}
	if config.Logging.Format == "" {
		config.Logging.Format = constants.DefaultLogFormat
	}
	if config.Logging.MaxAge == 0 {
		config.Logging.MaxAge = constants.DefaultLogMaxAge
	}
	if config.Logging.RotationTime == 0 {
		config.Logging.RotationTime = constants.DefaultLogRotationTime
	}

	// CORS defaults
	if len(config.CORS.AllowedOrigins) == 0 {
		config.CORS.AllowedOrigins = []string{"*"}
	}

	// Rate limit defaults
	if config.RateLimit.RequestsPerSecond == 0 {
		config.RateLimit.RequestsPerSecond = constants.DefaultRateLimitRequestsPerSecond
	}
	if config.RateLimit.Burst == 0 {
		config.RateLimit.Burst = constants.DefaultRateLimitBurst
	}

	// Password hash defaults
	if config.PasswordHash.Memory == 0 {
		// Lower for development, higher for production
		if config.App.IsProduction() {
			config.PasswordHash.Memory = constants.DefaultPasswordHashMemory
		} else {
			config.PasswordHash.Memory = constants.DevPasswordHashMemory
		}
	}
	if config.PasswordHash.Iterations == 0 {
		if config.App.IsProduction() {
			config.PasswordHash.Iterations = constants.DefaultPasswordHashIterations
		} else {
			config.PasswordHash.Iterations = constants.DevPasswordHashIterations
		}
	}
	if config.PasswordHash.Parallelism == 0 {
		config.PasswordHash.Parallelism = constants.DefaultPasswordHashParallelism
	}
	if config.PasswordHash.SaltLength == 0 {
		config.PasswordHash.SaltLength = constants.DefaultPasswordHashSaltLength
	}
	if config.PasswordHash.KeyLength == 0 {
		config.PasswordHash.KeyLength = constants.DefaultPasswordHashKeyLength
	}

	if config.Maintenance.Interval == 0 {
		config.Maintenance.Interval = constants.DBMaintenanceInterval
	}

	if config.Admin.Name == "" {
		config.Admin.Name = constants.DefaultAdminName
	}
}

// validateConfig validates that the configuration has all required values
func validateConfig(config *AppConfig) error {
	env := strings.ToLower(config.App.Environment)
	if env != constants.EnvDevelopment && env != constants.EnvTesting && env != constants.EnvProduction {
		log.Warn().Str("environment", config.App.Environment).Msg("Invalid environment, defaulting to development")
		config.App.Environment = constants.EnvDevelopment
	}

	switch config.Database.Driver {
	case constants.DriverPostgres, constants.DriverMySQL:
	default:
		return fmt.Errorf("unsupported database driver: %s", config.Database.Driver)
	}

	if config.App.IsProduction() {
		if config.Tokens.Secret == "" || config.Tokens.Secret == "changeme" {
			return fmt.Errorf("token secret must be set in production")
		}
		if config.Database.User == "" {
			return fmt.Errorf("database user must be set")
		}
	}

	// Outside production an ephemeral secret keeps the service usable;
	// issued tokens stop verifying after a restart.
	if config.Tokens.Secret == "" {
		secret, err := randomSecret()
		if err != nil {
			return fmt.Errorf("failed to generate token secret: %w", err)
		}
		config.Tokens.Secret = secret
		log.Warn().Msg("No token secret configured, using an ephemeral secret")
	}

	switch config.Mail.Provider {
	case "":
		if config.App.IsProduction() {
			return fmt.Errorf("mail provider must be set in production")
		}
		config.Mail.Provider = constants.DefaultMailProvider
	case constants.MailProviderLog:
	case constants.MailProviderSendGrid:
		if config.Mail.SendGridAPIKey == "" {
			return fmt.Errorf("sendgrid api key must be set when mail provider is sendgrid")
		}
		if config.Mail.FromAddress == "" {
			return fmt.Errorf("mail from address must be set when mail provider is sendgrid")
		}
	default:
		return fmt.Errorf("unsupported mail provider: %s", config.Mail.Provider)
	}

	if strings.Count(config.PasswordReset.ResetURL, "%s") != 3 {
		return fmt.Errorf("password reset url must contain three %%s verbs (kind, token, email)")
	}

	if config.PasswordReset.Throttle < 0 || config.PasswordReset.Throttle >= config.PasswordReset.TTL {
		return fmt.Errorf("password reset throttle must be between 0 and the ticket ttl")
	}

	logLevel := strings.ToLower(config.Logging.Level)
	validLevels := []string{"debug", "info", "warn", "error", "fatal", "panic"}
	validLevel := false
	for _, level := range validLevels {
		if logLevel == level {
			validLevel = true
			break
		}
	}
	if !validLevel {
		return fmt.Errorf("invalid log level: %s", config.Logging.Level)
	}

	return nil
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// logConfig logs the current configuration, masking sensitive values
func logConfig(config *AppConfig) {
	logCfg := *config

	if logCfg.Database.Password != "" {
		logCfg.Database.Password = constants.LogRedactedValue
	}
	if logCfg.Tokens.Secret != "" {
		logCfg.Tokens.Secret = constants.LogRedactedValue
	}
	if logCfg.Mail.SendGridAPIKey != "" {
		logCfg.Mail.SendGridAPIKey = constants.LogRedactedValue
	}
	if logCfg.Admin.Password != "" {
		logCfg.Admin.Password = constants.LogRedactedValue
	}

	log.Info().
		Str("environment", logCfg.App.Environment).
		Str("version", logCfg.App.Version).
		Str("server", logCfg.Server.ServerAddress()).
		Str("db_driver", logCfg.Database.Driver).
		Str("db_host", logCfg.Database.Host).
		Int("db_port", logCfg.Database.Port).
		Str("db_name", logCfg.Database.Name).
		Str("mail_provider", logCfg.Mail.Provider).
		Dur("reset_ttl", logCfg.PasswordReset.TTL).
		Str("log_level", logCfg.Logging.Level).
		Msg("Configuration loaded")
}
