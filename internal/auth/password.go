package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"

	"github.com/yasinhessnawi1/backoffice-auth/internal/config"
	"github.com/yasinhessnawi1/backoffice-auth/internal/constants"
)

// ErrUnsupportedHash is returned for a stored hash in an unknown format.
var ErrUnsupportedHash = errors.New("unsupported password hash format")

const argon2idPrefix = "$argon2id$"

// PasswordConfig holds the parameters for the Argon2id password hashing algorithm
type PasswordConfig struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultPasswordConfig returns the default configuration for password hashing
func DefaultPasswordConfig() *PasswordConfig {
	return &PasswordConfig{
		Memory:      constants.DefaultPasswordHashMemory,
		Iterations:  constants.DefaultPasswordHashIterations,
		Parallelism: constants.DefaultPasswordHashParallelism,
		SaltLength:  constants.DefaultPasswordHashSaltLength,
		KeyLength:   constants.DefaultPasswordHashKeyLength,
	}
}

// ConfigFromAppConfig creates a password config from the application config.
// Unset parameters keep their production defaults.
func ConfigFromAppConfig(cfg *config.AppConfig) *PasswordConfig {
	params := DefaultPasswordConfig()
	if cfg.PasswordHash.Memory != 0 {
		params.Memory = cfg.PasswordHash.Memory
	}
	if cfg.PasswordHash.Iterations != 0 {
		params.Iterations = cfg.PasswordHash.Iterations
	}
	if cfg.PasswordHash.Parallelism != 0 {
		params.Parallelism = cfg.PasswordHash.Parallelism
	}
	if cfg.PasswordHash.SaltLength != 0 {
		params.SaltLength = cfg.PasswordHash.SaltLength
	}
	if cfg.PasswordHash.KeyLength != 0 {
		params.KeyLength = cfg.PasswordHash.KeyLength
	}
	return params
}

// HashPassword hashes password with Argon2id and returns it in the PHC string
// format, $argon2id$v=19$m=65536,t=3,p=2$<salt>$<hash>, so the parameters
// travel with the hash.
func HashPassword(password string, cfg *PasswordConfig) (string, error) {
	salt, err := GenerateRandomBytes(cfg.SaltLength)
	if err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	hash := argon2.IDKey([]byte(password), salt, cfg.Iterations, cfg.Memory, cfg.Parallelism, cfg.KeyLength)

	return fmt.Sprintf("%sv=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2idPrefix,
		argon2.Version,
		cfg.Memory,
		cfg.Iterations,
		cfg.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	), nil
}

// VerifyPassword reports whether password matches the stored hash.
// Argon2id hashes and bcrypt hashes ($2a$, $2b$, $2y$) written by earlier
// deployments are both accepted.
func VerifyPassword(password, encoded string) (bool, error) {
	switch {
	case strings.HasPrefix(encoded, argon2idPrefix):
		params, salt, hash, err := decodeArgon2id(encoded)
		if err != nil {
			return false, err
		}
		comparison := argon2.IDKey([]byte(password), salt, params.Iterations, params.Memory, params.Parallelism, uint32(len(hash)))
		return subtle.ConstantTimeCompare(hash, comparison) == 1, nil

	case isBcrypt(encoded):
		// $2y$ is the PHP spelling of $2a$; the digests are identical.
		normalized := strings.Replace(encoded, "$2y$", "$2a$", 1)
		err := bcrypt.CompareHashAndPassword([]byte(normalized), []byte(password))
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("failed to verify bcrypt hash: %w", err)
		}
		return true, nil

	default:
		return false, ErrUnsupportedHash
	}
}

// NeedsRehash reports whether encoded was produced with other parameters than
// cfg, or with another algorithm.
func NeedsRehash(encoded string, cfg *PasswordConfig) bool {
	if !strings.HasPrefix(encoded, argon2idPrefix) {
		return true
	}

	params, salt, hash, err := decodeArgon2id(encoded)
	if err != nil {
		return true
	}

	return params.Memory != cfg.Memory ||
		params.Iterations != cfg.Iterations ||
		params.Parallelism != cfg.Parallelism ||
		uint32(len(salt)) != cfg.SaltLength ||
		uint32(len(hash)) != cfg.KeyLength
}

func decodeArgon2id(encoded string) (*PasswordConfig, []byte, []byte, error) {
	// "", "argon2id", "v=19", "m=..,t=..,p=..", salt, hash
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 {
		return nil, nil, nil, ErrUnsupportedHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to parse hash version: %w", err)
	}
	if version != argon2.Version {
		return nil, nil, nil, fmt.Errorf("incompatible argon2 version %d", version)
	}

	params := &PasswordConfig{}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &params.Memory, &params.Iterations, &params.Parallelism); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to parse hash parameters: %w", err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to decode salt: %w", err)
	}

	hash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to decode hash: %w", err)
	}

	params.SaltLength = uint32(len(salt))
	params.KeyLength = uint32(len(hash))
	return params, salt, hash, nil
}

func isBcrypt(encoded string) bool {
	return strings.HasPrefix(encoded, "$2a$") ||
		strings.HasPrefix(encoded, "$2b$") ||
		strings.HasPrefix(encoded, "$2y$")
}

// GenerateRandomBytes generates cryptographically secure random bytes
func GenerateRandomBytes(length uint32) ([]byte, error) {
	b := make([]byte, length)
	_, err := rand.Read(b)
	if err != nil {
		return nil, fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return b, nil
}

// GenerateRandomToken returns length random bytes, hex encoded.
func GenerateRandomToken(length uint32) (string, error) {
	b, err := GenerateRandomBytes(length)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// HashToken returns the hex SHA-256 digest under which a token is stored.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// TokensMatch compares a presented token against a stored digest in constant time.
func TokensMatch(token, storedHash string) bool {
	return subtle.ConstantTimeCompare([]byte(HashToken(token)), []byte(storedHash)) == 1
}
