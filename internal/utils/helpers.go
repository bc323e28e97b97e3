package utils

import (
	"strings"

	"github.com/yasinhessnawi1/backoffice-auth/internal/constants"
)

// NormalizeEmail trims surrounding whitespace and lower-cases the address so
// lookups and the per-kind uniqueness constraint agree.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// TruncateString shortens s to maxLen characters, ending in "...".
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// MaskEmail hides the local part of an address for logging, keeping its
// first and last character: john@example.com -> j**n@example.com.
func MaskEmail(email string) string {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return email
	}

	user := parts[0]
	domain := parts[1]

	if len(user) <= 2 {
		return strings.Repeat("*", len(user)) + "@" + domain
	}

	return string(user[0]) + strings.Repeat("*", len(user)-2) + string(user[len(user)-1]) + "@" + domain
}

// SanitizeKeys returns a copy of data with credential-bearing keys redacted.
func SanitizeKeys(data map[string]interface{}) map[string]interface{} {
	sensitiveKeys := map[string]bool{
		constants.ColumnPasswordHash: true,
		constants.ColumnTokenHash:    true,
		"password":                   true,
		"password_confirmation":      true,
		"token":                      true,
		"secret":                     true,
		"authorization":              true,
	}

	result := make(map[string]interface{}, len(data))
	for key, value := range data {
		if sensitiveKeys[strings.ToLower(key)] {
			result[key] = constants.LogRedactedValue
			continue
		}
		if nested, ok := value.(map[string]interface{}); ok {
			result[key] = SanitizeKeys(nested)
			continue
		}
		result[key] = value
	}

	return result
}
