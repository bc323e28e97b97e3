package auth_test

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/yasinhessnawi1/backoffice-auth/internal/auth"
	"github.com/yasinhessnawi1/backoffice-auth/internal/config"
)

// fastPasswordConfig keeps hashing cheap in tests.
func fastPasswordConfig() *auth.PasswordConfig {
	return &auth.PasswordConfig{
		Memory:      1024,
		Iterations:  1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	}
}

func TestHashPassword(t *testing.T) {
	cfg := fastPasswordConfig()

	hash, err := auth.HashPassword("password123", cfg)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	if !strings.HasPrefix(hash, "$argon2id$v=19$m=1024,t=1,p=1$") {
		t.Errorf("Unexpected hash format: %s", hash)
	}

	other, err := auth.HashPassword("password123", cfg)
	if err != nil {
		t.Fatal(err)
	}
	if hash == other {
		t.Error("Expected distinct salts to yield distinct hashes")
	}
}

func TestVerifyPassword(t *testing.T) {
	cfg := fastPasswordConfig()
	hash, err := auth.HashPassword("password123", cfg)
	if err != nil {
		t.Fatal(err)
	}

	legacy, err := bcrypt.GenerateFromPassword([]byte("legacy-pass"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	phpLegacy := strings.Replace(string(legacy), "$2a$", "$2y$", 1)

	tests := []struct {
		name     string
		password string
		encoded  string
		want     bool
		wantErr  bool
	}{
		{"Argon2id match", "password123", hash, true, false},
		{"Argon2id mismatch", "wrong", hash, false, false},
		{"Bcrypt match", "legacy-pass", string(legacy), true, false},
		{"Bcrypt 2y match", "legacy-pass", phpLegacy, true, false},
		{"Bcrypt mismatch", "wrong", string(legacy), false, false},
		{"Unknown format", "password123", "plaintext", false, true},
		{"Corrupt argon2id", "password123", "$argon2id$v=19$m=1024", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := auth.VerifyPassword(tt.password, tt.encoded)
			if (err != nil) != tt.wantErr {
				t.Fatalf("VerifyPassword() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("VerifyPassword() = %v, want %v", got, tt.want)
			}
		})
	}

	if _, err := auth.VerifyPassword("x", "plaintext"); !errors.Is(err, auth.ErrUnsupportedHash) {
		t.Errorf("Expected ErrUnsupportedHash, got %v", err)
	}
}

func TestNeedsRehash(t *testing.T) {
	cfg := fastPasswordConfig()
	hash, err := auth.HashPassword("password123", cfg)
	if err != nil {
		t.Fatal(err)
	}

	if auth.NeedsRehash(hash, cfg) {
		t.Error("Hash made with the current parameters should not need a rehash")
	}

	stronger := fastPasswordConfig()
	stronger.Iterations = 2
	if !auth.NeedsRehash(hash, stronger) {
		t.Error("Changed parameters should require a rehash")
	}

	legacy, _ := bcrypt.GenerateFromPassword([]byte("x"), bcrypt.MinCost)
	if !auth.NeedsRehash(string(legacy), cfg) {
		t.Error("Bcrypt hashes should be rehashed")
	}
}

func TestConfigFromAppConfig(t *testing.T) {
	cfg := &config.AppConfig{PasswordHash: config.HashSettings{
		Memory: 2048, Iterations: 2, Parallelism: 1, SaltLength: 8, KeyLength: 16,
	}}

	got := auth.ConfigFromAppConfig(cfg)
	want := &auth.PasswordConfig{Memory: 2048, Iterations: 2, Parallelism: 1, SaltLength: 8, KeyLength: 16}
	if *got != *want {
		t.Errorf("ConfigFromAppConfig() = %+v, want %+v", got, want)
	}
}

func TestConfigFromAppConfig_KeepsDefaultsForUnsetParameters(t *testing.T) {
	got := auth.ConfigFromAppConfig(&config.AppConfig{PasswordHash: config.HashSettings{Iterations: 5}})

	want := auth.DefaultPasswordConfig()
	want.Iterations = 5
	if *got != *want {
		t.Errorf("ConfigFromAppConfig() = %+v, want %+v", got, want)
	}
	if want.Memory != 64*1024 || want.KeyLength != 32 {
		t.Errorf("Unexpected defaults %+v", want)
	}
}

func TestGenerateRandomToken(t *testing.T) {
	token, err := auth.GenerateRandomToken(32)
	if err != nil {
		t.Fatalf("GenerateRandomToken() error = %v", err)
	}
	if len(token) != 64 {
		t.Errorf("Expected 64 hex characters, got %d", len(token))
	}

	other, _ := auth.GenerateRandomToken(32)
	if token == other {
		t.Error("Expected distinct tokens")
	}
}

func TestHashToken(t *testing.T) {
	// sha256("abc")
	want := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got := auth.HashToken("abc"); got != want {
		t.Errorf("HashToken() = %s, want %s", got, want)
	}

	if !auth.TokensMatch("abc", want) {
		t.Error("TokensMatch() should accept the matching token")
	}
	if auth.TokensMatch("abd", want) {
		t.Error("TokensMatch() should reject another token")
	}
}
