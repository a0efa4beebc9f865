package token

import (
	"os"
	"strings"
	"time"
)

const (
	// SecretEnvKey is the env var name for the token signing secret.
	// #nosec G101 -- not a credential; it's an environment variable name.
	SecretEnvKey = "KEYGATE_TOKEN_SECRET"

	// minSecretBytes is the smallest acceptable HMAC key size.
	minSecretBytes = 32
)

// Config defines runtime configuration for token issuance and verification.
//
// The signing secret is injected here once at startup and treated as
// read-only for the process lifetime.
type Config struct {
	// Issuer is the value set in the "iss" claim.
	Issuer string

	// TTL defines the lifetime of issued tokens.
	TTL time.Duration

	// ClockSkew is the leeway applied to time-based claims during
	// verification.
	ClockSkew time.Duration

	// Secret is the HMAC-SHA256 signing key.
	Secret []byte
}

// DefaultConfig returns defaults without a secret; the secret must be
// provided by the caller or the environment.
func DefaultConfig() Config {
	return Config{
		Issuer:    "keygate",
		TTL:       time.Hour,
		ClockSkew: 30 * time.Second,
	}
}

// LoadConfigFromEnv loads token configuration from environment variables.
//
// Required:
//   - KEYGATE_TOKEN_SECRET (>= 32 bytes)
//
// Optional (durations must be valid Go duration strings):
//   - KEYGATE_TOKEN_ISSUER
//   - KEYGATE_TOKEN_TTL
//   - KEYGATE_TOKEN_CLOCK_SKEW
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v := os.Getenv("KEYGATE_TOKEN_ISSUER"); v != "" {
		cfg.Issuer = v
	}

	if v := os.Getenv("KEYGATE_TOKEN_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, ErrConfig
		}
		cfg.TTL = d
	}

	if v := os.Getenv("KEYGATE_TOKEN_CLOCK_SKEW"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return Config{}, ErrConfig
		}
		cfg.ClockSkew = d
	}

	raw := strings.TrimSpace(os.Getenv(SecretEnvKey))
	if raw == "" {
		return Config{}, ErrSecretMissing
	}
	if len(raw) < minSecretBytes {
		return Config{}, ErrSecretTooShort
	}
	cfg.Secret = []byte(raw)

	return cfg, nil
}
