package token

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the identity envelope carried by a verified token.
type Claims struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Issuer    string
}

// Manager issues and verifies signed session tokens.
//
// It is stateless and safe for concurrent use: the only retained state is
// the read-only configuration.
type Manager struct {
	issuer    string
	ttl       time.Duration
	clockSkew time.Duration
	secret    []byte
}

// NewManager builds a Manager from cfg. The secret must be present and at
// least 32 bytes; a missing secret is a startup-fatal condition for callers.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.Secret) == 0 {
		return nil, ErrSecretMissing
	}
	if len(cfg.Secret) < minSecretBytes {
		return nil, ErrSecretTooShort
	}
	if cfg.TTL <= 0 || cfg.ClockSkew < 0 {
		return nil, ErrConfig
	}

	return &Manager{
		issuer:    cfg.Issuer,
		ttl:       cfg.TTL,
		clockSkew: cfg.ClockSkew,
		secret:    cfg.Secret,
	}, nil
}

// Issue mints a token binding subject to [now, now+TTL].
func (m *Manager) Issue(subject string, now time.Time) (string, time.Time, error) {
	if strings.TrimSpace(subject) == "" {
		return "", time.Time{}, ErrConfig
	}

	exp := now.Add(m.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    m.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Verify classifies raw into an Outcome as of now.
//
// The classification is total: every failure mode maps to Invalid unless the
// signature verified and only the expiry check failed, which maps to Expired.
// An empty credential maps to Absent. Claims are only meaningful when the
// outcome is Authenticated.
func (m *Manager) Verify(raw string, now time.Time) (Claims, Outcome) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Claims{}, OutcomeAbsent
	}

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, m.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(m.clockSkew),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		// A tampered payload fails the signature check before any claim
		// validation runs, so Expired is only reported for tokens that were
		// once genuinely valid.
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid),
			errors.Is(err, jwt.ErrTokenMalformed),
			errors.Is(err, jwt.ErrTokenUnverifiable):
			return Claims{}, OutcomeInvalid
		case errors.Is(err, jwt.ErrTokenExpired):
			return Claims{}, OutcomeExpired
		default:
			return Claims{}, OutcomeInvalid
		}
	}
	if parsed == nil || !parsed.Valid {
		return Claims{}, OutcomeInvalid
	}

	if strings.TrimSpace(claims.Subject) == "" {
		return Claims{}, OutcomeInvalid
	}

	out := Claims{
		Subject: claims.Subject,
		Issuer:  claims.Issuer,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, OutcomeAuthenticated
}

func (m *Manager) keyFunc(_ *jwt.Token) (any, error) {
	return m.secret, nil
}
