package authapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"keygate/cmd/security/token"
)

type ctxKey int

const claimsKey ctxKey = iota

// ClaimsFromContext returns the verified token claims attached by RequireAuth.
func ClaimsFromContext(ctx context.Context) (token.Claims, bool) {
	c, ok := ctx.Value(claimsKey).(token.Claims)
	return c, ok
}

// RequireAuth authenticates the request's bearer credential and classifies it
// into an authorization outcome before the wrapped handler runs.
//
// Mapping:
//   - absent  -> 401, no fallback
//   - expired -> 401 (was once valid; the client may re-authenticate)
//   - invalid -> 403 (never valid; hard failure)
//   - authenticated -> subject claims attached to the request context
//
// Every verification failure rejects; there is no pass-through branch for
// unclassified errors.
func (h *Handler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, present := bearerToken(r)
		if !present {
			writeError(w, http.StatusUnauthorized, "no token provided")
			return
		}
		if raw == "" {
			// Header present but not "Bearer <token>": a malformed
			// credential, not a missing one.
			writeError(w, http.StatusForbidden, "invalid token")
			return
		}

		claims, outcome := h.tokens.Verify(raw, time.Now().UTC())
		switch outcome {
		case token.OutcomeAuthenticated:
			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		case token.OutcomeExpired:
			writeError(w, http.StatusUnauthorized, "token expired")
		case token.OutcomeAbsent:
			writeError(w, http.StatusUnauthorized, "no token provided")
		default:
			writeError(w, http.StatusForbidden, "invalid token")
		}
	})
}

// bearerToken extracts the credential from the Authorization header.
// A header that is present but not of the form "Bearer <token>" is reported
// as present-but-unusable, never silently treated as absent credentials.
func bearerToken(r *http.Request) (string, bool) {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw == "" {
		return "", false
	}
	parts := strings.SplitN(raw, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", true
	}
	return strings.TrimSpace(parts[1]), true
}
