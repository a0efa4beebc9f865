// Package authapi wires keygate's HTTP auth endpoints to the user directory,
// secret hasher and token manager.
package authapi

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"keygate/cmd/identity"
	"keygate/cmd/internal/auth/validate"
	"keygate/cmd/security/password"
	"keygate/cmd/security/token"
)

// invalidCredentialsMsg deliberately does not reveal whether the username or
// the password was wrong.
const invalidCredentialsMsg = "invalid username or password"

// Handler serves /register, /login and /validate-token.
type Handler struct {
	log    *slog.Logger
	cfg    Config
	store  identity.Store
	hasher password.Config
	tokens *token.Manager

	dummyHash string
}

// NewHandler constructs an auth Handler over its collaborators.
func NewHandler(log *slog.Logger, store identity.Store, hasher password.Config, tokens *token.Manager, cfg Config) (*Handler, error) {
	if log == nil {
		log = slog.Default()
	}
	if store == nil {
		return nil, errors.New("authapi: nil store")
	}
	if tokens == nil {
		return nil, errors.New("authapi: nil token manager")
	}

	h := &Handler{
		log:    log,
		cfg:    cfg,
		store:  store,
		hasher: hasher,
		tokens: tokens,
	}

	// Dummy hash for timing-resistant login checks on unknown users.
	if hash, err := hasher.Hash("dummy-password-for-timing-only"); err == nil {
		h.dummyHash = hash
	}

	return h, nil
}

// Register wires auth routes onto the provided mux.
func (h *Handler) Register(mux *http.ServeMux) {
	if h == nil || mux == nil {
		return
	}
	mux.HandleFunc("/register", h.handleRegister)
	mux.HandleFunc("/login", h.handleLogin)
	mux.Handle("/validate-token", h.RequireAuth(http.HandlerFunc(h.handleValidateToken)))
}

// ---- handlers ----

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req registerRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	reg, verrs := validate.ValidateRegistration(validate.RegistrationPayload{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Age:       req.Age.String(),
		Gender:    req.Gender,
		Email:     req.Email,
		Username:  req.Username,
		Password:  req.Password,
	})
	if verrs != nil {
		writeError(w, http.StatusBadRequest, verrs.Error())
		return
	}

	ctx := r.Context()
	now := time.Now().UTC()

	// Pre-check for an existing identity so the common duplicate case gets a
	// clear message; the store constraint remains the authority under races.
	if _, err := h.store.FindByEmailOrUsername(ctx, reg.Email, reg.Username); err == nil {
		writeError(w, http.StatusBadRequest, "email or username already exists")
		return
	} else if !identity.IsNotFound(err) {
		h.log.Error("auth.register.lookup.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}

	hash, err := h.hasher.Hash(reg.Password)
	if err != nil {
		// Hashing failure is operational, never a validation outcome.
		h.log.Error("auth.register.hash.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}

	user, err := h.store.CreateUser(ctx, identity.CreateUserInput{
		FirstName:    reg.FirstName,
		LastName:     reg.LastName,
		Age:          reg.Age,
		Gender:       identity.Gender(reg.Gender),
		Username:     reg.Username,
		Email:        reg.Email,
		PasswordHash: hash,
		Now:          now,
	})
	if err != nil {
		if identity.IsConflict(err) {
			writeError(w, http.StatusBadRequest, "email or username already exists")
			return
		}
		h.log.Error("auth.register.create.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}

	signed, _, err := h.tokens.Issue(user.ID, now)
	if err != nil {
		h.log.Error("auth.register.token.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}

	h.log.Info("auth.register.ok", "user_id", user.ID)
	writeJSON(w, http.StatusCreated, registerResponse{
		Message: "user registered successfully",
		Token:   signed,
	})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req loginRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	login, verrs := validate.ValidateLogin(validate.LoginPayload{
		Username: req.Username,
		Password: req.Password,
	})
	if verrs != nil {
		writeError(w, http.StatusBadRequest, verrs.Error())
		return
	}

	ctx := r.Context()
	now := time.Now().UTC()

	ua, err := h.store.FindByUsername(ctx, login.Username)
	if err != nil {
		if identity.IsNotFound(err) {
			// Timing resistance: perform a dummy verify when user is missing.
			if h.dummyHash != "" {
				_, _ = h.hasher.Verify(h.dummyHash, login.Password)
			}
			writeError(w, http.StatusBadRequest, invalidCredentialsMsg)
			return
		}
		h.log.Error("auth.login.lookup.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}

	ok, err := h.hasher.Verify(ua.PasswordHash, login.Password)
	if err != nil {
		// A corrupt stored hash is an internal fault; do not leak which
		// credential failed.
		h.log.Error("auth.login.verify.fail", "err", err, "user_id", ua.ID)
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}
	if !ok {
		writeError(w, http.StatusBadRequest, invalidCredentialsMsg)
		return
	}

	signed, _, err := h.tokens.Issue(ua.ID, now)
	if err != nil {
		h.log.Error("auth.login.token.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}

	h.log.Info("auth.login.ok", "user_id", ua.ID)
	writeJSON(w, http.StatusOK, loginResponse{Token: signed})
}

func (h *Handler) handleValidateToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		// RequireAuth always runs first; reaching here without claims is a
		// wiring bug, treated as unauthorized rather than allowed through.
		writeError(w, http.StatusUnauthorized, "no token provided")
		return
	}

	user, err := h.store.GetUserByID(r.Context(), claims.Subject)
	if err != nil {
		if identity.IsNotFound(err) {
			writeError(w, http.StatusUnauthorized, "unknown subject")
			return
		}
		h.log.Error("auth.validate.lookup.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}

	writeJSON(w, http.StatusOK, validateResponse{
		Valid: true,
		User:  toUserResponse(user),
	})
}
