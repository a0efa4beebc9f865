package client

import (
	"context"
	"sync"
)

// State is the session guard's lifecycle state.
type State int

const (
	// StateLoading means no validation has completed yet. Protected content
	// must not render in this state.
	StateLoading State = iota
	// StateInvalid means the held token is absent or was rejected.
	StateInvalid
	// StateValid means the server confirmed the held token.
	StateValid
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateInvalid:
		return "invalid"
	case StateValid:
		return "valid"
	default:
		return "unknown"
	}
}

// TokenValidator is the remote boundary the guard consults.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (User, error)
}

// Decision tells the caller what to do with a navigation attempt.
type Decision struct {
	Allow bool
	// RedirectTo is set when Allow is false and the caller should navigate
	// elsewhere; empty means render nothing (still loading).
	RedirectTo string
	// ReplaceHistory indicates the redirect must replace the current history
	// entry so back-navigation cannot re-enter the rejected route.
	ReplaceHistory bool
}

// GuardConfig names the two navigation anchors the guard redirects between.
type GuardConfig struct {
	// LoginPath is the unauthenticated entry point.
	LoginPath string
	// HomePath is the protected area's entry point.
	HomePath string
}

// DefaultGuardConfig returns the standard route anchors.
func DefaultGuardConfig() GuardConfig {
	return GuardConfig{
		LoginPath: "/login",
		HomePath:  "/dashboard",
	}
}

// Guard decides whether the locally held token grants access to protected
// navigation. It resolves at most once: the first completed validation is
// terminal for the guard instance, and a failed validation is never retried.
type Guard struct {
	cfg   GuardConfig
	store TokenStore
	api   TokenValidator

	mu    sync.Mutex
	state State
	user  User
}

// NewGuard constructs a guard over a token store and validation boundary.
func NewGuard(cfg GuardConfig, store TokenStore, api TokenValidator) *Guard {
	if cfg.LoginPath == "" {
		cfg.LoginPath = DefaultGuardConfig().LoginPath
	}
	if cfg.HomePath == "" {
		cfg.HomePath = DefaultGuardConfig().HomePath
	}
	return &Guard{
		cfg:   cfg,
		store: store,
		api:   api,
		state: StateLoading,
	}
}

// State returns the guard's current state.
func (g *Guard) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// User returns the validated user; meaningful only in StateValid.
func (g *Guard) User() User {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.user
}

// Resolve drives the guard from Loading to a terminal state.
//
// With no stored token it resolves to Invalid without any network call.
// With a stored token it validates remotely: success resolves to Valid and
// keeps the token; any rejection resolves to Invalid and purges the token so
// subsequent mounts do not repeat a failing call.
//
// Context cancellation aborts without committing a state: a guard whose
// consumer went away must not fire a late transition. Once resolved, further
// Resolve calls return the settled state without touching the network.
func (g *Guard) Resolve(ctx context.Context) (State, error) {
	g.mu.Lock()
	if g.state != StateLoading {
		st := g.state
		g.mu.Unlock()
		return st, nil
	}
	g.mu.Unlock()

	token, err := g.store.Load()
	if err != nil {
		return g.commit(ctx, StateInvalid, User{})
	}
	if token == "" {
		return g.commit(ctx, StateInvalid, User{})
	}

	user, err := g.api.ValidateToken(ctx, token)
	if ctx.Err() != nil {
		// Cancelled mid-flight: no state transition, no purge.
		return StateLoading, ctx.Err()
	}
	if err != nil {
		// A failed validation proves the token unusable.
		_ = g.store.Clear()
		return g.commit(ctx, StateInvalid, User{})
	}

	return g.commit(ctx, StateValid, user)
}

func (g *Guard) commit(ctx context.Context, next State, user User) (State, error) {
	if ctx.Err() != nil {
		return StateLoading, ctx.Err()
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	// First completed resolution wins; late completions are dropped.
	if g.state != StateLoading {
		return g.state, nil
	}
	g.state = next
	g.user = user
	return g.state, nil
}

// DecideProtected gates navigation into the protected area.
func (g *Guard) DecideProtected() Decision {
	switch g.State() {
	case StateValid:
		return Decision{Allow: true}
	case StateInvalid:
		return Decision{RedirectTo: g.cfg.LoginPath, ReplaceHistory: true}
	default:
		// Loading: render nothing yet.
		return Decision{}
	}
}

// DecidePublic gates navigation onto unauthenticated-only pages: a user who
// already holds a valid session is sent to the protected area instead.
func (g *Guard) DecidePublic() Decision {
	switch g.State() {
	case StateValid:
		return Decision{RedirectTo: g.cfg.HomePath, ReplaceHistory: true}
	case StateInvalid:
		return Decision{Allow: true}
	default:
		return Decision{}
	}
}
