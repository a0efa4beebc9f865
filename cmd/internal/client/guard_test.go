package client

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memTokenStore struct {
	token   string
	loadErr error
	clears  int
}

func (m *memTokenStore) Load() (string, error) { return m.token, m.loadErr }
func (m *memTokenStore) Save(t string) error   { m.token = t; return nil }
func (m *memTokenStore) Clear() error          { m.token = ""; m.clears++; return nil }

type fakeValidator struct {
	user  User
	err   error
	calls int
}

func (f *fakeValidator) ValidateToken(_ context.Context, _ string) (User, error) {
	f.calls++
	return f.user, f.err
}

func TestGuard_NoTokenResolvesInvalidWithoutNetwork(t *testing.T) {
	store := &memTokenStore{}
	api := &fakeValidator{}
	g := NewGuard(DefaultGuardConfig(), store, api)

	st, err := g.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateInvalid, st)
	assert.Zero(t, api.calls, "absent token must not trigger a validation call")
}

func TestGuard_ValidTokenResolvesValidAndKeepsToken(t *testing.T) {
	store := &memTokenStore{token: "tok"}
	api := &fakeValidator{user: User{Username: "janedoe"}}
	g := NewGuard(DefaultGuardConfig(), store, api)

	st, err := g.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateValid, st)
	assert.Equal(t, "janedoe", g.User().Username)
	assert.Equal(t, "tok", store.token, "successful validation must not purge the token")
	assert.Zero(t, store.clears)
}

func TestGuard_FailedValidationPurgesToken(t *testing.T) {
	store := &memTokenStore{token: "tok"}
	api := &fakeValidator{err: errors.New("rejected")}
	g := NewGuard(DefaultGuardConfig(), store, api)

	st, err := g.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateInvalid, st)
	assert.Empty(t, store.token, "failed validation must purge the token")
	assert.Equal(t, 1, store.clears)
}

func TestGuard_ResolutionIsTerminal(t *testing.T) {
	store := &memTokenStore{token: "tok"}
	api := &fakeValidator{err: errors.New("rejected")}
	g := NewGuard(DefaultGuardConfig(), store, api)

	_, err := g.Resolve(context.Background())
	require.NoError(t, err)

	// A second resolve returns the settled state without another call.
	st, err := g.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateInvalid, st)
	assert.Equal(t, 1, api.calls, "a failed validation is never retried")
}

func TestGuard_CancelledResolveCommitsNothing(t *testing.T) {
	store := &memTokenStore{token: "tok"}
	api := &fakeValidator{user: User{Username: "janedoe"}}
	g := NewGuard(DefaultGuardConfig(), store, api)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	st, err := g.Resolve(ctx)
	require.Error(t, err)
	assert.Equal(t, StateLoading, st)
	assert.Equal(t, StateLoading, g.State(), "cancelled resolution must not transition state")
	assert.Equal(t, "tok", store.token, "cancellation must not purge the token")
}

func TestGuard_Decisions(t *testing.T) {
	cases := []struct {
		name          string
		store         *memTokenStore
		api           *fakeValidator
		wantProtected Decision
		wantPublic    Decision
	}{
		{
			name:          "valid session",
			store:         &memTokenStore{token: "tok"},
			api:           &fakeValidator{},
			wantProtected: Decision{Allow: true},
			wantPublic:    Decision{RedirectTo: "/dashboard", ReplaceHistory: true},
		},
		{
			name:          "invalid session",
			store:         &memTokenStore{},
			api:           &fakeValidator{},
			wantProtected: Decision{RedirectTo: "/login", ReplaceHistory: true},
			wantPublic:    Decision{Allow: true},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := NewGuard(DefaultGuardConfig(), tc.store, tc.api)
			_, err := g.Resolve(context.Background())
			require.NoError(t, err)

			assert.Equal(t, tc.wantProtected, g.DecideProtected())
			assert.Equal(t, tc.wantPublic, g.DecidePublic())
		})
	}
}

func TestGuard_LoadingRendersNothing(t *testing.T) {
	g := NewGuard(DefaultGuardConfig(), &memTokenStore{}, &fakeValidator{})

	// Before any resolution, both directions must neither allow nor redirect.
	assert.Equal(t, Decision{}, g.DecideProtected())
	assert.Equal(t, Decision{}, g.DecidePublic())
}
