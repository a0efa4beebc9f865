package identity

import (
	"context"
	"sync"
	"time"

	"keygate/cmd/identity/ids"
)

// MemoryStore is a dev/test fallback when DB is not configured.
// It enforces the same uniqueness contract as the Postgres store.
type MemoryStore struct {
	mu         sync.Mutex
	byID       map[string]UserAuth
	byUsername map[string]string // username -> id
	byEmail    map[string]string // email -> id
}

// NewMemoryStore constructs an in-memory Store implementation.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:       make(map[string]UserAuth),
		byUsername: make(map[string]string),
		byEmail:    make(map[string]string),
	}
}

// CreateUser inserts a new credential record.
func (s *MemoryStore) CreateUser(ctx context.Context, in CreateUserInput) (User, error) {
	const op = "identity.CreateUser"

	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	if err := checkCreateInput(op, in); err != nil {
		return User{}, err
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	username := NormalizeUsername(in.Username)
	email := NormalizeEmail(in.Email)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byUsername[username]; exists {
		return User{}, ConflictError{Op: op, Field: "username"}
	}
	if _, exists := s.byEmail[email]; exists {
		return User{}, ConflictError{Op: op, Field: "email"}
	}

	id, err := ids.NewULID(now)
	if err != nil {
		return User{}, err
	}

	ua := UserAuth{
		User: User{
			ID:        id,
			FirstName: in.FirstName,
			LastName:  in.LastName,
			Age:       in.Age,
			Gender:    in.Gender,
			Username:  username,
			Email:     email,
			CreatedAt: now,
		},
		PasswordHash: in.PasswordHash,
	}

	s.byID[id] = ua
	s.byUsername[username] = id
	s.byEmail[email] = id

	return ua.User, nil
}

// FindByUsername returns the record with its secret hash for login checks.
func (s *MemoryStore) FindByUsername(ctx context.Context, username string) (UserAuth, error) {
	const op = "identity.FindByUsername"

	if err := ctx.Err(); err != nil {
		return UserAuth{}, err
	}

	norm := NormalizeUsername(username)
	if norm == "" {
		return UserAuth{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "missing username"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byUsername[norm]
	if !ok {
		return UserAuth{}, NotFoundError{Op: op, Resource: "user"}
	}
	return s.byID[id], nil
}

// FindByEmailOrUsername returns any record matching either identity field.
func (s *MemoryStore) FindByEmailOrUsername(ctx context.Context, email, username string) (User, error) {
	const op = "identity.FindByEmailOrUsername"

	if err := ctx.Err(); err != nil {
		return User{}, err
	}

	emailNorm := NormalizeEmail(email)
	usernameNorm := NormalizeUsername(username)
	if emailNorm == "" && usernameNorm == "" {
		return User{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "missing email and username"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.byEmail[emailNorm]; ok {
		return s.byID[id].User, nil
	}
	if id, ok := s.byUsername[usernameNorm]; ok {
		return s.byID[id].User, nil
	}
	return User{}, NotFoundError{Op: op, Resource: "user"}
}

// GetUserByID resolves a token subject back to its record.
func (s *MemoryStore) GetUserByID(ctx context.Context, id string) (User, error) {
	const op = "identity.GetUserByID"

	if err := ctx.Err(); err != nil {
		return User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ua, ok := s.byID[id]
	if !ok {
		return User{}, NotFoundError{Op: op, Resource: "user"}
	}
	return ua.User, nil
}
