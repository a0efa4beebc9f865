package identity

import (
	"context"
	"time"
)

// Gender is the closed set of accepted gender values.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// ParseGender maps a normalized string onto the Gender enum.
func ParseGender(s string) (Gender, bool) {
	switch Gender(s) {
	case GenderMale, GenderFemale, GenderOther:
		return Gender(s), true
	default:
		return "", false
	}
}

// User is keygate's canonical security principal. It never carries the
// secret hash; use UserAuth when credential verification is needed.
type User struct {
	ID        string
	FirstName string
	LastName  string
	Age       int
	Gender    Gender

	Username string
	Email    string

	CreatedAt time.Time
}

// UserAuth couples a User with its stored secret hash for login checks.
// IMPORTANT: the hash must never leave the auth boundary.
type UserAuth struct {
	User
	PasswordHash string
}

// CreateUserInput describes a registration. All identity fields are expected
// to be normalized and validated by the caller; PasswordHash is the encoded
// Argon2id hash, never the plaintext.
type CreateUserInput struct {
	FirstName    string
	LastName     string
	Age          int
	Gender       Gender
	Username     string
	Email        string
	PasswordHash string
	Now          time.Time
}

// Store is the user directory boundary consumed by the auth core.
//
// Uniqueness of username and email is enforced by the store's own
// constraint, not by application-level locking; a duplicate surfaces as a
// ConflictError carrying the violated field.
type Store interface {
	// CreateUser inserts a new credential record.
	CreateUser(ctx context.Context, in CreateUserInput) (User, error)

	// FindByUsername returns the record with its secret hash for login.
	FindByUsername(ctx context.Context, username string) (UserAuth, error)

	// FindByEmailOrUsername returns any record matching either identity
	// field; used for pre-registration duplicate checks.
	FindByEmailOrUsername(ctx context.Context, email, username string) (User, error)

	// GetUserByID resolves a token subject back to its record.
	GetUserByID(ctx context.Context, id string) (User, error)
}
