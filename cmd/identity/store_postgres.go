package identity

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"keygate/cmd/identity/ids"
)

// PostgresStore implements the user directory over PostgreSQL.
//
// Design notes:
// - The pgx pool is owned by the caller; this store must NOT close it.
// - Schema/table identifiers are safely quoted to avoid SQL injection via identifiers.
// - Uniqueness conflicts are mapped to ConflictError with the violated field.
type PostgresStore struct {
	pool   *pgxpool.Pool
	schema string
}

// PostgresOption configures the store.
type PostgresOption func(*PostgresStore) error

var pgIdentRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// WithSchema sets the Postgres schema used by the store (default "keygate").
// The schema name is validated to be a legal PostgreSQL identifier.
func WithSchema(schema string) PostgresOption {
	return func(s *PostgresStore) error {
		schema = strings.TrimSpace(schema)
		if schema == "" {
			return fmt.Errorf("identity: empty schema")
		}
		if !pgIdentRe.MatchString(schema) {
			return fmt.Errorf("identity: invalid schema identifier")
		}
		s.schema = schema
		return nil
	}
}

// NewPostgresStore constructs a PostgresStore with secure defaults.
func NewPostgresStore(pool *pgxpool.Pool, opts ...PostgresOption) (*PostgresStore, error) {
	st := &PostgresStore{
		pool:   pool,
		schema: "keygate",
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(st); err != nil {
			return nil, err
		}
	}
	if st.pool == nil {
		return nil, fmt.Errorf("identity: nil pool")
	}
	return st, nil
}

// CreateUser inserts a new credential record.
func (s *PostgresStore) CreateUser(ctx context.Context, in CreateUserInput) (User, error) {
	const op = "identity.CreateUser"

	if s == nil || s.pool == nil {
		return User{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "nil store"}
	}
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

	userID, err := ids.NewULID(now)
	if err != nil {
		return User{}, err
	}

	username := NormalizeUsername(in.Username)
	email := NormalizeEmail(in.Email)
	users := pgIdent(s.schema, "users")

	_, err = s.pool.Exec(ctx,
		`INSERT INTO `+users+` (
		     id, first_name, last_name, age, gender, username, email, password_hash, created_at
		   ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		userID,
		in.FirstName,
		in.LastName,
		in.Age,
		string(in.Gender),
		username,
		email,
		in.PasswordHash,
		now,
	)
	if err != nil {
		if field, ok := pgClassifyUniqueViolation(err); ok {
			return User{}, ConflictError{Op: op, Field: field}
		}
		return User{}, err
	}

	return User{
		ID:        userID,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Age:       in.Age,
		Gender:    in.Gender,
		Username:  username,
		Email:     email,
		CreatedAt: now,
	}, nil
}

// FindByUsername returns the record with its secret hash for login checks.
func (s *PostgresStore) FindByUsername(ctx context.Context, username string) (UserAuth, error) {
	const op = "identity.FindByUsername"

	if s == nil || s.pool == nil {
		return UserAuth{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "nil store"}
	}
	if err := ctx.Err(); err != nil {
		return UserAuth{}, err
	}

	norm := NormalizeUsername(username)
	if norm == "" {
		return UserAuth{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "missing username"}
	}

	users := pgIdent(s.schema, "users")
	row := s.pool.QueryRow(ctx,
		`SELECT id, first_name, last_name, age, gender, username, email, password_hash, created_at
		   FROM `+users+`
		  WHERE username = $1`,
		norm,
	)

	var ua UserAuth
	var gender string
	err := row.Scan(
		&ua.ID, &ua.FirstName, &ua.LastName, &ua.Age, &gender,
		&ua.Username, &ua.Email, &ua.PasswordHash, &ua.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return UserAuth{}, NotFoundError{Op: op, Resource: "user"}
		}
		return UserAuth{}, err
	}
	ua.Gender = Gender(gender)
	return ua, nil
}

// FindByEmailOrUsername returns any record matching either identity field.
func (s *PostgresStore) FindByEmailOrUsername(ctx context.Context, email, username string) (User, error) {
	const op = "identity.FindByEmailOrUsername"

	if s == nil || s.pool == nil {
		return User{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "nil store"}
	}
	if err := ctx.Err(); err != nil {
		return User{}, err
	}

	emailNorm := NormalizeEmail(email)
	usernameNorm := NormalizeUsername(username)
	if emailNorm == "" && usernameNorm == "" {
		return User{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "missing email and username"}
	}

	users := pgIdent(s.schema, "users")
	row := s.pool.QueryRow(ctx,
		`SELECT id, first_name, last_name, age, gender, username, email, created_at
		   FROM `+users+`
		  WHERE email = $1 OR username = $2
		  LIMIT 1`,
		emailNorm, usernameNorm,
	)

	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, NotFoundError{Op: op, Resource: "user"}
		}
		return User{}, err
	}
	return u, nil
}

// GetUserByID resolves a token subject back to its record.
func (s *PostgresStore) GetUserByID(ctx context.Context, id string) (User, error) {
	const op = "identity.GetUserByID"

	if s == nil || s.pool == nil {
		return User{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "nil store"}
	}
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	if strings.TrimSpace(id) == "" {
		return User{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "missing id"}
	}

	users := pgIdent(s.schema, "users")
	row := s.pool.QueryRow(ctx,
		`SELECT id, first_name, last_name, age, gender, username, email, created_at
		   FROM `+users+`
		  WHERE id = $1`,
		id,
	)

	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, NotFoundError{Op: op, Resource: "user"}
		}
		return User{}, err
	}
	return u, nil
}

// ---- helpers ----

func checkCreateInput(op string, in CreateUserInput) error {
	if strings.TrimSpace(in.Username) == "" {
		return OpError{Op: op, Kind: ErrInvalidInput, Msg: "missing username"}
	}
	if strings.TrimSpace(in.Email) == "" {
		return OpError{Op: op, Kind: ErrInvalidInput, Msg: "missing email"}
	}
	if strings.TrimSpace(in.PasswordHash) == "" {
		return OpError{Op: op, Kind: ErrInvalidInput, Msg: "missing password hash"}
	}
	if _, ok := ParseGender(string(in.Gender)); !ok {
		return OpError{Op: op, Kind: ErrInvalidInput, Msg: "invalid gender"}
	}
	return nil
}

func scanUser(row pgx.Row) (User, error) {
	var u User
	var gender string
	err := row.Scan(
		&u.ID, &u.FirstName, &u.LastName, &u.Age, &gender,
		&u.Username, &u.Email, &u.CreatedAt,
	)
	if err != nil {
		return User{}, err
	}
	u.Gender = Gender(gender)
	return u, nil
}

func pgIdent(schema, name string) string {
	return pgx.Identifier{schema, name}.Sanitize()
}

func pgClassifyUniqueViolation(err error) (field string, ok bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return "", false
	}
	if pgErr.Code != "23505" { // unique_violation
		return "", false
	}

	// Prefer stable schema constraint names; fall back to substring matching.
	c := strings.ToLower(strings.TrimSpace(pgErr.ConstraintName))
	switch c {
	case "uq_users_username":
		return "username", true
	case "uq_users_email":
		return "email", true
	default:
		switch {
		case strings.Contains(c, "username"):
			return "username", true
		case strings.Contains(c, "email"):
			return "email", true
		default:
			return "unique", true
		}
	}
}
