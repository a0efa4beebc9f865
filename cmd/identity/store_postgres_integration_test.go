package identity

import (
	"context"
	"errors"
	"net"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"keygate/cmd/identity/ids"
)

// Integration tests are opt-in and require KEYGATE_TEST_DATABASE_URL.
// In non-CI runs, unreachable Postgres skips these tests to keep local runs fast.

func TestPostgresStore_CreateUser_ConflictsAreClassified(t *testing.T) {
	t.Parallel()

	pool := mustOpenTestPool(t)
	defer pool.Close()

	schema := mustCreateTestSchema(t, pool)
	t.Cleanup(func() { mustDropSchema(t, pool, schema) })
	mustApplyUsersSchema(t, pool, schema)

	s := mustNewStore(t, pool, schema)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	_, err := s.CreateUser(ctx, testCreateInput("janedoe", "jane@x.com"))
	if err != nil {
		t.Fatalf("create user 1: %v", err)
	}

	// Same username, different case, different email.
	_, err = s.CreateUser(ctx, testCreateInput("JaneDoe", "other@x.com"))
	if err == nil || !IsConflict(err) {
		t.Fatalf("expected username conflict, got: %v", err)
	}
	var ce ConflictError
	if !errors.As(err, &ce) || ce.Field != "username" {
		t.Fatalf("expected conflict on username, got: %v", err)
	}

	// Same email, different case, different username.
	_, err = s.CreateUser(ctx, testCreateInput("janedoe2", "Jane@X.com"))
	if err == nil || !IsConflict(err) {
		t.Fatalf("expected email conflict, got: %v", err)
	}
	if !errors.As(err, &ce) || ce.Field != "email" {
		t.Fatalf("expected conflict on email, got: %v", err)
	}
}

func TestPostgresStore_Lookups(t *testing.T) {
	t.Parallel()

	pool := mustOpenTestPool(t)
	defer pool.Close()

	schema := mustCreateTestSchema(t, pool)
	t.Cleanup(func() { mustDropSchema(t, pool, schema) })
	mustApplyUsersSchema(t, pool, schema)

	s := mustNewStore(t, pool, schema)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	created, err := s.CreateUser(ctx, testCreateInput("lookupuser", "lookup@x.com"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	ua, err := s.FindByUsername(ctx, "LookupUser")
	if err != nil {
		t.Fatalf("find by username: %v", err)
	}
	if ua.ID != created.ID || ua.PasswordHash == "" {
		t.Fatalf("unexpected auth record: %+v", ua)
	}

	u, err := s.FindByEmailOrUsername(ctx, "LOOKUP@x.com", "nobody")
	if err != nil || u.ID != created.ID {
		t.Fatalf("find by email: %v %+v", err, u)
	}

	u, err = s.GetUserByID(ctx, created.ID)
	if err != nil || u.Username != "lookupuser" {
		t.Fatalf("get by id: %v %+v", err, u)
	}

	if _, err := s.GetUserByID(ctx, "01ZZZZZZZZZZZZZZZZZZZZZZZZ"); !IsNotFound(err) {
		t.Fatalf("expected not found, got: %v", err)
	}
	if _, err := s.FindByUsername(ctx, "missinguser"); !IsNotFound(err) {
		t.Fatalf("expected not found, got: %v", err)
	}
}

// ---- helpers ----

func testCreateInput(username, email string) CreateUserInput {
	return CreateUserInput{
		FirstName:    "Jane",
		LastName:     "Doe",
		Age:          30,
		Gender:       GenderFemale,
		Username:     username,
		Email:        email,
		PasswordHash: "$argon2id$v=19$m=8192,t=1,p=1$c29tZXNhbHQ$c29tZWtleQ",
		Now:          time.Now().UTC(),
	}
}

func mustNewStore(t *testing.T, pool *pgxpool.Pool, schema string) *PostgresStore {
	t.Helper()
	s, err := NewPostgresStore(pool, WithSchema(schema))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return s
}

func mustOpenTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	raw := strings.TrimSpace(os.Getenv("KEYGATE_TEST_DATABASE_URL"))
	if raw == "" {
		t.Skip("integration test skipped: KEYGATE_TEST_DATABASE_URL is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 12*time.Second)
	defer cancel()

	cfg, err := pgxpool.ParseConfig(raw)
	if err != nil {
		t.Fatalf("parse KEYGATE_TEST_DATABASE_URL: %v", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		t.Fatalf("connect postgres: %v", err)
	}

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer pingCancel()

	c, err := pool.Acquire(pingCtx)
	if err != nil {
		pool.Close()
		if shouldSkipIntegration(err) {
			t.Skipf("integration test skipped: Postgres unreachable (KEYGATE_TEST_DATABASE_URL set): %v", err)
		}
		t.Fatalf("acquire: %v", err)
	}
	c.Release()

	return pool
}

func mustCreateTestSchema(t *testing.T, pool *pgxpool.Pool) string {
	t.Helper()

	id, err := ids.NewULID(time.Now().UTC())
	if err != nil {
		t.Fatalf("ulid: %v", err)
	}
	schema := "keygate_it_" + strings.ToLower(id)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := pool.Exec(ctx, `CREATE SCHEMA `+pgx.Identifier{schema}.Sanitize()); err != nil {
		t.Fatalf("create schema: %v", err)
	}
	return schema
}

func mustDropSchema(t *testing.T, pool *pgxpool.Pool, schema string) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, _ = pool.Exec(ctx, `DROP SCHEMA IF EXISTS `+pgx.Identifier{schema}.Sanitize()+` CASCADE`)
}

func mustApplyUsersSchema(t *testing.T, pool *pgxpool.Pool, schema string) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	users := pgIdent(schema, "users")
	schemaSQL := `
CREATE TABLE IF NOT EXISTS ` + users + ` (
  id            TEXT PRIMARY KEY,
  first_name    TEXT NOT NULL,
  last_name     TEXT NOT NULL,
  age           INTEGER NOT NULL CHECK (age > 0 AND age <= 120),
  gender        TEXT NOT NULL CHECK (gender IN ('male', 'female', 'other')),
  username      TEXT NOT NULL,
  email         TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  created_at    TIMESTAMPTZ NOT NULL,
  CONSTRAINT uq_users_username UNIQUE (username),
  CONSTRAINT uq_users_email UNIQUE (email)
);`

	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
}

func shouldSkipIntegration(err error) bool {
	if err == nil {
		return false
	}
	if os.Getenv("CI") != "" {
		return false
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "context deadline exceeded") ||
		strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "dial tcp") ||
		strings.Contains(msg, "no such host") {
		return true
	}
	return false
}
