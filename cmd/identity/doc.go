// Package identity is keygate's user directory.
//
// It owns the durable credential record (profile fields plus the one-way
// secret hash), identity normalization, and the store implementations the
// HTTP layer talks to. Secret hashing itself lives in cmd/security/password;
// this package only stores and returns the encoded hash.
package identity
