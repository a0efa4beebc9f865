// Package password implements one-way secret hashing for keygate.
//
// Hashes are Argon2id in a PHC-style encoded string. The package owns:
// - Argon2id cost parameters (defaults + env overrides)
// - length policy enforced before hashing
// - strict hash decoding and verification with anti-DoS parameter bounds
//
// Password complexity rules (character classes etc.) are not enforced here;
// they belong to request validation. This package only refuses inputs that
// cannot be hashed safely.
//
// Security notes:
// - Hash strings are treated as untrusted input during Verify and are validated accordingly.
// - Verification refuses hashes with parameters that exceed reasonable bounds.
package password
