// Package validate checks and normalizes raw credential payloads.
//
// Each field is described by a declarative rule (normalization step plus an
// ordered list of checks) and all rules are evaluated by a single engine.
// Validation is exhaustive: every failing field contributes its message to
// the result, ordered by field declaration order, instead of stopping at the
// first failure.
//
// The package is pure: it performs no I/O and never consults the user
// directory. Duplicate-identity checks happen at the store boundary.
package validate
