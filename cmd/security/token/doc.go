// Package token issues and verifies keygate's signed session tokens.
//
// Tokens are stateless JWTs (HS256) binding a subject identifier to an
// issued-at and expiry instant. There is no server-side token record:
// possession of an unexpired, correctly signed token is the whole proof.
//
// Verification classifies every inbound credential into an Outcome
// (Authenticated, Expired, Invalid, Absent). There is deliberately no
// "unclassified failure" path: anything that is not a verified, unexpired
// token with a subject is Invalid.
//
// Environment:
// - KEYGATE_TOKEN_SECRET: HMAC signing secret (required, >= 32 bytes).
package token
