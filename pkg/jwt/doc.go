// Package jwt implements compact HS256 tokens per RFC 7519 with no external
// dependencies.
//
// Service handles the authenticated path: Generate signs claims, Parse
// verifies the signature with a constant-time comparison, rejects algorithm
// confusion, and validates temporal claims.
//
// DecodeUnverified is deliberately separate: it extracts claims without any
// verification for code that treats them as a routing signal, such as the
// tenant claim used during request resolution. A decode failure there is
// "no signal", not an authentication error.
package jwt
