// Package session owns one authenticated daemon connection.
//
// Ownership boundary:
// - TCP connect and the challenge/response handshake
// - the single-frame query exchange
// - failure classification and sticky poisoning
//
// A Session is never reused after a failure and is not safe for
// concurrent Query calls; internal/transport enforces serialization.
package session
