// Package decision defines the immutable audit record produced by every
// resolution and the SQLite-backed log that persists one decision per
// identity fingerprint.
package decision
