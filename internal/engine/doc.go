// Package engine owns the resolution pipeline state and drives each URL
// through extraction, deterministic candidate search, confidence-gated
// arbitration, and decision recording. One engine owns the state directory
// for the life of the process; concurrent instances are excluded by a file
// lock.
package engine
