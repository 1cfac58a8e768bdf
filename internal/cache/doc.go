// Package cache provides the two-tier resolution cache (match and absent
// partitions, disjoint by fingerprint) and snapshot export/import for the
// portable subset of engine state.
package cache
