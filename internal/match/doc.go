// Package match implements the deterministic candidate search over the
// catalog index: exact URL equality unioned with case-insensitive name
// containment, deduplicated and bounded. The per-candidate overlap scores it
// attaches are diagnostics for humans and logs; they never decide outcomes.
package match
