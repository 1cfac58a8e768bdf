// Package arbiter decides when an ambiguous resolution is worth sending to a
// judge backend and interprets the judge's answer. Arbitration is strictly
// confidence-gated: the judge's verdict only counts as a match when it clears
// the configured threshold, and any backend failure degrades to "no verdict"
// rather than an error.
package arbiter
