// Package logging wraps log/slog with modscout's handler construction,
// standardized field names, and context-derived attributes so every component
// logs the same way.
package logging
