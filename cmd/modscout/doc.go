// Package main hosts the modscout CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into engine
// operations: URL resolution, decision log inspection, cache maintenance,
// snapshot transfer, catalog index management, and the human-gated record
// actions. It centralizes configuration resolution and structured logging
// setup so subcommands can focus on user experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
