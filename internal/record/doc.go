// Package record defines the canonical record store contract and the local
// read-only index the resolution pipeline searches. The store's schema is an
// external contract: modscout reads candidate records, and writes only on
// explicit human action (creating a record or appending an audit note), never
// overwriting curator-authored notes.
package record
