// Package identity turns a mod URL plus fetched page content into a
// normalized Identity record and its stable fingerprint. Extraction is a pure
// function of its inputs: no network calls, no side effects, and it never
// fails; missing or blocked content degrades to a slug-derived identity.
package identity
