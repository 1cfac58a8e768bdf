package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// UnknownName is the sentinel used when neither the page nor the URL yields a
// usable mod name.
const UnknownName = "Unknown Mod"

// Identity is the normalized description of a mod derived from its URL and
// page content.
type Identity struct {
	URL     string `json:"url"`
	Name    string `json:"name"`
	Domain  string `json:"domain"`
	Slug    string `json:"slug"`
	Blocked bool   `json:"blocked"`
}

// Fingerprint returns a stable hash over the canonical identity fields. Two
// identities that agree on these fields always produce the same fingerprint,
// regardless of when or how they were extracted.
func (id Identity) Fingerprint() string {
	// Fixed key order; changing it invalidates every cached decision.
	canonical := fmt.Sprintf(
		"url=%s\nname=%s\ndomain=%s\nslug=%s\nblocked=%t",
		id.URL, id.Name, id.Domain, id.Slug, id.Blocked,
	)
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}

// SlugTokenCount counts the whitespace-delimited tokens in the slug. Fewer
// than three tokens is treated as a weak identity signal by the arbitration
// gate.
func (id Identity) SlugTokenCount() int {
	return len(strings.Fields(id.Slug))
}

// Summary renders a compact human-readable identity description used in judge
// payloads and audit reasons.
func (id Identity) Summary() string {
	var b strings.Builder
	b.WriteString(id.Name)
	if id.Domain != "" {
		fmt.Fprintf(&b, " (%s)", id.Domain)
	}
	if id.Blocked {
		b.WriteString(" [page blocked]")
	}
	return b.String()
}
