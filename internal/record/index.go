package record

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// Index is an in-memory snapshot of the catalog's records. It is read-only
// for the duration of a resolution; refreshes replace the whole index at
// explicit reload points, never mid-resolution.
type Index struct {
	records []Record
}

// NewIndex copies the supplied records into a fresh index.
func NewIndex(records []Record) *Index {
	cp := make([]Record, len(records))
	copy(cp, records)
	return &Index{records: cp}
}

// Records returns the indexed records in catalog order.
func (ix *Index) Records() []Record {
	if ix == nil {
		return nil
	}
	cp := make([]Record, len(ix.records))
	copy(cp, ix.records)
	return cp
}

// Len reports the number of indexed records.
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.records)
}

// ContentFingerprint hashes the sorted record IDs. Cached decisions carry the
// fingerprint current at decision time; a mismatch means the catalog changed
// underneath them.
func (ix *Index) ContentFingerprint() string {
	ids := make([]string, 0, ix.Len())
	if ix != nil {
		for _, rec := range ix.records {
			if id := strings.TrimSpace(rec.ID); id != "" {
				ids = append(ids, id)
			}
		}
	}
	sort.Strings(ids)
	sum := sha256.Sum256([]byte(strings.Join(ids, "\n")))
	return hex.EncodeToString(sum[:])
}
