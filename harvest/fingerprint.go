package harvest

import (
	"hash/fnv"
	"strings"
)

// Fingerprint computes a 64-bit FNV-1a hash over the whitespace-collapsed,
// lowercased content. It identifies duplicate content within a single
// query's session; the same content under two different queries is
// intentionally not deduplicated.
func Fingerprint(content string) uint64 {
	normalized := strings.ToLower(strings.Join(strings.Fields(content), " "))

	h := fnv.New64a()
	h.Write([]byte(normalized))
	return h.Sum64()
}

// fingerprintSet is the per-query duplicate suppressor. It is created at
// the start of a query's run and discarded at its end; there is no
// eviction.
type fingerprintSet map[uint64]struct{}

func newFingerprintSet() fingerprintSet {
	return make(fingerprintSet)
}

func (s fingerprintSet) Seen(fp uint64) bool {
	_, ok := s[fp]
	return ok
}

func (s fingerprintSet) Record(fp uint64) {
	s[fp] = struct{}{}
}
