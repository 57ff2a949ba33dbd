package domain

import (
	"strconv"
	"strings"
)

// ContentHash fingerprints (generatorType, parameters) for duplicate
// detection. The hash is a pure function of the generator type and the
// canonicalized parameters: keys are sorted, so insertion order never
// matters, and name/id/timestamp never contribute. The digest is a
// djb2-style rolling hash in base 36 — deterministic across restarts
// because it is persisted alongside the record, and deliberately not a
// security boundary.
func ContentHash(generatorType string, params Params) string {
	var b strings.Builder
	b.WriteString(generatorType)
	for _, key := range params.SortedKeys() {
		b.WriteByte('|')
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(params[key].canonical())
	}

	canonical := b.String()
	hash := uint32(5381)
	for i := 0; i < len(canonical); i++ {
		hash = hash*33 + uint32(canonical[i])
	}
	return strconv.FormatUint(uint64(hash), 36)
}
