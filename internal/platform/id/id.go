// Package id generates opaque identifiers for store-assigned records.
//
// Identifiers are 16 random bytes carrying UUID v4 version and variant
// bits, rendered as lowercase unpadded base32 (26 characters). The base32
// form sorts and copies more comfortably than the dashed UUID form while
// staying reversible to the underlying UUID bytes.
package id

import (
	"encoding/base32"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var encoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// NewID returns a new 26-character lowercase base32 identifier.
func NewID() (string, error) {
	value, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate uuid: %w", err)
	}
	return strings.ToLower(encoding.EncodeToString(value[:])), nil
}
