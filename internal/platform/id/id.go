// Package id generates opaque entity identifiers.
package id

import (
	"encoding/base32"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// NewID returns a new 26-character lowercase base32 identifier.
//
// The identifier encodes a random UUIDv4, so it keeps UUID collision
// guarantees while staying URL-safe and case-insensitive.
func NewID() (string, error) {
	u, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate uuid: %w", err)
	}
	encoded := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(u[:])
	return strings.ToLower(encoded), nil
}
