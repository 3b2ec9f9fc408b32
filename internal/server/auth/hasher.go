// Package auth implements the credential primitives of the backend:
// bcrypt password hashing and RS256 token encoding/decoding.
package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultHashCost is the bcrypt cost factor (2^12 rounds). High enough to
// resist offline brute force, low enough to keep interactive login in the
// tens-to-low-hundreds of milliseconds.
const DefaultHashCost = 12

// Hasher computes and verifies salted bcrypt password digests.
type Hasher struct {
	cost int
}

// NewHasher returns a Hasher with the given bcrypt cost. Costs outside the
// algorithm's supported range fall back to DefaultHashCost.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultHashCost
	}
	return &Hasher{cost: cost}
}

// Hash returns a storable digest of password. A fresh random salt is embedded
// per call, so hashing the same password twice yields different digests.
func (h *Hasher) Hash(password string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(digest), nil
}

// Verify reports whether password matches digest. Malformed input (empty
// strings, corrupt digests) yields false, never a panic or error: a format
// failure must look exactly like a mismatch to the caller.
func (h *Hasher) Verify(password, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}
