package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/silvercar/backend/internal/common"
)

// Claims is the key-value payload embedded in a signed token.
type Claims map[string]any

// Claim names used by this backend. "iat", "exp" and "jti" are reserved and
// always set by Encode; issuer-chosen claims must not use them.
const (
	ClaimEmail    = "email"
	ClaimUserID   = "user_id"
	ClaimUsername = "username"
	ClaimRole     = "role"
	ClaimType     = "type"
)

// TokenTypePasswordReset discriminates reset tokens from ordinary access
// tokens so one can never be redeemed as the other.
const TokenTypePasswordReset = "password_reset"

// Codec encodes and decodes signed, time-bound tokens using RS256.
// The key pair is injected once at construction and never re-read.
type Codec struct {
	keys *KeyPair
}

func NewCodec(keys *KeyPair) *Codec {
	return &Codec{keys: keys}
}

// Encode signs claims with the private key, adding the reserved iat/exp/jti
// claims. The expiry is now+ttl; a non-positive ttl produces an
// already-expired token.
func (c *Codec) Encode(claims Claims, ttl time.Duration) (string, error) {
	now := time.Now()

	payload := jwt.MapClaims{}
	for k, v := range claims {
		payload[k] = v
	}
	payload["iat"] = jwt.NewNumericDate(now)
	payload["exp"] = jwt.NewNumericDate(now.Add(ttl))
	payload["jti"] = uuid.NewString()

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, payload)

	signed, err := token.SignedString(c.keys.Private)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Decode verifies the signature against the public key and checks expiry.
// It returns common.ErrTokenExpired for expired tokens and
// common.ErrInvalidToken for anything else (bad signature, malformed
// structure, wrong algorithm). Callers treat both the same unless they need
// to distinguish expiry for UX messaging.
func (c *Codec) Decode(tokenString string) (Claims, error) {
	payload := jwt.MapClaims{}

	token, err := jwt.ParseWithClaims(tokenString, payload, func(t *jwt.Token) (any, error) {
		return c.keys.Public, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}
	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	return Claims(payload), nil
}

// StringClaim returns the named claim as a string, with ok=false when the
// claim is absent or not a string.
func (cl Claims) StringClaim(name string) (string, bool) {
	v, ok := cl[name]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}
