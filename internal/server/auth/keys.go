package auth

import (
	"crypto/rsa"
	"fmt"
	"os"

	"github.com/golang-jwt/jwt/v5"
)

// KeyPair holds the RSA key material for token signing and verification.
// It is loaded once at process start and treated as immutable afterwards;
// rotating keys requires a redeploy.
type KeyPair struct {
	Private *rsa.PrivateKey
	Public  *rsa.PublicKey
}

// LoadKeyPair reads and parses the PEM-encoded private and public key files.
// Any failure is fatal to startup: the process must not come up without
// working key material.
func LoadKeyPair(privatePath, publicPath string) (*KeyPair, error) {
	privPEM, err := os.ReadFile(privatePath)
	if err != nil {
		return nil, fmt.Errorf("reading private key %s: %w", privatePath, err)
	}
	priv, err := jwt.ParseRSAPrivateKeyFromPEM(privPEM)
	if err != nil {
		return nil, fmt.Errorf("parsing private key %s: %w", privatePath, err)
	}

	pubPEM, err := os.ReadFile(publicPath)
	if err != nil {
		return nil, fmt.Errorf("reading public key %s: %w", publicPath, err)
	}
	pub, err := jwt.ParseRSAPublicKeyFromPEM(pubPEM)
	if err != nil {
		return nil, fmt.Errorf("parsing public key %s: %w", publicPath, err)
	}

	return &KeyPair{Private: priv, Public: pub}, nil
}
