package cryptox

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// TokenBytes is the entropy of a session or admin token before encoding.
// 32 bytes gives 256 bits, encoded as 64 lowercase hex characters. The
// credential store indexes tokens by their exact hex form, so the encoding
// is part of the wire contract and must not change.
const TokenBytes = 32

// GenerateToken creates an opaque bearer token: TokenBytes of
// cryptographically secure randomness, lowercase hex encoded.
// Returns an error only if the system random source fails.
func GenerateToken() (string, error) {
	buf := make([]byte, TokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// MustGenerateToken is like GenerateToken but panics on error. A failing
// CSPRNG is a fatal process condition, not something to recover from.
func MustGenerateToken() string {
	token, err := GenerateToken()
	if err != nil {
		panic(fmt.Sprintf("cryptox: failed to generate token: %v", err))
	}
	return token
}
