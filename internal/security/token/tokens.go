package tokens

import (
	"crypto/rand"
	"encoding/base64"
)

// OpaqueTokenBytes son los bytes de entropía del token de cuenta.
// 32 bytes = 256 bits; el mínimo de diseño es 128.
const OpaqueTokenBytes = 32

// GenerateOpaqueToken genera un token opaco aleatorio (base64url sin padding).
func GenerateOpaqueToken(nBytes int) (string, error) {
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Generate es el TokenGenerator por defecto para AccountStore.
func Generate() (string, error) {
	return GenerateOpaqueToken(OpaqueTokenBytes)
}
