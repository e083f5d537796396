// Package security holds the RS256 signing and key-management adapters.
// Key generation itself is explicitly out of scope per the purpose/scope
// section this system follows (JWT signing key generation and RSA material
// serialization are named external collaborators), so it leans on
// crypto/rsa directly rather than reaching for a third-party KMS client —
// there is nothing to swap in, since no pack example ships a local RSA
// keypair provisioner.
package security

import (
	"crypto/rand"
	"crypto/rsa"

	"github.com/google/uuid"
)

// KeyMaterial owns the RSA keypair tokens are signed with, and the bits
// needed to publish it as a JWKS document.
type KeyMaterial struct {
	Kid        string
	PrivateKey *rsa.PrivateKey
}

// NewKeyMaterial generates a fresh 2048-bit RSA keypair. There is no
// persistence contract for key material across restarts (spec explicitly
// leaves key serialization external); every process start mints its own.
func NewKeyMaterial() (*KeyMaterial, error) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, err
	}
	return &KeyMaterial{Kid: uuid.NewString(), PrivateKey: key}, nil
}

// JWK is the single public key entry the JWKS endpoint serves.
type JWK struct {
	Kty string `json:"kty"`
	Use string `json:"use"`
	Kid string `json:"kid"`
	Alg string `json:"alg"`
	N   string `json:"n"`
	E   string `json:"e"`
}

// JWKSDocument is the {"keys": [...]} shape the HTTP boundary serves at
// GET /<UserPoolId>/.well-known/jwks.json.
type JWKSDocument struct {
	Keys []JWK `json:"keys"`
}

func (k *KeyMaterial) JWKS() JWKSDocument {
	pub := k.PrivateKey.PublicKey
	return JWKSDocument{
		Keys: []JWK{
			{
				Kty: "RSA",
				Use: "sig",
				Kid: k.Kid,
				Alg: "RS256",
				N:   base64URLBigInt(pub.N.Bytes()),
				E:   base64URLBigInt(bigIntFromInt(pub.E).Bytes()),
			},
		},
	}
}
