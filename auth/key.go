// Package auth provides caller identities: ed25519 keys addressed by a
// did:key style identifier, and self-certifying tokens that prove control of
// one.
package auth

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// DIDPrefix starts every identity string
const DIDPrefix = "did:key:"

var ErrInvalidDID = errors.New("invalid did")

// Key is a private signing key
type Key struct {
	private ed25519.PrivateKey
}

// NewKey derives a key from a 32 byte seed
func NewKey(seed []byte) (*Key, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("seed must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	return &Key{private: ed25519.NewKeyFromSeed(seed)}, nil
}

func GenerateKey() (*Key, error) {
	_, private, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	return &Key{private: private}, nil
}

// ParseSeed decodes a seed as printed by [Key.EncodedSeed]
func ParseSeed(encoded string) (*Key, error) {
	seed, err := hex.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return nil, fmt.Errorf("failed to decode seed: %w", err)
	}
	return NewKey(seed)
}

func (k *Key) Seed() []byte {
	return k.private.Seed()
}

// EncodedSeed returns the seed hex encoded
func (k *Key) EncodedSeed() string {
	return hex.EncodeToString(k.Seed())
}

func (k *Key) PublicKey() ed25519.PublicKey {
	return k.private.Public().(ed25519.PublicKey)
}

// DID returns the identity controlled by this key
func (k *Key) DID() string {
	return DIDFromPublicKey(k.PublicKey())
}

func DIDFromPublicKey(pub ed25519.PublicKey) string {
	return DIDPrefix + base64.RawURLEncoding.EncodeToString(pub)
}

// PublicKeyFromDID recovers the verification key embedded in did
func PublicKeyFromDID(did string) (ed25519.PublicKey, error) {
	encoded, ok := strings.CutPrefix(did, DIDPrefix)
	if !ok {
		return nil, fmt.Errorf("%w: missing %q prefix", ErrInvalidDID, DIDPrefix)
	}
	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDID, err)
	}
	if len(raw) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("%w: key must be %d bytes, got %d", ErrInvalidDID, ed25519.PublicKeySize, len(raw))
	}
	return ed25519.PublicKey(raw), nil
}
