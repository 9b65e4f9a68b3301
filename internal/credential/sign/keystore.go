package sign

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"

	dErrors "pipvc/pkg/domain-errors"
)

// KeyStore is the key-material collaborator consumed by the signer.
// Implementations may be local or remote; all failures are reported as
// signing failures.
type KeyStore interface {
	Sign(ctx context.Context, keyRef string, data []byte) ([]byte, error)
	PublicKey(keyRef string) (ed25519.PublicKey, error)
}

// StaticKeyStore holds deployment keys in memory, keyed by verification
// method reference. Keys are loaded at startup and never change, so no
// locking is needed.
type StaticKeyStore struct {
	keys map[string]ed25519.PrivateKey
}

// NewStaticKeyStore creates an empty key store.
func NewStaticKeyStore() *StaticKeyStore {
	return &StaticKeyStore{keys: make(map[string]ed25519.PrivateKey)}
}

// AddKey registers a private key under a verification method reference.
func (s *StaticKeyStore) AddKey(keyRef string, key ed25519.PrivateKey) {
	s.keys[keyRef] = key
}

// FromSeedHex builds a key store holding one key derived from a
// hex-encoded 32-byte ed25519 seed.
func FromSeedHex(keyRef, seedHex string) (*StaticKeyStore, error) {
	seed, err := hex.DecodeString(seedHex)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeSigningFailed, "signing seed is not valid hex")
	}
	if len(seed) != ed25519.SeedSize {
		return nil, dErrors.New(dErrors.CodeSigningFailed, "signing seed must be 32 bytes")
	}
	store := NewStaticKeyStore()
	store.AddKey(keyRef, ed25519.NewKeyFromSeed(seed))
	return store, nil
}

// GenerateEphemeral builds a key store with a freshly generated key.
// Intended for development; issued proofs do not survive restarts.
func GenerateEphemeral(keyRef string) (*StaticKeyStore, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeSigningFailed, "failed to generate signing key")
	}
	store := NewStaticKeyStore()
	store.AddKey(keyRef, priv)
	return store, nil
}

// Sign signs data with the key registered under keyRef.
func (s *StaticKeyStore) Sign(_ context.Context, keyRef string, data []byte) ([]byte, error) {
	key, ok := s.keys[keyRef]
	if !ok {
		return nil, dErrors.New(dErrors.CodeSigningFailed, "no signing key for "+keyRef)
	}
	return ed25519.Sign(key, data), nil
}

// PublicKey returns the public half of the key registered under keyRef.
func (s *StaticKeyStore) PublicKey(keyRef string) (ed25519.PublicKey, error) {
	key, ok := s.keys[keyRef]
	if !ok {
		return nil, dErrors.New(dErrors.CodeSigningFailed, "no key material for "+keyRef)
	}
	return key.Public().(ed25519.PublicKey), nil
}
