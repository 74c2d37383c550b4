// Package secrets seals GitHub access tokens before they are stored.
package secrets

import (
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/nacl/secretbox"
)

const nonceSize = 24

// argon2id parameters. The salt is fixed so a passphrase always yields the same key
// across restarts.
const (
	kdfTime    = 1
	kdfMemory  = 64 * 1024
	kdfThreads = 4
)

var kdfSalt = []byte("devpulse-token-seal/github-access-token")

// ErrMalformed is returned when a sealed value is truncated or was not sealed with this key.
var ErrMalformed = errors.New("secrets: malformed or foreign sealed value")

// Sealer encrypts small secrets with NaCl secretbox under a key derived from a passphrase.
type Sealer struct {
	key [32]byte
}

// NewSealer derives the box key from passphrase with argon2id.
func NewSealer(passphrase string) (*Sealer, error) {
	if passphrase == "" {
		return nil, errors.New("secrets: empty passphrase")
	}
	s := &Sealer{}
	copy(s.key[:], deriveKey(passphrase))
	return s, nil
}

func deriveKey(passphrase string) []byte {
	return argon2.IDKey([]byte(passphrase), kdfSalt, kdfTime, kdfMemory, kdfThreads, 32)
}

// Seal returns nonce || box(plaintext).
func (s *Sealer) Seal(plaintext []byte) ([]byte, error) {
	var nonce [nonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	return secretbox.Seal(nonce[:], plaintext, &nonce, &s.key), nil
}

// Open reverses Seal.
func (s *Sealer) Open(sealed []byte) ([]byte, error) {
	if len(sealed) < nonceSize+secretbox.Overhead {
		return nil, ErrMalformed
	}
	var nonce [nonceSize]byte
	copy(nonce[:], sealed[:nonceSize])
	plain, ok := secretbox.Open(nil, sealed[nonceSize:], &nonce, &s.key)
	if !ok {
		return nil, ErrMalformed
	}
	return plain, nil
}
