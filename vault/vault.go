// Package vault seals the saved MPIN before it enters the general
// credential store. The replayed-PIN-for-biometric-unlock pattern is
// plaintext-equivalent credential caching; sealing it under a key held by
// the platform keystore keeps the general key-value store from ever
// holding a usable PIN.
package vault

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

var (
	// ErrKeySize indicates the vault key has the wrong length.
	ErrKeySize = errors.New("vault: key must be 32 bytes")
	// ErrSealInvalid indicates a sealed blob failed authentication or is
	// malformed.
	ErrSealInvalid = errors.New("vault: sealed value invalid")
)

// Vault seals and opens short secrets.
type Vault interface {
	Seal(plaintext string) (string, error)
	Open(sealed string) (string, error)
}

// AEAD is a Vault backed by XChaCha20-Poly1305. The caller supplies the
// key, typically unwrapped from the platform keystore at process start.
type AEAD struct {
	aead interface {
		Seal(dst, nonce, plaintext, additionalData []byte) []byte
		Open(dst, nonce, ciphertext, additionalData []byte) ([]byte, error)
	}
}

// NewAEAD creates an AEAD vault from a 32-byte key.
func NewAEAD(key []byte) (*AEAD, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, ErrKeySize
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("vault: %w", err)
	}
	return &AEAD{aead: aead}, nil
}

// Seal encrypts plaintext under a fresh random nonce and returns
// base64(nonce || ciphertext).
func (v *AEAD) Seal(plaintext string) (string, error) {
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("vault: nonce: %w", err)
	}
	sealed := v.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.RawStdEncoding.EncodeToString(sealed), nil
}

// Open decrypts a blob produced by Seal.
func (v *AEAD) Open(sealed string) (string, error) {
	raw, err := base64.RawStdEncoding.DecodeString(sealed)
	if err != nil {
		return "", ErrSealInvalid
	}
	if len(raw) < chacha20poly1305.NonceSizeX {
		return "", ErrSealInvalid
	}
	nonce, ciphertext := raw[:chacha20poly1305.NonceSizeX], raw[chacha20poly1305.NonceSizeX:]
	plaintext, err := v.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ErrSealInvalid
	}
	return string(plaintext), nil
}
