// Package crypto seals upstream platform credentials before they reach
// the database.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

var (
	// ErrKeyRequired is returned when the encryption passphrase is empty.
	ErrKeyRequired = errors.New("crypto: encryption key must not be empty")
	// ErrDecryptFailed is returned when decryption fails due to invalid ciphertext or wrong key.
	ErrDecryptFailed = errors.New("crypto: decryption failed, invalid ciphertext or wrong key")
)

const keyLength = 32 // AES-256

// TokenCipher provides AES-256-GCM authenticated encryption for access
// tokens. The storage key is derived from a deployment passphrase with
// PBKDF2-SHA256, so operators rotate a passphrase instead of managing raw
// key material.
type TokenCipher struct {
	gcm cipher.AEAD
}

// NewTokenCipher derives the storage key from the passphrase and salt.
// Iterations below 1 fall back to the OWASP-recommended 600k.
func NewTokenCipher(passphrase, salt string, iterations int) (*TokenCipher, error) {
	if passphrase == "" {
		return nil, ErrKeyRequired
	}
	if iterations < 1 {
		iterations = 600_000
	}

	key := pbkdf2.Key([]byte(passphrase), []byte(salt), iterations, keyLength, sha256.New)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &TokenCipher{gcm: gcm}, nil
}

// Seal encrypts plaintext and returns base64(nonce || ciphertext || tag).
// Empty strings are returned as-is.
func (c *TokenCipher) Seal(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	nonce := make([]byte, c.gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	// Seal appends ciphertext and tag to nonce: nonce || ciphertext || tag
	sealed := c.gcm.Seal(nonce, nonce, []byte(plaintext), nil)

	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Open decrypts base64(nonce || ciphertext || tag) and returns plaintext.
// Empty strings are returned as-is.
func (c *TokenCipher) Open(sealed string) (string, error) {
	if sealed == "" {
		return "", nil
	}

	data, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", fmt.Errorf("%w: base64 decode failed", ErrDecryptFailed)
	}

	nonceSize := c.gcm.NonceSize()
	if len(data) < nonceSize+c.gcm.Overhead() {
		return "", fmt.Errorf("%w: ciphertext too short", ErrDecryptFailed)
	}

	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	plaintext, err := c.gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("%w: authentication failed", ErrDecryptFailed)
	}

	return string(plaintext), nil
}
