// Package secret seals session tokens before they are written to disk.
package secret

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	"github.com/custodia-labs/chat-login/internal/core/domain"
)

const (
	// sealVersion is the version byte for the sealed blob format
	sealVersion = 0x01

	// nonceSize is the AES-GCM nonce size (12 bytes is standard)
	nonceSize = 12

	// KeySize is the required key size for AES-256
	KeySize = 32

	hkdfInfo = "chat-login session token v1"
)

var (
	// ErrInvalidKeySize is returned when the encryption key is not 32 bytes.
	ErrInvalidKeySize = errors.New("encryption key must be 32 bytes")

	// ErrEmptySecret is returned when no key material is configured.
	ErrEmptySecret = errors.New("encryption secret is empty")

	// ErrInvalidBlobSize is returned when the sealed blob is too small.
	ErrInvalidBlobSize = errors.New("sealed blob is too small")

	// ErrUnsupportedVersion is returned when the blob version is not supported.
	ErrUnsupportedVersion = errors.New("unsupported sealed blob version")

	// ErrOpenFailed is returned when a blob cannot be opened (wrong key,
	// corrupted data or a blob stored under another server URL).
	ErrOpenFailed = errors.New("failed to open sealed blob")
)

// Sealer encrypts tokens with AES-256-GCM. The server URL is bound as
// additional data, so a blob copied to another server's row will not open.
// Blob format: version(1) || nonce(12) || ciphertext(N)
type Sealer struct {
	aead cipher.AEAD
}

// NewSealer creates a sealer with a raw 32-byte key.
func NewSealer(key []byte) (*Sealer, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: got %d bytes", ErrInvalidKeySize, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create AES cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}

	return &Sealer{aead: aead}, nil
}

// NewSealerFromSecret derives the key from a passphrase with HKDF-SHA256.
// salt scopes the key; callers use the store name.
func NewSealerFromSecret(secret, salt string) (*Sealer, error) {
	key, err := DeriveKey(secret, salt)
	if err != nil {
		return nil, err
	}
	return NewSealer(key)
}

// DeriveKey expands a passphrase into a 32-byte key.
func DeriveKey(secret, salt string) ([]byte, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	key := make([]byte, KeySize)
	r := hkdf.New(sha256.New, []byte(secret), []byte(salt), []byte(hkdfInfo))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	return key, nil
}

// Seal encrypts plaintext bound to additionalData.
func (s *Sealer) Seal(plaintext, additionalData []byte) ([]byte, error) {
	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	ciphertext := s.aead.Seal(nil, nonce, plaintext, additionalData)

	blob := make([]byte, 1+nonceSize+len(ciphertext))
	blob[0] = sealVersion
	copy(blob[1:1+nonceSize], nonce)
	copy(blob[1+nonceSize:], ciphertext)

	return blob, nil
}

// Open decrypts a blob produced by Seal with the same additionalData.
func (s *Sealer) Open(blob, additionalData []byte) ([]byte, error) {
	if len(blob) < 1+nonceSize+s.aead.Overhead() {
		return nil, ErrInvalidBlobSize
	}

	if version := blob[0]; version != sealVersion {
		return nil, fmt.Errorf("%w: got version %d", ErrUnsupportedVersion, version)
	}

	plaintext, err := s.aead.Open(nil, blob[1:1+nonceSize], blob[1+nonceSize:], additionalData)
	if err != nil {
		return nil, ErrOpenFailed
	}
	return plaintext, nil
}

// SealToken encrypts a session token for serverURL.
func (s *Sealer) SealToken(serverURL string, token *domain.Token) ([]byte, error) {
	plaintext, err := json.Marshal(token)
	if err != nil {
		return nil, fmt.Errorf("marshal token: %w", err)
	}
	return s.Seal(plaintext, []byte(serverURL))
}

// OpenToken decrypts a session token sealed for serverURL.
func (s *Sealer) OpenToken(serverURL string, blob []byte) (*domain.Token, error) {
	plaintext, err := s.Open(blob, []byte(serverURL))
	if err != nil {
		return nil, err
	}
	var token domain.Token
	if err := json.Unmarshal(plaintext, &token); err != nil {
		return nil, fmt.Errorf("unmarshal token: %w", err)
	}
	return &token, nil
}
