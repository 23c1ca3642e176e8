package storage

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

// MagicGCM prefixes objects sealed by EncryptGCM
const MagicGCM = "GCM3NCR0"

const (
	saltSize   = 16
	nonceSize  = 12
	kdfRounds  = 100000
	keySize    = 32
	headerSize = len(MagicGCM) + saltSize + nonceSize
)

// EncryptGCM seals data with AES-256-GCM under a PBKDF2-derived key.
// Format: magic(8) + salt(16) + nonce(12) + ciphertext + tag(16)
func EncryptGCM(data []byte, password string) ([]byte, error) {
	salt := make([]byte, saltSize)
	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	gcm, err := newGCM(password, salt)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, headerSize+len(data)+gcm.Overhead())
	out = append(out, MagicGCM...)
	out = append(out, salt...)
	out = append(out, nonce...)
	return gcm.Seal(out, nonce, data, nil), nil
}

// DecryptGCM opens data produced by EncryptGCM
func DecryptGCM(data []byte, password string) ([]byte, error) {
	if len(data) < headerSize+16 {
		return nil, fmt.Errorf("GCM data too short: %d bytes", len(data))
	}
	if string(data[:len(MagicGCM)]) != MagicGCM {
		return nil, fmt.Errorf("unknown encryption format %q", data[:len(MagicGCM)])
	}
	salt := data[len(MagicGCM) : len(MagicGCM)+saltSize]
	nonce := data[len(MagicGCM)+saltSize : headerSize]

	gcm, err := newGCM(password, salt)
	if err != nil {
		return nil, err
	}
	plaintext, err := gcm.Open(nil, nonce, data[headerSize:], nil)
	if err != nil {
		return nil, fmt.Errorf("GCM decryption failed: %w", err)
	}
	return plaintext, nil
}

func newGCM(password string, salt []byte) (cipher.AEAD, error) {
	key := pbkdf2.Key([]byte(password), salt, kdfRounds, keySize, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return gcm, nil
}
