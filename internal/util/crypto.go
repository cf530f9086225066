package util

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
)

// deriveKey always yields a 32 byte key so any configured string works.
func deriveKey(keyStr string) []byte {
	sum := sha256.Sum256([]byte(keyStr))
	return sum[:]
}

// EncryptAES encrypts with AES-256-GCM and returns nonce+ciphertext.
func EncryptAES(keyStr string, plaintext []byte) ([]byte, error) {
	aesgcm, err := newGCM(keyStr)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, aesgcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("nonce: %w", err)
	}

	ciphertext := aesgcm.Seal(nil, nonce, plaintext, nil)
	return append(nonce, ciphertext...), nil
}

// DecryptAES reverses EncryptAES; data must be nonce+ciphertext.
func DecryptAES(keyStr string, data []byte) ([]byte, error) {
	aesgcm, err := newGCM(keyStr)
	if err != nil {
		return nil, err
	}

	ns := aesgcm.NonceSize()
	if len(data) < ns {
		return nil, fmt.Errorf("cipher too short")
	}
	nonce, ciphertext := data[:ns], data[ns:]

	plaintext, err := aesgcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("decrypt: %w", err)
	}
	return plaintext, nil
}

func newGCM(keyStr string) (cipher.AEAD, error) {
	block, err := aes.NewCipher(deriveKey(keyStr))
	if err != nil {
		return nil, fmt.Errorf("new cipher: %w", err)
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("new gcm: %w", err)
	}
	return aesgcm, nil
}

// EncryptField encrypts plain to base64 text. With no key the value is stored as is.
func EncryptField(keyStr, plain string) (string, error) {
	if plain == "" || keyStr == "" {
		return plain, nil
	}
	b, err := EncryptAES(keyStr, []byte(plain))
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// DecryptField reverses EncryptField, returning the input unchanged when it
// is not ciphertext under keyStr (rows written before a key was configured).
func DecryptField(keyStr, cipherStr string) string {
	if cipherStr == "" || keyStr == "" {
		return cipherStr
	}
	b, err := base64.StdEncoding.DecodeString(cipherStr)
	if err != nil {
		return cipherStr
	}
	plain, err := DecryptAES(keyStr, b)
	if err != nil {
		return cipherStr
	}
	return string(plain)
}
