package sqlite

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ericfisherdev/vpsmonitor/internal/domain/port/driven"
)

// encryptedPrefix marks cookie values sealed by cookieCipher. Values without it
// are plaintext written before a key was configured.
const encryptedPrefix = "enc:v1:"

// cookieCipher seals session cookies with AES-256-GCM. A nil key disables
// encryption and values are stored as given.
type cookieCipher struct {
	key []byte
}

// seal encrypts plaintext and returns the prefixed base64 encoding of
// nonce (12 bytes) || ciphertext || tag.
func (c cookieCipher) seal(plaintext string) (string, error) {
	if c.key == nil {
		return plaintext, nil
	}

	gcm, err := newGCM(c.key)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("rand nonce: %w", err)
	}

	sealed := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return encryptedPrefix + base64.StdEncoding.EncodeToString(sealed), nil
}

// open reverses seal. Unprefixed values are returned unchanged.
func (c cookieCipher) open(stored string) (string, error) {
	encoded, ok := strings.CutPrefix(stored, encryptedPrefix)
	if !ok {
		return stored, nil
	}
	if c.key == nil {
		return "", driven.ErrEncryptionKeyInvalid
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("base64 decode: %w", err)
	}

	gcm, err := newGCM(c.key)
	if err != nil {
		return "", err
	}

	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return "", errors.New("ciphertext too short")
	}

	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", driven.ErrEncryptionKeyInvalid, err)
	}

	return string(plaintext), nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("aes.NewCipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("cipher.NewGCM: %w", err)
	}
	return gcm, nil
}
