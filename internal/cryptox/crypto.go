// Package cryptox holds the primitives behind the credential vault:
// argon2id key derivation and AES-GCM sealing into opaque blobs.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"errors"

	"golang.org/x/crypto/argon2"
)

var ErrShortBlob = errors.New("sealed blob is too short")

// DeriveMasterKey stretches a passphrase into a 32-byte AES-256 key.
func DeriveMasterKey(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, 32)
}

// MakeVerifier returns a value that proves knowledge of masterKey without
// revealing it. It is stored next to the salt.
func MakeVerifier(masterKey []byte) []byte {
	hash := sha256.Sum256(masterKey)
	return hash[:]
}

// SubKey derives an independent key for a named purpose (e.g. "session").
func SubKey(masterKey []byte, label string) []byte {
	mac := hmac.New(sha256.New, masterKey)
	mac.Write([]byte(label))
	return mac.Sum(nil)
}

// Seal encrypts plaintext with AES-GCM. The returned blob is nonce||ciphertext.
func Seal(plaintext, key []byte) ([]byte, error) {
	aead, err := newAEAD(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}

	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Open reverses Seal. A wrong key or a tampered blob yields an error.
func Open(blob, key []byte) ([]byte, error) {
	aead, err := newAEAD(key)
	if err != nil {
		return nil, err
	}

	ns := aead.NonceSize()
	if len(blob) < ns+aead.Overhead() {
		return nil, ErrShortBlob
	}

	return aead.Open(nil, blob[:ns], blob[ns:], nil)
}

// SealJSON marshals v and seals the result.
func SealJSON(v any, key []byte) ([]byte, error) {
	plaintext, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return Seal(plaintext, key)
}

// OpenJSON opens blob and unmarshals it into v.
func OpenJSON(blob, key []byte, v any) error {
	plaintext, err := Open(blob, key)
	if err != nil {
		return err
	}
	return json.Unmarshal(plaintext, v)
}

func newAEAD(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
