package sealbox

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha512"
	"errors"
	"fmt"
	"os"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// Version is the sealed file format version written by Encrypt.
	Version byte = 1

	// SaltSize is the length of the random PBKDF2 salt.
	SaltSize = 16

	// Iterations is the PBKDF2 work factor.
	Iterations = 100_000

	keySize = 32
)

var magic = []byte("SENV")

// Errors returned by Decrypt.
var (
	// ErrMalformed is returned when data is not a sealed file of a known version.
	ErrMalformed = errors.New("sealbox: malformed sealed data")

	// ErrAuth is returned when the key is wrong or the data was modified.
	ErrAuth = errors.New("sealbox: authentication failed")

	// ErrEmptyKey is returned when no key is supplied.
	ErrEmptyKey = errors.New("sealbox: empty key")
)

// Box decrypts sealed files from disk.
type Box struct{}

// DecryptFile reads path and decrypts it with key.
func (Box) DecryptFile(path, key string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sealed file %s: %w", path, err)
	}
	return Decrypt(data, key)
}

// Encrypt seals plaintext under key with a fresh salt and nonce.
func Encrypt(plaintext []byte, key string) ([]byte, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}

	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}

	aead, err := newAEAD(key, salt)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	header := headerSize(aead)
	out := make([]byte, 0, header+len(plaintext)+aead.Overhead())
	out = append(out, magic...)
	out = append(out, Version)
	out = append(out, salt...)
	out = append(out, nonce...)

	// The header is authenticated as additional data.
	return aead.Seal(out, nonce, plaintext, out[:header]), nil
}

// Decrypt opens data produced by Encrypt. It never returns plaintext that
// failed authentication.
func Decrypt(data []byte, key string) ([]byte, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}

	prefix := len(magic) + 1
	if len(data) < prefix || !bytes.Equal(data[:len(magic)], magic) {
		return nil, ErrMalformed
	}
	if data[len(magic)] != Version {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrMalformed, data[len(magic)])
	}
	if len(data) < prefix+SaltSize {
		return nil, fmt.Errorf("%w: missing salt", ErrMalformed)
	}

	salt := data[prefix : prefix+SaltSize]
	aead, err := newAEAD(key, salt)
	if err != nil {
		return nil, err
	}

	header := headerSize(aead)
	if len(data) < header+aead.Overhead() {
		return nil, fmt.Errorf(
			"%w: ciphertext too short: expected at least %d bytes, got %d",
			ErrMalformed,
			header+aead.Overhead(),
			len(data),
		)
	}

	nonce := data[prefix+SaltSize : header]
	plaintext, err := aead.Open(nil, nonce, data[header:], data[:header])
	if err != nil {
		return nil, ErrAuth
	}

	return plaintext, nil
}

func newAEAD(key string, salt []byte) (cipher.AEAD, error) {
	derived := pbkdf2.Key([]byte(key), salt, Iterations, keySize, sha512.New)

	block, err := aes.NewCipher(derived)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}
	return aead, nil
}

func headerSize(aead cipher.AEAD) int {
	return len(magic) + 1 + SaltSize + aead.NonceSize()
}
