// Package crypto seals per-tenant judge credentials with envelope encryption:
// a root key wraps each tenant's data key, and the data key wraps the
// credentials. Both layers use AES-256-GCM with the nonce prefixed to the
// ciphertext.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

const keySize = 32

var (
	ErrInvalidRootKey     = errors.New("ROOT_ENCRYPTION_KEY must be 32 bytes hex-encoded (64 hex chars)")
	ErrCiphertextTooShort = errors.New("ciphertext too short")
)

// Encryptor holds the root key.
type Encryptor struct {
	root cipher.AEAD
}

func NewEncryptor(rootKeyHex string) (*Encryptor, error) {
	key, err := hex.DecodeString(rootKeyHex)
	if err != nil || len(key) != keySize {
		return nil, ErrInvalidRootKey
	}
	aead, err := newAEAD(key)
	if err != nil {
		return nil, err
	}
	return &Encryptor{root: aead}, nil
}

// NewDataKey returns a fresh tenant data key and its root-sealed form for storage.
func (e *Encryptor) NewDataKey() (plain, sealed []byte, err error) {
	plain = make([]byte, keySize)
	if _, err = io.ReadFull(rand.Reader, plain); err != nil {
		return nil, nil, err
	}
	sealed, err = seal(e.root, plain)
	if err != nil {
		return nil, nil, err
	}
	return plain, sealed, nil
}

// OpenDataKey unwraps a stored tenant data key.
func (e *Encryptor) OpenDataKey(sealed []byte) ([]byte, error) {
	key, err := open(e.root, sealed)
	if err != nil {
		return nil, fmt.Errorf("open data key: %w", err)
	}
	return key, nil
}

// SealJSON marshals v and encrypts it with a tenant data key.
func SealJSON(dataKey []byte, v any) ([]byte, error) {
	plaintext, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return Seal(dataKey, plaintext)
}

// OpenJSON decrypts data with a tenant data key and unmarshals it into v.
func OpenJSON(dataKey, data []byte, v any) error {
	plaintext, err := Open(dataKey, data)
	if err != nil {
		return err
	}
	return json.Unmarshal(plaintext, v)
}

func Seal(dataKey, plaintext []byte) ([]byte, error) {
	aead, err := newAEAD(dataKey)
	if err != nil {
		return nil, err
	}
	return seal(aead, plaintext)
}

func Open(dataKey, data []byte) ([]byte, error) {
	aead, err := newAEAD(dataKey)
	if err != nil {
		return nil, err
	}
	return open(aead, data)
}

func newAEAD(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// seal output format: [nonce | ciphertext+tag].
func seal(aead cipher.AEAD, plaintext []byte) ([]byte, error) {
	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

func open(aead cipher.AEAD, data []byte) ([]byte, error) {
	n := aead.NonceSize()
	if len(data) < n {
		return nil, ErrCiphertextTooShort
	}
	return aead.Open(nil, data[:n], data[n:], nil)
}
