// Package token implements the reversible email token embedded in
// "manage your subscription" links.
//
// The wire format is inherited from previously issued links and cannot
// change without invalidating them: DES in ECB mode with PKCS#5
// padding, keyed by the first 8 bytes of the SHA-256 digest of the
// operator's encryption key, base64-encoded. DES-ECB is weak by modern
// standards; the Codec interface exists so a stronger scheme can be
// introduced for newly issued tokens while this one keeps decoding old
// links.
package token

import (
	"crypto/cipher"
	"crypto/des"
	"crypto/sha256"
	"encoding/base64"

	"github.com/prefeitura-rio/app-subscribe/internal/models"
)

// Codec encrypts a short plaintext into a transport-safe opaque string
// and back.
type Codec interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

type legacyCodec struct {
	block cipher.Block
}

// NewLegacyCodec builds the DES-ECB codec from the operator's
// encryption key. An empty key is a configuration error: the token
// entry path must be disabled instead.
func NewLegacyCodec(encryptionKey string) (Codec, error) {
	if encryptionKey == "" {
		return nil, models.ErrNoEncryptionKey
	}
	digest := sha256.Sum256([]byte(encryptionKey))
	block, err := des.NewCipher(digest[:des.BlockSize])
	if err != nil {
		return nil, err
	}
	return &legacyCodec{block: block}, nil
}

// Encrypt pads the plaintext to the DES block size, encrypts each block
// independently and base64-encodes the result.
func (c *legacyCodec) Encrypt(plaintext string) (string, error) {
	data := pad([]byte(plaintext), des.BlockSize)
	out := make([]byte, len(data))
	for i := 0; i < len(data); i += des.BlockSize {
		c.block.Encrypt(out[i:i+des.BlockSize], data[i:i+des.BlockSize])
	}
	return base64.StdEncoding.EncodeToString(out), nil
}

// Decrypt reverses Encrypt. Any malformed input, including tokens
// produced under a different key, yields ErrTokenInvalid rather than a
// panic or garbage.
func (c *legacyCodec) Decrypt(ciphertext string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", models.ErrTokenInvalid
	}
	if len(data) == 0 || len(data)%des.BlockSize != 0 {
		return "", models.ErrTokenInvalid
	}
	out := make([]byte, len(data))
	for i := 0; i < len(data); i += des.BlockSize {
		c.block.Decrypt(out[i:i+des.BlockSize], data[i:i+des.BlockSize])
	}
	return unpad(out)
}

// pad appends PKCS#5 padding: n bytes of value n, with a full block of
// padding when the length is already a multiple of the block size.
func pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+n)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(n)
	}
	return padded
}

// unpad strips PKCS#5 padding, rejecting pad lengths that could not
// have been produced by pad.
func unpad(data []byte) (string, error) {
	n := int(data[len(data)-1])
	if n < 1 || n > des.BlockSize || n > len(data) {
		return "", models.ErrTokenInvalid
	}
	return string(data[:len(data)-n]), nil
}
