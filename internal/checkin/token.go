// Package checkin implements the check-in token codec and the redemption
// coordinator.
package checkin

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/cornerstone-fellowship/backend/internal/apperr"
	"github.com/cornerstone-fellowship/backend/internal/models"
)

const tokenDelimiter = ":"

// Codec encodes a registrant's email into an opaque check-in token and back.
//
// The wire form is hex(iv):hex(ciphertext), AES-256-CBC under a key derived
// by hashing the shared secret. A fresh IV is drawn per encode, so two tokens
// for the same email never compare equal; redemption must decode and compare
// emails, never tokens. The scheme carries no authentication tag, kept as-is
// for compatibility with tokens already in the field, so decode treats every
// structural or padding fault as the same typed failure.
type Codec struct {
	key []byte
}

// NewCodec derives the fixed-length AES key from the shared secret.
func NewCodec(secret string) *Codec {
	key := sha256.Sum256([]byte(secret))
	return &Codec{key: key[:]}
}

// Encode encrypts the normalized email into a token.
func (c *Codec) Encode(email string) (string, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", fmt.Errorf("init cipher: %w", err)
	}

	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("generate iv: %w", err)
	}

	plaintext := pkcs7Pad([]byte(models.NormalizeEmail(email)), aes.BlockSize)
	ciphertext := make([]byte, len(plaintext))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, plaintext)

	return hex.EncodeToString(iv) + tokenDelimiter + hex.EncodeToString(ciphertext), nil
}

// Decode recovers the email from a token. Any malformed input, wrong part
// count, or decryption failure comes back as an InvalidToken fault, never a
// panic.
func (c *Codec) Decode(token string) (string, error) {
	parts := strings.Split(token, tokenDelimiter)
	if len(parts) != 2 {
		return "", apperr.NewInvalidTokenError("malformed token", nil)
	}

	iv, err := hex.DecodeString(parts[0])
	if err != nil || len(iv) != aes.BlockSize {
		return "", apperr.NewInvalidTokenError("malformed token", err)
	}
	ciphertext, err := hex.DecodeString(parts[1])
	if err != nil || len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return "", apperr.NewInvalidTokenError("malformed token", err)
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", fmt.Errorf("init cipher: %w", err)
	}
	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)

	email, err := pkcs7Unpad(plaintext, aes.BlockSize)
	if err != nil {
		return "", apperr.NewInvalidTokenError("undecodable token", err)
	}
	return string(email), nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	pad := blockSize - len(data)%blockSize
	out := make([]byte, len(data)+pad)
	copy(out, data)
	for i := len(data); i < len(out); i++ {
		out[i] = byte(pad)
	}
	return out
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, fmt.Errorf("invalid padded length %d", len(data))
	}
	pad := int(data[len(data)-1])
	if pad == 0 || pad > blockSize || pad > len(data) {
		return nil, fmt.Errorf("invalid padding byte %d", pad)
	}
	for _, b := range data[len(data)-pad:] {
		if int(b) != pad {
			return nil, fmt.Errorf("inconsistent padding")
		}
	}
	return data[:len(data)-pad], nil
}
