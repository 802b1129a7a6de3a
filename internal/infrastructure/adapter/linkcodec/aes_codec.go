package linkcodec

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/amirhossein-jamali/payment-gateway/internal/domain/port/gateway"
)

// KeySize is the AES-256 key length in bytes
const KeySize = 32

// AESCodec seals transaction ids into "nonceHex:cipherHex" tokens with
// AES-256-GCM. Tampered or foreign tokens fail authentication.
type AESCodec struct {
	aead   cipher.AEAD
	random io.Reader
}

var _ gateway.LinkCodec = (*AESCodec)(nil)

// NewAESCodec builds a codec from a 64 character hex key
func NewAESCodec(hexKey string) (*AESCodec, error) {
	key, err := hex.DecodeString(strings.TrimSpace(hexKey))
	if err != nil {
		return nil, fmt.Errorf("link key is not hex: %w", err)
	}
	if len(key) != KeySize {
		return nil, fmt.Errorf("link key must be %d bytes, got %d", KeySize, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create gcm: %w", err)
	}
	return &AESCodec{aead: aead, random: rand.Reader}, nil
}

// Encode returns a fresh token for the transaction id. Two calls never
// return the same token.
func (c *AESCodec) Encode(transactionID string) (string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(c.random, nonce); err != nil {
		return "", fmt.Errorf("failed to read nonce: %w", err)
	}
	sealed := c.aead.Seal(nil, nonce, []byte(transactionID), nil)
	return hex.EncodeToString(nonce) + ":" + hex.EncodeToString(sealed), nil
}

// Decode opens a token. Any malformed, truncated or tampered input returns false.
func (c *AESCodec) Decode(token string) (string, bool) {
	nonceHex, cipherHex, ok := strings.Cut(strings.TrimSpace(token), ":")
	if !ok {
		return "", false
	}

	nonce, err := hex.DecodeString(nonceHex)
	if err != nil || len(nonce) != c.aead.NonceSize() {
		return "", false
	}
	sealed, err := hex.DecodeString(cipherHex)
	if err != nil || len(sealed) < c.aead.Overhead() {
		return "", false
	}

	plain, err := c.aead.Open(nil, nonce, sealed, nil)
	if err != nil || len(plain) == 0 {
		return "", false
	}
	return string(plain), true
}
