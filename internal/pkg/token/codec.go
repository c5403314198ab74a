// internal/pkg/token/codec.go
package token

import (
	"crypto/aes"
	"encoding/base64"
	"errors"
	"strconv"

	"github.com/your-org/storefront-backend/internal/config"
)

// ErrMalformedIdentifier is returned whenever a token cannot be decoded back
// into an internal id. The underlying cause is deliberately not exposed.
var ErrMalformedIdentifier = errors.New("malformed identifier")

// Codec converts internal numeric keys to opaque tokens and back. Tokens are
// deterministic (the same id always encodes to the same token) and exist only
// to keep sequential database keys out of the API surface. They are not an
// access-control mechanism; ownership checks happen at the service layer.
type Codec struct {
	key []byte
}

// NewCodec builds a codec from the configured key, padded or truncated to the
// AES-128 key size.
func NewCodec(cfg *config.Config) *Codec {
	key := make([]byte, aes.BlockSize)
	copy(key, []byte(cfg.Token.Key))
	return &Codec{key: key}
}

// Encode turns an internal id into an opaque URL-safe token.
func (c *Codec) Encode(id uint) string {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		// Key length is fixed at construction, so this cannot happen.
		panic(err)
	}

	plain := pad([]byte(strconv.FormatUint(uint64(id), 10)))
	out := make([]byte, len(plain))
	for i := 0; i < len(plain); i += aes.BlockSize {
		block.Encrypt(out[i:i+aes.BlockSize], plain[i:i+aes.BlockSize])
	}

	return base64.RawURLEncoding.EncodeToString(out)
}

// Decode turns an opaque token back into the internal id. Any tampered,
// truncated or foreign input yields ErrMalformedIdentifier, never a
// plausible-looking id.
func (c *Codec) Decode(tok string) (uint, error) {
	raw, err := base64.RawURLEncoding.DecodeString(tok)
	if err != nil {
		return 0, ErrMalformedIdentifier
	}
	if len(raw) == 0 || len(raw)%aes.BlockSize != 0 {
		return 0, ErrMalformedIdentifier
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		panic(err)
	}

	plain := make([]byte, len(raw))
	for i := 0; i < len(raw); i += aes.BlockSize {
		block.Decrypt(plain[i:i+aes.BlockSize], raw[i:i+aes.BlockSize])
	}

	plain, ok := unpad(plain)
	if !ok {
		return 0, ErrMalformedIdentifier
	}

	id, err := strconv.ParseUint(string(plain), 10, 64)
	if err != nil {
		return 0, ErrMalformedIdentifier
	}

	return uint(id), nil
}

// pad applies PKCS#7 padding up to the AES block size.
func pad(b []byte) []byte {
	n := aes.BlockSize - len(b)%aes.BlockSize
	padded := make([]byte, len(b)+n)
	copy(padded, b)
	for i := len(b); i < len(padded); i++ {
		padded[i] = byte(n)
	}
	return padded
}

// unpad strips and validates PKCS#7 padding.
func unpad(b []byte) ([]byte, bool) {
	if len(b) == 0 {
		return nil, false
	}
	n := int(b[len(b)-1])
	if n == 0 || n > aes.BlockSize || n > len(b) {
		return nil, false
	}
	for _, p := range b[len(b)-n:] {
		if int(p) != n {
			return nil, false
		}
	}
	return b[:len(b)-n], true
}
