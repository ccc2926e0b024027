// Package codec implements the reversible keyed obfuscation applied to all
// persisted field values. It is deliberately not a real cipher: the transform
// must stay bit-exact so that values written by earlier deployments keep
// decoding.
package codec

import (
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"math/bits"

	"github.com/shopspring/decimal"
)

// ErrDecode is returned when encoded input cannot be decoded.
var ErrDecode = errors.New("codec: malformed encoded value")

// Codec performs symmetric field-level encoding keyed by a shared secret.
type Codec struct {
	key []byte
}

// New creates a codec from the shared secret key.
func New(key string) (*Codec, error) {
	if len(key) == 0 {
		return nil, fmt.Errorf("codec key must not be empty")
	}
	return &Codec{key: []byte(key)}, nil
}

// EncodeText XORs every byte with the key (cycled) and Base64-encodes the
// result. The empty string encodes to "".
func (c *Codec) EncodeText(s string) string {
	if s == "" {
		return ""
	}
	raw := []byte(s)
	out := make([]byte, len(raw))
	for i, b := range raw {
		out[i] = b ^ c.key[i%len(c.key)]
	}
	return base64.StdEncoding.EncodeToString(out)
}

// DecodeText reverses EncodeText. Malformed Base64 yields ErrDecode.
func (c *Codec) DecodeText(s string) (string, error) {
	if s == "" {
		return "", nil
	}
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecode, err)
	}
	out := make([]byte, len(raw))
	for i, b := range raw {
		out[i] = b ^ c.key[i%len(c.key)]
	}
	return string(out), nil
}

// EncodeInt64 obfuscates a 64-bit value. For each key byte in forward order
// the value is XORed with the byte, then rotated left by 8 bits.
func (c *Codec) EncodeInt64(n int64) int64 {
	v := uint64(n)
	for _, b := range c.key {
		v ^= uint64(b)
		v = bits.RotateLeft64(v, 8)
	}
	return int64(v)
}

// DecodeInt64 mirrors EncodeInt64 in exact reverse order: for each key byte
// backwards, rotate right by 8 bits first, then XOR. The operation order is
// load-bearing.
func (c *Codec) DecodeInt64(n int64) int64 {
	v := uint64(n)
	for i := len(c.key) - 1; i >= 0; i-- {
		v = bits.RotateLeft64(v, -8)
		v ^= uint64(c.key[i])
	}
	return int64(v)
}

// EncodeDecimal obfuscates the coefficient of a decimal while carrying its
// exponent through unchanged. For each key byte in forward order the
// coefficient is incremented by the byte value, then shifted left 8 bits.
func (c *Codec) EncodeDecimal(d decimal.Decimal) decimal.Decimal {
	coeff := new(big.Int).Set(d.Coefficient())
	for _, b := range c.key {
		coeff.Add(coeff, big.NewInt(int64(b)))
		coeff.Lsh(coeff, 8)
	}
	return decimal.NewFromBigInt(coeff, d.Exponent())
}

// DecodeDecimal mirrors EncodeDecimal in exact reverse order: for each key
// byte backwards, shift right 8 bits first, then subtract. Add/shift-left is
// only invertible because decode pairs shift-right/subtract in reversed order.
func (c *Codec) DecodeDecimal(d decimal.Decimal) decimal.Decimal {
	coeff := new(big.Int).Set(d.Coefficient())
	for i := len(c.key) - 1; i >= 0; i-- {
		coeff.Rsh(coeff, 8)
		coeff.Sub(coeff, big.NewInt(int64(c.key[i])))
	}
	return decimal.NewFromBigInt(coeff, d.Exponent())
}
