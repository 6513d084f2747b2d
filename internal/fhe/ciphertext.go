package fhe

import (
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
)

// Scheme is the wire tag every ciphertext envelope must carry. A mismatched
// tag is rejected before any arithmetic happens.
const Scheme = "paillier-v1"

// ErrInvalidCiphertext covers every malformed-envelope case: wrong scheme
// tag, empty or undecodable blob, or a value outside the ciphertext domain.
var ErrInvalidCiphertext = errors.New("fhe: invalid ciphertext")

// Ciphertext is the opaque wire envelope. Equality and ordering over
// ciphertexts are undefined; only this package may look inside.
type Ciphertext struct {
	Scheme string `json:"scheme" binding:"required"`
	Blob   string `json:"blob" binding:"required"`
}

// Seal wraps a raw Paillier value into a wire envelope.
func Seal(c *big.Int) Ciphertext {
	return Ciphertext{
		Scheme: Scheme,
		Blob:   base64.RawURLEncoding.EncodeToString(c.Bytes()),
	}
}

// Open validates the envelope against the given key and returns the raw
// value. All failures map to ErrInvalidCiphertext so callers can abort the
// whole evaluation without partial scoring.
func (ct Ciphertext) Open(pub *PublicKey) (*big.Int, error) {
	if ct.Scheme != Scheme {
		return nil, fmt.Errorf("%w: scheme %q", ErrInvalidCiphertext, ct.Scheme)
	}
	if ct.Blob == "" {
		return nil, fmt.Errorf("%w: empty blob", ErrInvalidCiphertext)
	}
	raw, err := base64.RawURLEncoding.DecodeString(ct.Blob)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCiphertext, err)
	}
	c := new(big.Int).SetBytes(raw)
	if !pub.Valid(c) {
		return nil, fmt.Errorf("%w: value out of range", ErrInvalidCiphertext)
	}
	return c, nil
}

// EncryptSelection encrypts a one-hot choice over numOptions options:
// Enc(1) at the selected index, Enc(0) everywhere else. This is the
// client-side encoding the evaluator expects — it lets the server pick the
// component at the correct index and homomorphically sum match indicators
// without ever seeing which option was chosen.
func EncryptSelection(pub *PublicKey, selected, numOptions int) ([]Ciphertext, error) {
	if selected < 0 || selected >= numOptions {
		return nil, fmt.Errorf("fhe: selected index %d out of %d options", selected, numOptions)
	}
	out := make([]Ciphertext, numOptions)
	for i := 0; i < numOptions; i++ {
		var m int64
		if i == selected {
			m = 1
		}
		c, err := pub.EncryptInt(m)
		if err != nil {
			return nil, err
		}
		out[i] = Seal(c)
	}
	return out, nil
}
