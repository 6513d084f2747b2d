// Package fhe implements the additively homomorphic encryption used by the
// encrypted evaluator. The concrete scheme is Paillier: ciphertext
// multiplication corresponds to plaintext addition, which is all the scoring
// pipeline needs — the server sums encrypted match indicators and decrypts
// only the aggregate.
//
// Trust boundary: the evaluator checks that each selection vector sums to
// one, which bounds the net selection count but not individual components.
// Paillier alone cannot prove a component lies in {0, 1}, so a client that
// somehow learned a correct index could shift encrypted weight toward it
// while keeping the sum intact. Per-component soundness requires range or
// zero-knowledge proofs, which are outside this scheme; the server-side
// answer key staying private is what the current checks rely on. The package
// boundary is the swap point if a richer scheme (leveled FHE, committed
// values + ZK equality) replaces it.
package fhe

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
)

var (
	// ErrMessageRange means the plaintext is outside [0, N).
	ErrMessageRange = errors.New("fhe: message out of range")
	// ErrCiphertextRange means the raw ciphertext value is outside (0, N²).
	ErrCiphertextRange = errors.New("fhe: ciphertext out of range")
)

var one = big.NewInt(1)

// PublicKey is the Paillier encryption key. Safe to hand to clients.
type PublicKey struct {
	N        *big.Int // modulus, product of two primes
	NSquared *big.Int
	G        *big.Int // generator, fixed to N+1
}

// PrivateKey holds the decryption trapdoor. Never serialized into responses.
type PrivateKey struct {
	PublicKey
	Lambda *big.Int // lcm(p-1, q-1)
	Mu     *big.Int // (L(g^lambda mod n²))⁻¹ mod n
}

// GenerateKey creates a Paillier keypair with an n of the given bit size.
func GenerateKey(random io.Reader, bits int) (*PrivateKey, error) {
	if bits < 64 {
		return nil, fmt.Errorf("fhe: key size %d too small", bits)
	}

	for {
		p, err := rand.Prime(random, bits/2)
		if err != nil {
			return nil, fmt.Errorf("generate prime p: %w", err)
		}
		q, err := rand.Prime(random, bits/2)
		if err != nil {
			return nil, fmt.Errorf("generate prime q: %w", err)
		}
		if p.Cmp(q) == 0 {
			continue
		}

		n := new(big.Int).Mul(p, q)
		if n.BitLen() != bits {
			continue
		}

		pMinus := new(big.Int).Sub(p, one)
		qMinus := new(big.Int).Sub(q, one)
		gcd := new(big.Int).GCD(nil, nil, pMinus, qMinus)
		lambda := new(big.Int).Div(new(big.Int).Mul(pMinus, qMinus), gcd)

		nSquared := new(big.Int).Mul(n, n)
		g := new(big.Int).Add(n, one)

		u := new(big.Int).Exp(g, lambda, nSquared)
		mu := new(big.Int).ModInverse(lFunc(u, n), n)
		if mu == nil {
			continue
		}

		return &PrivateKey{
			PublicKey: PublicKey{N: n, NSquared: nSquared, G: g},
			Lambda:    lambda,
			Mu:        mu,
		}, nil
	}
}

// Encrypt produces c = g^m · r^n mod n² for a fresh random r coprime to n.
// Repeated encryptions of the same plaintext yield different ciphertexts.
func (pub *PublicKey) Encrypt(m *big.Int) (*big.Int, error) {
	if m.Sign() < 0 || m.Cmp(pub.N) >= 0 {
		return nil, ErrMessageRange
	}

	r, err := randomCoprime(pub.N)
	if err != nil {
		return nil, err
	}

	gm := new(big.Int).Exp(pub.G, m, pub.NSquared)
	rn := new(big.Int).Exp(r, pub.N, pub.NSquared)
	c := gm.Mul(gm, rn)
	return c.Mod(c, pub.NSquared), nil
}

// EncryptInt is Encrypt for small plaintexts.
func (pub *PublicKey) EncryptInt(m int64) (*big.Int, error) {
	return pub.Encrypt(big.NewInt(m))
}

// AddEncrypted homomorphically adds two plaintexts: Dec(c1·c2) = m1 + m2.
func (pub *PublicKey) AddEncrypted(c1, c2 *big.Int) *big.Int {
	sum := new(big.Int).Mul(c1, c2)
	return sum.Mod(sum, pub.NSquared)
}

// Valid reports whether a raw value is in the ciphertext domain (0, n²).
func (pub *PublicKey) Valid(c *big.Int) bool {
	return c.Sign() > 0 && c.Cmp(pub.NSquared) < 0
}

// Decrypt recovers m = L(c^lambda mod n²) · mu mod n.
func (priv *PrivateKey) Decrypt(c *big.Int) (*big.Int, error) {
	if !priv.Valid(c) {
		return nil, ErrCiphertextRange
	}
	u := new(big.Int).Exp(c, priv.Lambda, priv.NSquared)
	m := lFunc(u, priv.N)
	m.Mul(m, priv.Mu)
	return m.Mod(m, priv.N), nil
}

// lFunc is Paillier's L(u) = (u - 1) / n.
func lFunc(u, n *big.Int) *big.Int {
	return new(big.Int).Div(new(big.Int).Sub(u, one), n)
}

// randomCoprime draws r uniformly from [1, n) with gcd(r, n) = 1.
func randomCoprime(n *big.Int) (*big.Int, error) {
	gcd := new(big.Int)
	for {
		r, err := rand.Int(rand.Reader, n)
		if err != nil {
			return nil, fmt.Errorf("random nonce: %w", err)
		}
		if r.Sign() == 0 {
			continue
		}
		if gcd.GCD(nil, nil, r, n).Cmp(one) == 0 {
			return r, nil
		}
	}
}
