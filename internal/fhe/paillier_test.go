package fhe

import (
	"crypto/rand"
	"errors"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// testKeyBits keeps test keys small enough to generate quickly. Production
// keys are 2048 bits; the math is size-independent.
const testKeyBits = 512

func testKey(t *testing.T) *PrivateKey {
	t.Helper()
	priv, err := GenerateKey(rand.Reader, testKeyBits)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	return priv
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	priv := testKey(t)

	for _, m := range []int64{0, 1, 2, 7, 100, 65535} {
		c, err := priv.EncryptInt(m)
		if err != nil {
			t.Fatalf("EncryptInt(%d): %v", m, err)
		}
		got, err := priv.Decrypt(c)
		if err != nil {
			t.Fatalf("Decrypt: %v", err)
		}
		if got.Int64() != m {
			t.Errorf("round trip %d: got %s", m, got)
		}
	}
}

func TestEncryptionIsRandomized(t *testing.T) {
	priv := testKey(t)

	c1, _ := priv.EncryptInt(1)
	c2, _ := priv.EncryptInt(1)
	if c1.Cmp(c2) == 0 {
		t.Error("two encryptions of the same plaintext produced identical ciphertexts")
	}
}

func TestAdditiveHomomorphism(t *testing.T) {
	priv := testKey(t)

	cases := []struct {
		name string
		xs   []int64
		want int64
	}{
		{"two values", []int64{3, 4}, 7},
		{"zeros", []int64{0, 0, 0}, 0},
		{"match indicators", []int64{1, 0, 1, 1, 0}, 3},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sum, err := priv.EncryptInt(tc.xs[0])
			if err != nil {
				t.Fatalf("EncryptInt: %v", err)
			}
			for _, x := range tc.xs[1:] {
				c, err := priv.EncryptInt(x)
				if err != nil {
					t.Fatalf("EncryptInt: %v", err)
				}
				sum = priv.AddEncrypted(sum, c)
			}
			got, err := priv.Decrypt(sum)
			if err != nil {
				t.Fatalf("Decrypt: %v", err)
			}
			if got.Int64() != tc.want {
				t.Errorf("homomorphic sum = %s, want %d", got, tc.want)
			}
		})
	}
}

func TestEncryptRejectsOutOfRange(t *testing.T) {
	priv := testKey(t)

	if _, err := priv.Encrypt(big.NewInt(-1)); !errors.Is(err, ErrMessageRange) {
		t.Errorf("negative plaintext: got %v, want ErrMessageRange", err)
	}
	if _, err := priv.Encrypt(new(big.Int).Set(priv.N)); !errors.Is(err, ErrMessageRange) {
		t.Errorf("plaintext = n: got %v, want ErrMessageRange", err)
	}
}

func TestSealOpenRoundTrip(t *testing.T) {
	priv := testKey(t)

	c, _ := priv.EncryptInt(5)
	ct := Seal(c)
	if ct.Scheme != Scheme {
		t.Fatalf("sealed scheme = %q, want %q", ct.Scheme, Scheme)
	}

	opened, err := ct.Open(&priv.PublicKey)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if opened.Cmp(c) != 0 {
		t.Error("opened value differs from sealed value")
	}
}

func TestOpenRejectsMalformed(t *testing.T) {
	priv := testKey(t)
	c, _ := priv.EncryptInt(1)
	good := Seal(c)

	tooBig := Seal(new(big.Int).Set(priv.NSquared))

	cases := []struct {
		name string
		ct   Ciphertext
	}{
		{"wrong scheme tag", Ciphertext{Scheme: "rot13-v9", Blob: good.Blob}},
		{"empty blob", Ciphertext{Scheme: Scheme}},
		{"undecodable blob", Ciphertext{Scheme: Scheme, Blob: "!!not base64!!"}},
		{"value out of range", tooBig},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := tc.ct.Open(&priv.PublicKey); !errors.Is(err, ErrInvalidCiphertext) {
				t.Errorf("got %v, want ErrInvalidCiphertext", err)
			}
		})
	}
}

func TestEncryptSelection(t *testing.T) {
	priv := testKey(t)

	cts, err := EncryptSelection(&priv.PublicKey, 2, 4)
	if err != nil {
		t.Fatalf("EncryptSelection: %v", err)
	}
	if len(cts) != 4 {
		t.Fatalf("got %d ciphertexts, want 4", len(cts))
	}

	for i, ct := range cts {
		raw, err := ct.Open(&priv.PublicKey)
		if err != nil {
			t.Fatalf("Open[%d]: %v", i, err)
		}
		m, err := priv.Decrypt(raw)
		if err != nil {
			t.Fatalf("Decrypt[%d]: %v", i, err)
		}
		want := int64(0)
		if i == 2 {
			want = 1
		}
		if m.Int64() != want {
			t.Errorf("component %d decrypts to %s, want %d", i, m, want)
		}
	}
}

func TestEncryptSelectionRejectsBadIndex(t *testing.T) {
	priv := testKey(t)

	if _, err := EncryptSelection(&priv.PublicKey, 4, 4); err == nil {
		t.Error("index == numOptions accepted")
	}
	if _, err := EncryptSelection(&priv.PublicKey, -1, 4); err == nil {
		t.Error("negative index accepted")
	}
	if err := func() error {
		_, err := EncryptSelection(&priv.PublicKey, 0, 4)
		return err
	}(); err != nil {
		t.Errorf("valid index rejected: %v", err)
	}
}

func TestKeyFileRoundTrip(t *testing.T) {
	priv := testKey(t)

	path := filepath.Join(t.TempDir(), "paillier.key")
	if err := SaveKey(path, priv); err != nil {
		t.Fatalf("SaveKey: %v", err)
	}

	loaded, err := LoadKey(path)
	if err != nil {
		t.Fatalf("LoadKey: %v", err)
	}

	// A ciphertext from the original key must decrypt under the loaded key.
	c, _ := priv.EncryptInt(42)
	m, err := loaded.Decrypt(c)
	if err != nil {
		t.Fatalf("Decrypt with loaded key: %v", err)
	}
	if m.Int64() != 42 {
		t.Errorf("loaded key decrypts to %s, want 42", m)
	}
}

func TestLoadKeyRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.key")
	if err := os.WriteFile(path, []byte(`{"n":"zzz"}`), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadKey(path); err == nil || !strings.Contains(err.Error(), "invalid n") {
		t.Errorf("got %v, want invalid n error", err)
	}
}
