package fhe

import (
	"encoding/json"
	"fmt"
	"math/big"
	"os"
)

// keyFile is the on-disk keypair format. Hex-encoded so the file stays
// readable in a secrets store diff.
type keyFile struct {
	N      string `json:"n"`
	Lambda string `json:"lambda"`
	Mu     string `json:"mu"`
}

// SaveKey writes a private key to path with owner-only permissions.
func SaveKey(path string, priv *PrivateKey) error {
	data, err := json.MarshalIndent(keyFile{
		N:      priv.N.Text(16),
		Lambda: priv.Lambda.Text(16),
		Mu:     priv.Mu.Text(16),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal key: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}

// LoadKey reads a private key written by SaveKey and rebuilds the derived
// fields (n², g).
func LoadKey(path string) (*PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read key file: %w", err)
	}

	var kf keyFile
	if err := json.Unmarshal(data, &kf); err != nil {
		return nil, fmt.Errorf("parse key file: %w", err)
	}

	n, ok := new(big.Int).SetString(kf.N, 16)
	if !ok {
		return nil, fmt.Errorf("key file: invalid n")
	}
	lambda, ok := new(big.Int).SetString(kf.Lambda, 16)
	if !ok {
		return nil, fmt.Errorf("key file: invalid lambda")
	}
	mu, ok := new(big.Int).SetString(kf.Mu, 16)
	if !ok {
		return nil, fmt.Errorf("key file: invalid mu")
	}

	return &PrivateKey{
		PublicKey: PublicKey{
			N:        n,
			NSquared: new(big.Int).Mul(n, n),
			G:        new(big.Int).Add(n, one),
		},
		Lambda: lambda,
		Mu:     mu,
	}, nil
}
