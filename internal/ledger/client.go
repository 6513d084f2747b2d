// Package ledger is the single source of truth for talking to the external
// badge ledger (an ERC-721 contract behind a relay gateway). Everything the
// rest of the backend needs from the chain goes through the Client interface;
// no other package may speak to the gateway directly.
package ledger

import (
	"context"
	"errors"
	"time"
)

// ErrMintFailed wraps every ledger-side mint rejection: insufficient funds,
// duplicate score, gas failure, gateway unreachable. The underlying reason is
// attached; callers surface it verbatim and decide whether to retry. The
// client itself never retries — a retry after a partial mint risks double
// issuance.
var ErrMintFailed = errors.New("ledger: mint failed")

// MintRecord is the payload handed to the ledger for durable issuance.
// Field set mirrors the on-chain talent record.
type MintRecord struct {
	SkillType          string  `json:"skill_type"`
	EncryptedScore     string  `json:"encrypted_score"`
	Level              int     `json:"level"`
	CertificateID      string  `json:"certificate_id"`
	CheatingLikelihood float64 `json:"cheating_likelihood"`
	BehaviorFlagged    bool    `json:"behavior_flagged"`
	TotalQuestions     int     `json:"total_questions"`
	CorrectAnswers     int     `json:"correct_answers"`
}

// Badge is a minted token as reported by the ledger.
type Badge struct {
	TokenID   int64     `json:"token_id"`
	SkillType string    `json:"skill_type"`
	Level     int       `json:"level"`
	MintedAt  time.Time `json:"minted_at"`
}

// Metadata is the token's descriptive record.
type Metadata struct {
	TokenID        int64  `json:"token_id"`
	URI            string `json:"uri"`
	SkillType      string `json:"skill_type"`
	Level          int    `json:"level"`
	EncryptedScore string `json:"encrypted_score"`
}

// Client is the ledger capability set. Implementations must apply a bounded
// timeout to every call so a stuck chain never hangs the session pipeline.
type Client interface {
	// Mint issues the record on the ledger and returns the durable token ID.
	// The mint fee is paid by the gateway's funded relay account.
	Mint(ctx context.Context, record MintRecord) (int64, error)

	// Badges lists token IDs owned by an address.
	Badges(ctx context.Context, owner string) ([]Badge, error)

	// TokenMetadata fetches the descriptive record for one token.
	TokenMetadata(ctx context.Context, tokenID int64) (*Metadata, error)

	// MintFee returns the current mint fee in wei, as a decimal string.
	MintFee(ctx context.Context) (string, error)
}
