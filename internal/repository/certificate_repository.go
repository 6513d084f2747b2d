package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prooftalent/assessment-backend/internal/model"
)

// CertificateRepository handles certificate persistence. The UNIQUE
// constraint on session_id is what makes "at most one certificate per
// session" hold under concurrent issuance.
type CertificateRepository struct {
	pool *pgxpool.Pool
}

// NewCertificateRepository creates a new CertificateRepository.
func NewCertificateRepository(pool *pgxpool.Pool) *CertificateRepository {
	return &CertificateRepository{pool: pool}
}

// Create inserts a certificate. Returns false without error when another
// certificate already exists for the session (concurrent issue lost the
// race); the caller should re-read.
func (r *CertificateRepository) Create(ctx context.Context, c *model.Certificate) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`INSERT INTO certificates
		   (id, session_id, skill_type, encrypted_score, level, cheating_likelihood,
		    behavior_flagged, total_questions, correct_answers, fingerprint, issued_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 ON CONFLICT (session_id) DO NOTHING`,
		c.ID, c.SessionID, c.SkillType, c.EncryptedScore, c.Level, c.CheatingLikelihood,
		c.BehaviorFlagged, c.TotalQuestions, c.CorrectAnswers, c.Fingerprint, c.IssuedAt,
	)
	if err != nil {
		return false, fmt.Errorf("insert certificate: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// GetBySession retrieves the certificate for a session, or nil when none has
// been issued.
func (r *CertificateRepository) GetBySession(ctx context.Context, sessionID uuid.UUID) (*model.Certificate, error) {
	c := &model.Certificate{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, session_id, skill_type, encrypted_score, level, cheating_likelihood,
		        behavior_flagged, total_questions, correct_answers, fingerprint, issued_at,
		        minted_token_id, minted_at
		 FROM certificates WHERE session_id = $1`, sessionID,
	).Scan(&c.ID, &c.SessionID, &c.SkillType, &c.EncryptedScore, &c.Level, &c.CheatingLikelihood,
		&c.BehaviorFlagged, &c.TotalQuestions, &c.CorrectAnswers, &c.Fingerprint, &c.IssuedAt,
		&c.MintedTokenID, &c.MintedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get certificate: %w", err)
	}
	return c, nil
}

// ClaimMint atomically takes the exclusive right to call the ledger for
// this certificate. Exactly one caller wins until the claim is released or
// goes stale; a claim older than staleBefore is treated as abandoned (the
// claimant crashed between claiming and recording) and can be taken over.
func (r *CertificateRepository) ClaimMint(ctx context.Context, id uuid.UUID, staleBefore time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE certificates SET mint_claimed_at = NOW()
		 WHERE id = $1 AND minted_token_id IS NULL
		   AND (mint_claimed_at IS NULL OR mint_claimed_at < $2)`,
		id, staleBefore,
	)
	if err != nil {
		return false, fmt.Errorf("claim mint: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ReleaseMintClaim frees the mint claim after a failed ledger call so a
// later issue attempt can retry. A no-op once the mint has been recorded.
func (r *CertificateRepository) ReleaseMintClaim(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE certificates SET mint_claimed_at = NULL
		 WHERE id = $1 AND minted_token_id IS NULL`,
		id,
	)
	if err != nil {
		return fmt.Errorf("release mint claim: %w", err)
	}
	return nil
}

// SetMinted records the ledger's token ID after a successful mint. Only the
// first mint wins; a second call is a no-op because minted_token_id is
// already set.
func (r *CertificateRepository) SetMinted(ctx context.Context, id uuid.UUID, tokenID int64, at time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE certificates SET minted_token_id = $1, minted_at = $2
		 WHERE id = $3 AND minted_token_id IS NULL`,
		tokenID, at, id,
	)
	if err != nil {
		return fmt.Errorf("set minted: %w", err)
	}
	return nil
}
