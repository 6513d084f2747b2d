package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prooftalent/assessment-backend/internal/ledger"
	"github.com/prooftalent/assessment-backend/internal/model"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/sha3"
)

var (
	// ErrNotEligible is returned when the session did not pass, was flagged,
	// or has not reached a certifiable state.
	ErrNotEligible = errors.New("session is not eligible for a certificate")
	// ErrCertificateNotFound is returned when no certificate exists for the
	// session.
	ErrCertificateNotFound = errors.New("certificate not found")
)

// CertificateStore is the persistence surface CertificateService needs.
// Implemented by repository.CertificateRepository.
type CertificateStore interface {
	// Create inserts the certificate unless one already exists for the
	// session, reporting whether this call inserted it.
	Create(ctx context.Context, c *model.Certificate) (bool, error)
	GetBySession(ctx context.Context, sessionID uuid.UUID) (*model.Certificate, error)
	// ClaimMint takes the exclusive right to call the ledger for this
	// certificate; claims older than staleBefore count as abandoned.
	ClaimMint(ctx context.Context, id uuid.UUID, staleBefore time.Time) (bool, error)
	ReleaseMintClaim(ctx context.Context, id uuid.UUID) error
	SetMinted(ctx context.Context, id uuid.UUID, tokenID int64, at time.Time) error
}

// CertificateService issues at most one certificate per session and anchors
// it on the external mint ledger. Issuance is idempotent end to end: the
// certificate row is created once (database uniqueness, not application
// locks), and the mint is retried on later calls only while no token ID has
// been recorded.
type CertificateService struct {
	sessions     SessionStore
	certificates CertificateStore
	chain        ledger.Client
	mintTimeout  time.Duration
	log          zerolog.Logger
}

// NewCertificateService creates a CertificateService.
func NewCertificateService(
	sessions SessionStore,
	certificates CertificateStore,
	chain ledger.Client,
	mintTimeout time.Duration,
	log zerolog.Logger,
) *CertificateService {
	return &CertificateService{
		sessions:     sessions,
		certificates: certificates,
		chain:        chain,
		mintTimeout:  mintTimeout,
		log:          log.With().Str("component", "certificate_service").Logger(),
	}
}

// Issue creates the certificate for a scored, passed, unflagged session and
// mints it on the ledger. Calling it again returns the same certificate; the
// mint is re-attempted only if the previous attempt never recorded a token.
func (s *CertificateService) Issue(ctx context.Context, sessionID uuid.UUID) (*model.Certificate, error) {
	if existing, err := s.certificates.GetBySession(ctx, sessionID); err != nil {
		return nil, err
	} else if existing != nil {
		return s.ensureMinted(ctx, existing)
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.State != model.SessionStateScored || session.Result == nil {
		return nil, ErrNotEligible
	}
	res := session.Result
	if !res.Passed || res.IsFlagged {
		return nil, ErrNotEligible
	}

	cert := &model.Certificate{
		ID:                 uuid.New(),
		SessionID:          sessionID,
		SkillType:          session.Category,
		EncryptedScore:     res.EncryptedScore,
		Level:              res.Level,
		CheatingLikelihood: res.CheatingLikelihood,
		BehaviorFlagged:    res.IsFlagged,
		TotalQuestions:     res.TotalQuestions,
		CorrectAnswers:     res.CorrectCount,
		IssuedAt:           time.Now(),
	}
	cert.Fingerprint = fingerprint(cert)

	created, err := s.certificates.Create(ctx, cert)
	if err != nil {
		return nil, err
	}
	if !created {
		// Lost the insert race; the winner's row is authoritative.
		existing, err := s.certificates.GetBySession(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			return nil, fmt.Errorf("certificate for session %s vanished after conflict", sessionID)
		}
		return s.ensureMinted(ctx, existing)
	}

	if _, err := s.sessions.TransitionState(ctx, sessionID, model.SessionStateScored, model.SessionStateCertified); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("session_id", sessionID.String()).
		Str("certificate_id", cert.ID.String()).
		Int("level", cert.Level).
		Msg("certificate issued")

	return s.ensureMinted(ctx, cert)
}

// Get returns the session's certificate.
func (s *CertificateService) Get(ctx context.Context, sessionID uuid.UUID) (*model.Certificate, error) {
	cert, err := s.certificates.GetBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if cert == nil {
		return nil, ErrCertificateNotFound
	}
	return cert, nil
}

// ensureMinted anchors the certificate on the ledger if it has no token yet.
// The ledger call is guarded by an exclusive claim taken in the store, so
// concurrent issue calls invoke Mint at most once; the loser returns the
// current row while the winner's mint is in flight. The certificate itself
// is already durable; a failed mint releases the claim and surfaces the
// ledger error alongside the certificate so the caller can retry later.
func (s *CertificateService) ensureMinted(ctx context.Context, cert *model.Certificate) (*model.Certificate, error) {
	if cert.MintedTokenID != nil {
		return cert, nil
	}

	// A claim older than twice the mint timeout cannot still be in flight;
	// treat it as abandoned.
	staleBefore := time.Now().Add(-2 * s.mintTimeout)
	claimed, err := s.certificates.ClaimMint(ctx, cert.ID, staleBefore)
	if err != nil {
		return cert, err
	}
	if !claimed {
		current, err := s.certificates.GetBySession(ctx, cert.SessionID)
		if err != nil {
			return cert, err
		}
		if current != nil {
			return current, nil
		}
		return cert, nil
	}

	mintCtx, cancel := context.WithTimeout(ctx, s.mintTimeout)
	defer cancel()

	tokenID, err := s.chain.Mint(mintCtx, ledger.MintRecord{
		SkillType:          cert.SkillType,
		EncryptedScore:     cert.EncryptedScore,
		Level:              cert.Level,
		CertificateID:      cert.ID.String(),
		CheatingLikelihood: cert.CheatingLikelihood,
		BehaviorFlagged:    cert.BehaviorFlagged,
		TotalQuestions:     cert.TotalQuestions,
		CorrectAnswers:     cert.CorrectAnswers,
	})
	if err != nil {
		s.log.Error().Err(err).
			Str("certificate_id", cert.ID.String()).
			Msg("ledger mint failed")
		if rerr := s.certificates.ReleaseMintClaim(ctx, cert.ID); rerr != nil {
			s.log.Error().Err(rerr).
				Str("certificate_id", cert.ID.String()).
				Msg("failed to release mint claim")
		}
		return cert, err
	}

	now := time.Now()
	if err := s.certificates.SetMinted(ctx, cert.ID, tokenID, now); err != nil {
		return cert, err
	}
	cert.MintedTokenID = &tokenID
	cert.MintedAt = &now

	s.log.Info().
		Str("certificate_id", cert.ID.String()).
		Int64("token_id", tokenID).
		Msg("certificate minted")

	return cert, nil
}

// fingerprint derives a stable SHA3-256 digest over the certificate's
// immutable fields. The mint payload carries the certificate ID, so the
// fingerprint ties the on-chain record to exactly this issuance.
func fingerprint(c *model.Certificate) string {
	h := sha3.New256()
	fmt.Fprintf(h, "%s|%s|%s|%d|%d|%d|%t|%.6f|%d",
		c.ID, c.SessionID, c.SkillType,
		c.Level, c.CorrectAnswers, c.TotalQuestions,
		c.BehaviorFlagged, c.CheatingLikelihood,
		c.IssuedAt.Unix(),
	)
	return fmt.Sprintf("%x", h.Sum(nil))
}
