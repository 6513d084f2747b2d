package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prooftalent/assessment-backend/internal/model"
)

// ErrSessionNotFound is returned when no session row matches the given ID.
var ErrSessionNotFound = errors.New("repository: session not found")

// SessionRepository handles assessment session persistence. All state
// transitions go through conditional updates so two concurrent requests can
// never both win the same transition.
type SessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

// Create inserts a new session in CREATED state.
func (r *SessionRepository) Create(ctx context.Context, s *model.Session) error {
	questionIDs, err := json.Marshal(s.QuestionIDs)
	if err != nil {
		return fmt.Errorf("marshal question ids: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO sessions (id, user_id, category, question_ids, state, created_at, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		s.ID, s.UserID, s.Category, questionIDs, s.State, s.CreatedAt, s.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// Get retrieves a session by ID, including its score columns when present.
func (r *SessionRepository) Get(ctx context.Context, id uuid.UUID) (*model.Session, error) {
	s := &model.Session{}
	var questionIDs []byte
	var correctCount, totalQuestions, level *int
	var encryptedScore *string
	var likelihood *float64
	var flagged, passed *bool

	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, category, question_ids, state, created_at, expires_at,
		        submitted_at, scored_at,
		        correct_count, total_questions, level, passed, encrypted_score,
		        cheating_likelihood, is_flagged
		 FROM sessions WHERE id = $1`, id,
	).Scan(&s.ID, &s.UserID, &s.Category, &questionIDs, &s.State, &s.CreatedAt, &s.ExpiresAt,
		&s.SubmittedAt, &s.ScoredAt,
		&correctCount, &totalQuestions, &level, &passed, &encryptedScore,
		&likelihood, &flagged)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	if err := json.Unmarshal(questionIDs, &s.QuestionIDs); err != nil {
		return nil, fmt.Errorf("unmarshal question ids: %w", err)
	}

	if correctCount != nil {
		s.Result = &model.ScoreResult{
			CorrectCount:       *correctCount,
			TotalQuestions:     *totalQuestions,
			Level:              *level,
			Passed:             *passed,
			EncryptedScore:     *encryptedScore,
			CheatingLikelihood: *likelihood,
			IsFlagged:          *flagged,
		}
	}

	return s, nil
}

// TransitionState atomically moves a session from one state to another.
// Returns false when the session was not in the expected source state — the
// caller lost the race or is operating on the wrong lifecycle stage.
func (r *SessionRepository) TransitionState(ctx context.Context, id uuid.UUID, from, to model.SessionState) (bool, error) {
	var stamp string
	switch to {
	case model.SessionStateSubmitted:
		stamp = ", submitted_at = NOW()"
	case model.SessionStateScored:
		stamp = ", scored_at = NOW()"
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE sessions SET state = $1`+stamp+` WHERE id = $2 AND state = $3`,
		to, id, from,
	)
	if err != nil {
		return false, fmt.Errorf("transition %s->%s: %w", from, to, err)
	}
	return tag.RowsAffected() == 1, nil
}

// SaveResult stores the score columns and moves SUBMITTED -> SCORED in one
// statement, keeping "exactly one ScoreResult per session" a database
// guarantee rather than an application promise.
func (r *SessionRepository) SaveResult(ctx context.Context, id uuid.UUID, res *model.ScoreResult) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE sessions
		 SET state = $1, scored_at = NOW(),
		     correct_count = $2, total_questions = $3, level = $4, passed = $5,
		     encrypted_score = $6, cheating_likelihood = $7, is_flagged = $8
		 WHERE id = $9 AND state = $10`,
		model.SessionStateScored,
		res.CorrectCount, res.TotalQuestions, res.Level, res.Passed,
		res.EncryptedScore, res.CheatingLikelihood, res.IsFlagged,
		id, model.SessionStateSubmitted,
	)
	if err != nil {
		return false, fmt.Errorf("save result: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ExpireStale moves every unsubmitted session past its TTL to REJECTED.
// Used by the background sweep; the lazy check on access covers sessions the
// sweep has not reached yet.
func (r *SessionRepository) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE sessions SET state = $1
		 WHERE state IN ($2, $3) AND expires_at < $4`,
		model.SessionStateRejected,
		model.SessionStateCreated, model.SessionStateInProgress,
		now,
	)
	if err != nil {
		return 0, fmt.Errorf("expire stale sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}
