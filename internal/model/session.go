package model

import (
	"time"

	"github.com/google/uuid"
)

// SessionState enumerates the assessment session lifecycle.
// Transitions are strictly ordered: CREATED → IN_PROGRESS → SUBMITTED →
// SCORED → {CERTIFIED | REJECTED}. No transition skips a state; expiry moves
// any pre-SUBMITTED session to REJECTED.
type SessionState string

const (
	SessionStateCreated    SessionState = "CREATED"
	SessionStateInProgress SessionState = "IN_PROGRESS"
	SessionStateSubmitted  SessionState = "SUBMITTED"
	SessionStateScored     SessionState = "SCORED"
	SessionStateCertified  SessionState = "CERTIFIED"
	SessionStateRejected   SessionState = "REJECTED"
)

// Terminal reports whether no further transitions are possible.
func (s SessionState) Terminal() bool {
	return s == SessionStateCertified || s == SessionStateRejected
}

// Session is a user's assessment attempt. The question set is fixed at
// creation; state is mutated only through conditional updates in the
// session repository.
type Session struct {
	ID          uuid.UUID    `json:"id"`
	UserID      string       `json:"user_id"`
	Category    string       `json:"category"`
	QuestionIDs []string     `json:"question_ids"`
	State       SessionState `json:"state"`
	CreatedAt   time.Time    `json:"created_at"`
	ExpiresAt   time.Time    `json:"expires_at"`
	SubmittedAt *time.Time   `json:"submitted_at,omitempty"`
	ScoredAt    *time.Time   `json:"scored_at,omitempty"`
	Result      *ScoreResult `json:"result,omitempty"`
}

// Expired reports whether the session's TTL has lapsed at the given instant.
// Only unsubmitted sessions expire; a submitted session is already past the
// point of client interaction.
func (s *Session) Expired(now time.Time) bool {
	if s.State != SessionStateCreated && s.State != SessionStateInProgress {
		return false
	}
	return now.After(s.ExpiresAt)
}

// CreateSessionRequest is the payload for starting a new assessment.
type CreateSessionRequest struct {
	UserID   string `json:"user_id" binding:"required,min=1,max=128"`
	Category string `json:"category" binding:"required,min=1,max=64"`
}

// RecordAnswerRequest is the payload for a per-question telemetry delta.
// SwitchCount is cumulative for the question and must never decrease.
type RecordAnswerRequest struct {
	QuestionIndex int     `json:"question_index" binding:"min=0"`
	AnswerSeconds float64 `json:"answer_seconds" binding:"min=0"`
	SwitchCount   int     `json:"switch_count" binding:"min=0"`
}
