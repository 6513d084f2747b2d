package model

import (
	"time"

	"github.com/google/uuid"
)

// Certificate is the final immutable record of a completed, eligible
// assessment. At most one exists per session. The ledger assigns the durable
// token identifier at mint time; until then MintedTokenID is nil and the
// caller may retry the mint.
type Certificate struct {
	ID                 uuid.UUID  `json:"id"`
	SessionID          uuid.UUID  `json:"session_id"`
	SkillType          string     `json:"skill_type"`
	EncryptedScore     string     `json:"encrypted_score"`
	Level              int        `json:"level"`
	CheatingLikelihood float64    `json:"cheating_likelihood"`
	BehaviorFlagged    bool       `json:"behavior_flagged"`
	TotalQuestions     int        `json:"total_questions"`
	CorrectAnswers     int        `json:"correct_answers"`
	Fingerprint        string     `json:"fingerprint"`
	IssuedAt           time.Time  `json:"issued_at"`
	MintedTokenID      *int64     `json:"minted_token_id,omitempty"`
	MintedAt           *time.Time `json:"minted_at,omitempty"`
}
