package model

import "math"

// BehaviorReport is the analyzer's output. CheatingLikelihood is a heuristic
// triage signal with no cryptographic guarantee either way; downstream
// consumers must treat it as such.
type BehaviorReport struct {
	CheatingLikelihood float64 `json:"cheating_likelihood"`
	IsFlagged          bool    `json:"is_flagged"`

	// Informational metrics, not part of the flagging decision.
	AverageTime      float64 `json:"average_time"`
	TimeConsistency  float64 `json:"time_consistency"`
	SwitchFrequency  float64 `json:"switch_frequency"`
	PatternDeviation float64 `json:"pattern_deviation"`
}

// ScoreResult is the immutable outcome of evaluating one session. Exactly one
// exists per scored session. CorrectCount is revealed only as an aggregate;
// per-question correctness never leaves the evaluator.
type ScoreResult struct {
	CorrectCount       int     `json:"correct_count"`
	TotalQuestions     int     `json:"total_questions"`
	Level              int     `json:"level"`
	Passed             bool    `json:"passed"`
	EncryptedScore     string  `json:"encrypted_score"`
	CheatingLikelihood float64 `json:"cheating_likelihood"`
	IsFlagged          bool    `json:"is_flagged"`
}

// LevelFor maps an aggregate score to a 1–5 level:
// clamp(round(correct/total*5), 1, 5).
func LevelFor(correct, total int) int {
	if total <= 0 {
		return 1
	}
	level := int(math.Round(float64(correct) / float64(total) * 5))
	if level < 1 {
		return 1
	}
	if level > 5 {
		return 5
	}
	return level
}

// PassThreshold returns the minimum correct count for the given fraction:
// ceil(fraction * total).
func PassThreshold(fraction float64, total int) int {
	return int(math.Ceil(fraction * float64(total)))
}
