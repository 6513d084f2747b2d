package model

// AnswerTelemetry is the behavior telemetry submitted alongside the encrypted
// answers. Both slices must have exactly one entry per question; length
// mismatches are rejected at the boundary, never truncated.
type AnswerTelemetry struct {
	AnswerTimes  []float64 `json:"answer_times" binding:"required"`
	SwitchCounts []int     `json:"switch_counts" binding:"required"`
	SessionStart int64     `json:"session_start" binding:"required"`
	SessionEnd   int64     `json:"session_end" binding:"required"`
}

// TotalSwitches sums answer changes across all questions.
func (t *AnswerTelemetry) TotalSwitches() int {
	total := 0
	for _, s := range t.SwitchCounts {
		total += s
	}
	return total
}

// TelemetryEvent is a single per-question delta persisted for audit.
type TelemetryEvent struct {
	SessionID     string  `json:"session_id"`
	QuestionIndex int     `json:"question_index"`
	AnswerSeconds float64 `json:"answer_seconds"`
	SwitchCount   int     `json:"switch_count"`
	RecordedAt    int64   `json:"recorded_at"`
}
