package model

// QuestionTemplate is a single quiz question. Templates are immutable and
// loaded into the in-memory bank at startup; CorrectIndex never leaves the
// process.
type QuestionTemplate struct {
	ID              string   `json:"id"`
	Category        string   `json:"category"`
	Prompt          string   `json:"prompt"`
	Options         []string `json:"options"`
	CorrectIndex    int      `json:"-"`
	Difficulty      float64  `json:"difficulty"`
	ExpectedSeconds float64  `json:"expected_seconds"`
}

// PublicQuestion is the client-facing projection of a QuestionTemplate.
// Kept as a separate type so a handler can never accidentally serialize the
// answer key.
type PublicQuestion struct {
	ID              string   `json:"id"`
	Prompt          string   `json:"prompt"`
	Options         []string `json:"options"`
	Difficulty      float64  `json:"difficulty"`
	ExpectedSeconds float64  `json:"expected_seconds"`
}

// Public strips the answer key from a template.
func (q *QuestionTemplate) Public() PublicQuestion {
	return PublicQuestion{
		ID:              q.ID,
		Prompt:          q.Prompt,
		Options:         q.Options,
		Difficulty:      q.Difficulty,
		ExpectedSeconds: q.ExpectedSeconds,
	}
}
