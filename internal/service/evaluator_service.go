package service

import (
	"fmt"
	"math/big"

	"github.com/prooftalent/assessment-backend/internal/fhe"
	"github.com/prooftalent/assessment-backend/internal/model"
	"github.com/rs/zerolog"
)

// EvaluatorService holds the server-side Paillier key pair and scores
// encrypted answer vectors without ever decrypting an individual answer.
// Each answer is a one-hot vector of ciphertexts, one component per option;
// the evaluator homomorphically sums the components sitting at the correct
// option index and decrypts only that aggregate.
type EvaluatorService struct {
	key *fhe.PrivateKey
	log zerolog.Logger
}

// NewEvaluatorService creates an EvaluatorService.
func NewEvaluatorService(key *fhe.PrivateKey, log zerolog.Logger) *EvaluatorService {
	return &EvaluatorService{
		key: key,
		log: log.With().Str("component", "evaluator_service").Logger(),
	}
}

// PublicKey returns the encryption key clients encrypt their answers under.
func (e *EvaluatorService) PublicKey() *fhe.PublicKey {
	return &e.key.PublicKey
}

// Validate checks every ciphertext envelope against the public key and every
// answer vector's length against its question's option count. It performs no
// decryption, so it is safe to run before the session is marked submitted.
func (e *EvaluatorService) Validate(questions []model.QuestionTemplate, answers [][]fhe.Ciphertext) error {
	if len(answers) != len(questions) {
		return fmt.Errorf("%w: %d answer vectors for %d questions", fhe.ErrInvalidCiphertext, len(answers), len(questions))
	}
	for i, vec := range answers {
		if len(vec) != len(questions[i].Options) {
			return fmt.Errorf("%w: answer %d has %d components, want %d", fhe.ErrInvalidCiphertext, i, len(vec), len(questions[i].Options))
		}
		for j := range vec {
			if _, err := vec[j].Open(&e.key.PublicKey); err != nil {
				return fmt.Errorf("answer %d component %d: %w", i, j, err)
			}
		}
	}
	return nil
}

// Evaluate scores the answers and returns the correct count together with
// the encrypted aggregate score. The per-question sum of vector components
// must decrypt to exactly one; anything else means the vector is not a valid
// single selection and the whole submission is rejected.
func (e *EvaluatorService) Evaluate(questions []model.QuestionTemplate, answers [][]fhe.Ciphertext) (int, fhe.Ciphertext, error) {
	if err := e.Validate(questions, answers); err != nil {
		return 0, fhe.Ciphertext{}, err
	}

	pub := &e.key.PublicKey
	scoreCt, err := pub.EncryptInt(0)
	if err != nil {
		return 0, fhe.Ciphertext{}, fmt.Errorf("encrypt zero: %w", err)
	}

	for i, q := range questions {
		vec := make([]*big.Int, len(answers[i]))
		for j := range answers[i] {
			c, err := answers[i][j].Open(pub)
			if err != nil {
				return 0, fhe.Ciphertext{}, fmt.Errorf("answer %d component %d: %w", i, j, err)
			}
			vec[j] = c
		}

		// The component sum must decrypt to exactly one net selection.
		// This bounds the vector as a whole but not each component: a
		// client could still encrypt k at one index and compensate with
		// n-k+1 elsewhere, since no range proof ties components to {0,1}.
		// See the fhe package doc for the trust boundary.
		selSum := vec[0]
		for j := 1; j < len(vec); j++ {
			selSum = pub.AddEncrypted(selSum, vec[j])
		}
		total, err := e.key.Decrypt(selSum)
		if err != nil {
			return 0, fhe.Ciphertext{}, fmt.Errorf("answer %d selection sum: %w", i, err)
		}
		if total.Cmp(big.NewInt(1)) != 0 {
			return 0, fhe.Ciphertext{}, fmt.Errorf("%w: answer %d selects %s options", fhe.ErrInvalidCiphertext, i, total.String())
		}

		scoreCt = pub.AddEncrypted(scoreCt, vec[q.CorrectIndex])
	}

	scorePlain, err := e.key.Decrypt(scoreCt)
	if err != nil {
		return 0, fhe.Ciphertext{}, fmt.Errorf("decrypt aggregate score: %w", err)
	}
	correct := int(scorePlain.Int64())
	if correct < 0 || correct > len(questions) {
		return 0, fhe.Ciphertext{}, fmt.Errorf("%w: aggregate score %d out of range", fhe.ErrInvalidCiphertext, correct)
	}

	e.log.Debug().
		Int("questions", len(questions)).
		Int("correct", correct).
		Msg("evaluated encrypted submission")

	return correct, fhe.Seal(scoreCt), nil
}
