package questionbank

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"github.com/prooftalent/assessment-backend/internal/model"
)

// generator produces one parameterized QuestionTemplate. Each call gets fresh
// random parameters so two users rarely see identical questions.
type generator func(rng *rand.Rand, category string, difficulty float64) model.QuestionTemplate

func newTemplateID(category string) string {
	return fmt.Sprintf("%s-%s", category, uuid.New().String())
}

// shuffleOptions places the correct answer at a random position and returns
// the shuffled options with the new correct index.
func shuffleOptions(rng *rand.Rand, correct string, wrong []string) ([]string, int) {
	options := make([]string, 0, len(wrong)+1)
	options = append(options, correct)
	options = append(options, wrong...)
	rng.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})
	for i, o := range options {
		if o == correct {
			return options, i
		}
	}
	return options, 0
}

// ─── Math ──────────────────────────────────────────────────────────────────

func generateMath(rng *rand.Rand, category string, difficulty float64) model.QuestionTemplate {
	var prompt string
	var answer int
	var wrong []string

	switch rng.Intn(4) {
	case 0: // addition
		a, b := rng.Intn(99)+1, rng.Intn(99)+1
		answer = a + b
		prompt = fmt.Sprintf("What is %d + %d?", a, b)
		wrong = []string{
			fmt.Sprint(answer + rng.Intn(10) + 5),
			fmt.Sprint(answer - rng.Intn(10) - 5),
			fmt.Sprint(answer + 1),
		}
	case 1: // subtraction
		a := rng.Intn(150) + 50
		b := rng.Intn(a-1) + 1
		answer = a - b
		prompt = fmt.Sprintf("What is %d - %d?", a, b)
		wrong = []string{
			fmt.Sprint(answer + rng.Intn(10) + 5),
			fmt.Sprint(answer - rng.Intn(10) - 5),
			fmt.Sprint(a + b),
		}
	case 2: // multiplication
		a, b := rng.Intn(18)+2, rng.Intn(10)+2
		answer = a * b
		prompt = fmt.Sprintf("What is %d × %d?", a, b)
		wrong = []string{
			fmt.Sprint(answer + rng.Intn(10) + 5),
			fmt.Sprint(answer - rng.Intn(10) - 5),
			fmt.Sprint((a + 1) * b),
		}
	default: // division, constructed so it divides evenly
		b := rng.Intn(10) + 2
		answer = rng.Intn(18) + 2
		a := answer * b
		prompt = fmt.Sprintf("What is %d ÷ %d?", a, b)
		alt := a / (b + 1)
		if alt < 1 {
			alt = 1
		}
		wrong = []string{
			fmt.Sprint(answer + 1),
			fmt.Sprint(answer - 1),
			fmt.Sprint(alt),
		}
	}

	options, correctIdx := shuffleOptions(rng, fmt.Sprint(answer), dedupe(fmt.Sprint(answer), wrong))
	return model.QuestionTemplate{
		ID:              newTemplateID(category),
		Category:        category,
		Prompt:          prompt,
		Options:         options,
		CorrectIndex:    correctIdx,
		Difficulty:      difficulty,
		ExpectedSeconds: 30,
	}
}

// ─── Programming ───────────────────────────────────────────────────────────

func generateProgramming(rng *rand.Rand, category string, difficulty float64) model.QuestionTemplate {
	var prompt string
	var answer int

	switch rng.Intn(3) {
	case 0:
		n := rng.Intn(10) + 5
		answer = fibonacci(n)
		prompt = fmt.Sprintf("What is the %dth number in the Fibonacci sequence? (Start: 0, 1)", n)
	case 1:
		n := rng.Intn(4) + 4
		answer = factorial(n)
		prompt = fmt.Sprintf("What is %d! (factorial)?", n)
	default:
		primes := []int{2, 3, 5, 7, 11, 13, 17, 19, 23, 29}
		i := rng.Intn(len(primes))
		answer = primes[i]
		prompt = fmt.Sprintf("What is the %dth prime number?", i+1)
	}

	wrong := []string{
		fmt.Sprint(answer + 1),
		fmt.Sprint(answer - 1),
		fmt.Sprint(answer * 2),
	}
	options, correctIdx := shuffleOptions(rng, fmt.Sprint(answer), dedupe(fmt.Sprint(answer), wrong))
	return model.QuestionTemplate{
		ID:              newTemplateID(category),
		Category:        category,
		Prompt:          prompt,
		Options:         options,
		CorrectIndex:    correctIdx,
		Difficulty:      difficulty,
		ExpectedSeconds: 45,
	}
}

func fibonacci(n int) int {
	if n < 2 {
		return n
	}
	a, b := 0, 1
	for i := 2; i <= n; i++ {
		a, b = b, a+b
	}
	return b
}

func factorial(n int) int {
	out := 1
	for i := 2; i <= n; i++ {
		out *= i
	}
	return out
}

// ─── Static pools ──────────────────────────────────────────────────────────

// staticQuestion is a fixed prompt with its correct answer listed first;
// options are shuffled per generated template.
type staticQuestion struct {
	prompt  string
	correct string
	wrong   []string
}

func staticGenerator(pool []staticQuestion, expectedSeconds float64) generator {
	// Cycle instead of drawing at random so successive calls cover every
	// prompt before any repeats; the bank drops repeats entirely.
	next := 0
	return func(rng *rand.Rand, category string, difficulty float64) model.QuestionTemplate {
		q := pool[next%len(pool)]
		next++
		options, correctIdx := shuffleOptions(rng, q.correct, q.wrong)
		return model.QuestionTemplate{
			ID:              newTemplateID(category),
			Category:        category,
			Prompt:          q.prompt,
			Options:         options,
			CorrectIndex:    correctIdx,
			Difficulty:      difficulty,
			ExpectedSeconds: expectedSeconds,
		}
	}
}

var blockchainPool = []staticQuestion{
	{
		prompt:  "What is a smart contract?",
		correct: "Self-executing contract with code",
		wrong:   []string{"Legal document on blockchain", "Cryptocurrency wallet", "Network node"},
	},
	{
		prompt:  "Which consensus mechanism does Ethereum currently use?",
		correct: "Proof of Stake",
		wrong:   []string{"Proof of Work", "Delegated Proof of Stake", "Proof of Authority"},
	},
	{
		prompt:  "What does 'gas' represent in Ethereum?",
		correct: "Transaction execution cost",
		wrong:   []string{"Mining reward", "Network subscription", "Token supply"},
	},
	{
		prompt:  "What is a blockchain fork?",
		correct: "A divergence in the chain's protocol or history",
		wrong:   []string{"A wallet backup", "A type of token", "A mining pool"},
	},
}

var securityPool = []staticQuestion{
	{
		prompt:  "What is phishing?",
		correct: "Fraudulent attempt to obtain sensitive information",
		wrong:   []string{"Type of encryption", "Blockchain attack", "Network protocol"},
	},
	{
		prompt:  "What does 2FA stand for?",
		correct: "Two-Factor Authentication",
		wrong:   []string{"Two-File Archive", "Two-Function Algorithm", "Twin Firewall Access"},
	},
	{
		prompt:  "Why should passwords be hashed?",
		correct: "So a database leak does not reveal plaintext passwords",
		wrong:   []string{"To make them shorter", "To speed up login", "To allow password sharing"},
	},
	{
		prompt:  "What is the primary goal of encryption?",
		correct: "Protect data confidentiality",
		wrong:   []string{"Increase data size", "Speed up data transfer", "Make data public"},
	},
}

var fhePool = []staticQuestion{
	{
		prompt:  "What does FHE stand for?",
		correct: "Fully Homomorphic Encryption",
		wrong:   []string{"Federated Hardware Encryption", "Fast Hash Encryption", "Field Homomorphism Extension"},
	},
	{
		prompt:  "What property defines homomorphic encryption?",
		correct: "Computation can run directly on ciphertexts",
		wrong:   []string{"Keys are never needed", "Ciphertexts are smaller than plaintexts", "Decryption is impossible"},
	},
	{
		prompt:  "What is a Zero-Knowledge Proof?",
		correct: "Proving something without revealing details",
		wrong:   []string{"A type of encryption", "A blockchain consensus", "A key exchange protocol"},
	},
	{
		prompt:  "In an additively homomorphic scheme, multiplying two ciphertexts corresponds to what on plaintexts?",
		correct: "Adding them",
		wrong:   []string{"Multiplying them", "Subtracting them", "Hashing them"},
	},
}

// dedupe drops wrong answers that collide with the correct one (arithmetic
// generators can produce duplicates for small operands).
func dedupe(correct string, wrong []string) []string {
	out := wrong[:0]
	seen := map[string]bool{correct: true}
	for _, w := range wrong {
		if !seen[w] {
			seen[w] = true
			out = append(out, w)
		}
	}
	return out
}
