// Package questionbank holds the immutable in-memory question bank. Templates
// are generated once at startup from parameterized per-category generators;
// answer keys stay inside the process and are only consulted by the encrypted
// evaluator.
package questionbank

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"

	"github.com/prooftalent/assessment-backend/internal/model"
)

// ErrUnknownCategory is returned for categories the bank was not built with.
var ErrUnknownCategory = errors.New("questionbank: unknown category")

// poolFactor controls how many templates are generated per category relative
// to the per-session question count, so sampling without replacement has
// room to vary between users.
const poolFactor = 4

// Category is one quiz category with its sampling parameters.
type Category struct {
	Name          string
	QuestionCount int
	PassFraction  float64
	pool          []model.QuestionTemplate
	byID          map[string]*model.QuestionTemplate
}

// CategoryInfo is the client-facing summary of a category.
type CategoryInfo struct {
	Name          string  `json:"name"`
	QuestionCount int     `json:"question_count"`
	PassFraction  float64 `json:"pass_fraction"`
}

// Bank is the in-memory question bank. Immutable after construction; Sample
// serializes access to the shared RNG and is otherwise safe for concurrent
// use.
type Bank struct {
	mu         sync.Mutex
	rng        *rand.Rand
	categories map[string]*Category
	names      []string
}

// New builds the bank with the default category set. questionCount and
// passFraction come from configuration and apply to every category; the
// original per-quiz cutoffs were replaced by this single tunable.
func New(rng *rand.Rand, questionCount int, passFraction float64) *Bank {
	b := &Bank{
		rng:        rng,
		categories: make(map[string]*Category),
	}

	generators := []struct {
		name string
		gen  generator
	}{
		{"math", generateMath},
		{"programming", generateProgramming},
		{"blockchain", staticGenerator(blockchainPool, 40)},
		{"security", staticGenerator(securityPool, 35)},
		{"fhe", staticGenerator(fhePool, 40)},
	}

	for _, g := range generators {
		b.addCategory(g.name, g.gen, questionCount, passFraction)
	}
	return b
}

func (b *Bank) addCategory(name string, gen generator, questionCount int, passFraction float64) {
	poolSize := questionCount * poolFactor
	cat := &Category{
		Name:          name,
		QuestionCount: questionCount,
		PassFraction:  passFraction,
		pool:          make([]model.QuestionTemplate, 0, poolSize),
		byID:          make(map[string]*model.QuestionTemplate, poolSize),
	}

	// Prompts are kept distinct within a category so that sampling without
	// replacement can never hand one session the same question twice. Static
	// pools run out below poolSize and arithmetic generators occasionally
	// collide on small operands, so generation retries under a bounded
	// budget and settles for a smaller distinct pool if needed.
	seen := make(map[string]bool, poolSize)
	for attempts := 0; len(cat.pool) < poolSize && attempts < poolSize*20; attempts++ {
		// Difficulty ramps across the pool, mirroring the per-session ramp
		// the source material used.
		difficulty := 0.3 + float64(len(cat.pool)%questionCount)*0.2
		tpl := gen(b.rng, name, difficulty)
		if seen[tpl.Prompt] {
			continue
		}
		seen[tpl.Prompt] = true
		cat.pool = append(cat.pool, tpl)
		cat.byID[tpl.ID] = &cat.pool[len(cat.pool)-1]
	}

	b.categories[name] = cat
	b.names = append(b.names, name)
}

// Categories lists available categories in registration order.
func (b *Bank) Categories() []CategoryInfo {
	out := make([]CategoryInfo, 0, len(b.names))
	for _, name := range b.names {
		c := b.categories[name]
		out = append(out, CategoryInfo{
			Name:          c.Name,
			QuestionCount: c.QuestionCount,
			PassFraction:  c.PassFraction,
		})
	}
	return out
}

// Category returns the category descriptor or ErrUnknownCategory.
func (b *Bank) Category(name string) (*Category, error) {
	c, ok := b.categories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, name)
	}
	return c, nil
}

// Sample draws the category's configured number of questions without
// replacement. The returned templates include answer keys; callers must use
// QuestionTemplate.Public() before serializing to a client.
func (b *Bank) Sample(category string) ([]model.QuestionTemplate, error) {
	c, err := b.Category(category)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	perm := b.rng.Perm(len(c.pool))
	b.mu.Unlock()

	n := c.QuestionCount
	if n > len(c.pool) {
		n = len(c.pool)
	}

	out := make([]model.QuestionTemplate, 0, n)
	for _, idx := range perm[:n] {
		out = append(out, c.pool[idx])
	}
	return out, nil
}

// Resolve maps stored question IDs back to their templates, preserving
// order. Fails if any ID is unknown — a session can only reference templates
// from the bank it was created against.
func (b *Bank) Resolve(category string, ids []string) ([]model.QuestionTemplate, error) {
	c, err := b.Category(category)
	if err != nil {
		return nil, err
	}

	out := make([]model.QuestionTemplate, 0, len(ids))
	for _, id := range ids {
		tpl, ok := c.byID[id]
		if !ok {
			return nil, fmt.Errorf("questionbank: unknown question id %q in category %q", id, category)
		}
		out = append(out, *tpl)
	}
	return out, nil
}
