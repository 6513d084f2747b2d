package service

import (
	"context"
	"crypto/rand"
	"errors"
	mrand "math/rand"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prooftalent/assessment-backend/internal/behavior"
	"github.com/prooftalent/assessment-backend/internal/config"
	"github.com/prooftalent/assessment-backend/internal/fhe"
	"github.com/prooftalent/assessment-backend/internal/ledger"
	"github.com/prooftalent/assessment-backend/internal/model"
	"github.com/prooftalent/assessment-backend/internal/questionbank"
	"github.com/rs/zerolog"
)

// --- in-memory fakes ---

type memSessionStore struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*model.Session
}

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{sessions: make(map[uuid.UUID]*model.Session)}
}

func (m *memSessionStore) Create(_ context.Context, s *model.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *s
	m.sessions[s.ID] = &clone
	return nil
}

func (m *memSessionStore) Get(_ context.Context, id uuid.UUID) (*model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, errors.New("session not found")
	}
	clone := *s
	return &clone, nil
}

func (m *memSessionStore) TransitionState(_ context.Context, id uuid.UUID, from, to model.SessionState) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok || s.State != from {
		return false, nil
	}
	s.State = to
	now := time.Now()
	switch to {
	case model.SessionStateSubmitted:
		s.SubmittedAt = &now
	case model.SessionStateScored:
		s.ScoredAt = &now
	}
	return true, nil
}

func (m *memSessionStore) SaveResult(_ context.Context, id uuid.UUID, res *model.ScoreResult) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok || s.State != model.SessionStateSubmitted {
		return false, nil
	}
	now := time.Now()
	s.State = model.SessionStateScored
	s.ScoredAt = &now
	clone := *res
	s.Result = &clone
	return true, nil
}

type memCertificateStore struct {
	mu     sync.Mutex
	certs  map[uuid.UUID]*model.Certificate // keyed by session ID
	claims map[uuid.UUID]time.Time          // keyed by certificate ID
}

func newMemCertificateStore() *memCertificateStore {
	return &memCertificateStore{
		certs:  make(map[uuid.UUID]*model.Certificate),
		claims: make(map[uuid.UUID]time.Time),
	}
}

func (m *memCertificateStore) Create(_ context.Context, c *model.Certificate) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.certs[c.SessionID]; exists {
		return false, nil
	}
	clone := *c
	m.certs[c.SessionID] = &clone
	return true, nil
}

func (m *memCertificateStore) GetBySession(_ context.Context, sessionID uuid.UUID) (*model.Certificate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.certs[sessionID]
	if !ok {
		return nil, nil
	}
	clone := *c
	return &clone, nil
}

func (m *memCertificateStore) ClaimMint(_ context.Context, id uuid.UUID, staleBefore time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.certs {
		if c.ID == id && c.MintedTokenID != nil {
			return false, nil
		}
	}
	if at, held := m.claims[id]; held && at.After(staleBefore) {
		return false, nil
	}
	m.claims[id] = time.Now()
	return true, nil
}

func (m *memCertificateStore) ReleaseMintClaim(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.certs {
		if c.ID == id && c.MintedTokenID != nil {
			return nil
		}
	}
	delete(m.claims, id)
	return nil
}

func (m *memCertificateStore) SetMinted(_ context.Context, id uuid.UUID, tokenID int64, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.certs {
		if c.ID == id && c.MintedTokenID == nil {
			tid := tokenID
			ts := at
			c.MintedTokenID = &tid
			c.MintedAt = &ts
		}
	}
	return nil
}

type fakeLedger struct {
	mu        sync.Mutex
	mints     int
	nextToken int64
	failWith  error
	delay     time.Duration
}

func (f *fakeLedger) Mint(_ context.Context, _ ledger.MintRecord) (int64, error) {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return 0, f.failWith
	}
	f.mints++
	f.nextToken++
	return f.nextToken, nil
}

func (f *fakeLedger) Badges(context.Context, string) ([]ledger.Badge, error) { return nil, nil }
func (f *fakeLedger) TokenMetadata(context.Context, int64) (*ledger.Metadata, error) {
	return nil, nil
}
func (f *fakeLedger) MintFee(context.Context) (string, error) { return "0", nil }

func (f *fakeLedger) mintCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mints
}

// --- fixture ---

var (
	keyOnce sync.Once
	key     *fhe.PrivateKey
	keyErr  error
)

func sharedKey(t *testing.T) *fhe.PrivateKey {
	t.Helper()
	keyOnce.Do(func() {
		key, keyErr = fhe.GenerateKey(rand.Reader, 512)
	})
	if keyErr != nil {
		t.Fatalf("GenerateKey: %v", keyErr)
	}
	return key
}

type fixture struct {
	sessions *memSessionStore
	certs    *memCertificateStore
	chain    *fakeLedger
	bank     *questionbank.Bank
	svc      *SessionService
	certSvc  *CertificateService
	key      *fhe.PrivateKey
}

func newFixture(t *testing.T, questionCount int) *fixture {
	t.Helper()

	priv := sharedKey(t)
	log := zerolog.Nop()

	sessions := newMemSessionStore()
	certs := newMemCertificateStore()
	chain := &fakeLedger{}
	bank := questionbank.New(mrand.New(mrand.NewSource(42)), questionCount, 0.5)
	evaluator := NewEvaluatorService(priv, log)
	analyzer := behavior.New(behavior.Params{
		VarianceFloor:              1.0,
		FlagThreshold:              0.5,
		ExpectedSecondsPerQuestion: 30,
	})
	tokens := NewTokenService(&config.Config{TokenSecret: "test-secret", SessionTTL: time.Hour})

	return &fixture{
		sessions: sessions,
		certs:    certs,
		chain:    chain,
		bank:     bank,
		key:      priv,
		svc: NewSessionService(
			sessions, bank, evaluator, analyzer, tokens,
			NewNopTelemetrySink(), NewNopMonitor(), time.Hour, log,
		),
		certSvc: NewCertificateService(sessions, certs, chain, 5*time.Second, log),
	}
}

// begin creates a session and moves it IN_PROGRESS, returning the answer
// keys alongside the session.
func (f *fixture) begin(t *testing.T, category string) (*model.Session, []model.QuestionTemplate) {
	t.Helper()
	ctx := context.Background()

	session, token, err := f.svc.Create(ctx, &model.CreateSessionRequest{
		UserID:   "user-1",
		Category: category,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if token == "" {
		t.Fatal("Create returned empty token")
	}
	if session.State != model.SessionStateCreated {
		t.Fatalf("new session state = %s, want %s", session.State, model.SessionStateCreated)
	}

	if _, _, err := f.svc.Questions(ctx, session.ID); err != nil {
		t.Fatalf("Questions: %v", err)
	}

	templates, err := f.bank.Resolve(category, session.QuestionIDs)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	return session, templates
}

// encryptAnswers produces answer vectors selecting the correct option when
// correct[i] is true, and the next option over otherwise.
func (f *fixture) encryptAnswers(t *testing.T, templates []model.QuestionTemplate, correct func(i int) bool) [][]fhe.Ciphertext {
	t.Helper()
	pub := &f.key.PublicKey

	answers := make([][]fhe.Ciphertext, len(templates))
	for i, tpl := range templates {
		selected := tpl.CorrectIndex
		if !correct(i) {
			selected = (tpl.CorrectIndex + 1) % len(tpl.Options)
		}
		vec, err := fhe.EncryptSelection(pub, selected, len(tpl.Options))
		if err != nil {
			t.Fatalf("EncryptSelection: %v", err)
		}
		answers[i] = vec
	}
	return answers
}

// cleanTelemetry is plausible human telemetry that trips no heuristic.
func cleanTelemetry(n int) *model.AnswerTelemetry {
	times := make([]float64, n)
	switches := make([]int, n)
	total := 0.0
	for i := range times {
		times[i] = 20 + 9*float64(i)
		total += times[i]
	}
	return &model.AnswerTelemetry{
		AnswerTimes:  times,
		SwitchCounts: switches,
		SessionStart: 1000,
		SessionEnd:   1000 + int64(total),
	}
}

// --- tests ---

func TestSubmitScoresAllCorrect(t *testing.T) {
	f := newFixture(t, 3)
	session, templates := f.begin(t, "math")

	answers := f.encryptAnswers(t, templates, func(int) bool { return true })
	result, err := f.svc.Submit(context.Background(), session.ID, answers, cleanTelemetry(3))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if result.CorrectCount != 3 {
		t.Errorf("CorrectCount = %d, want 3", result.CorrectCount)
	}
	if result.Level != 5 {
		t.Errorf("Level = %d, want 5", result.Level)
	}
	if !result.Passed {
		t.Error("Passed = false, want true")
	}
	if result.IsFlagged {
		t.Error("clean telemetry was flagged")
	}
	if result.EncryptedScore == "" {
		t.Error("EncryptedScore is empty")
	}

	stored, err := f.sessions.Get(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if stored.State != model.SessionStateScored {
		t.Errorf("state after submit = %s, want %s", stored.State, model.SessionStateScored)
	}
}

func TestSubmitScoresPartiallyCorrect(t *testing.T) {
	f := newFixture(t, 3)
	session, templates := f.begin(t, "programming")

	answers := f.encryptAnswers(t, templates, func(i int) bool { return i == 0 })
	result, err := f.svc.Submit(context.Background(), session.ID, answers, cleanTelemetry(3))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if result.CorrectCount != 1 {
		t.Errorf("CorrectCount = %d, want 1", result.CorrectCount)
	}
	// 1/3 correct misses the 0.5 cutoff (ceil(0.5*3) = 2).
	if result.Passed {
		t.Error("Passed = true, want false")
	}
	if result.Level != model.LevelFor(1, 3) {
		t.Errorf("Level = %d, want %d", result.Level, model.LevelFor(1, 3))
	}

	stored, _ := f.sessions.Get(context.Background(), session.ID)
	if stored.State != model.SessionStateRejected {
		t.Errorf("failed session state = %s, want %s", stored.State, model.SessionStateRejected)
	}
}

func TestSubmitTwiceReturnsAlreadySubmitted(t *testing.T) {
	f := newFixture(t, 3)
	session, templates := f.begin(t, "blockchain")
	answers := f.encryptAnswers(t, templates, func(int) bool { return true })

	if _, err := f.svc.Submit(context.Background(), session.ID, answers, cleanTelemetry(3)); err != nil {
		t.Fatalf("first Submit: %v", err)
	}

	_, err := f.svc.Submit(context.Background(), session.ID, answers, cleanTelemetry(3))
	if !errors.Is(err, ErrAlreadySubmitted) {
		t.Fatalf("second Submit error = %v, want ErrAlreadySubmitted", err)
	}
}

func TestSubmitRejectsCountMismatches(t *testing.T) {
	f := newFixture(t, 3)
	session, templates := f.begin(t, "security")
	answers := f.encryptAnswers(t, templates, func(int) bool { return true })

	ctx := context.Background()

	_, err := f.svc.Submit(ctx, session.ID, answers[:2], cleanTelemetry(3))
	if !errors.Is(err, ErrAnswerCountMismatch) {
		t.Fatalf("short answers error = %v, want ErrAnswerCountMismatch", err)
	}

	_, err = f.svc.Submit(ctx, session.ID, answers, cleanTelemetry(2))
	if !errors.Is(err, ErrTelemetryMismatch) {
		t.Fatalf("short telemetry error = %v, want ErrTelemetryMismatch", err)
	}

	// Both rejections happen before the state transition; the session is
	// still live and a well-formed submit succeeds.
	if _, err := f.svc.Submit(ctx, session.ID, answers, cleanTelemetry(3)); err != nil {
		t.Fatalf("well-formed Submit after rejections: %v", err)
	}
}

func TestSubmitRejectsMalformedCiphertext(t *testing.T) {
	f := newFixture(t, 3)
	session, templates := f.begin(t, "math")
	answers := f.encryptAnswers(t, templates, func(int) bool { return true })
	answers[1][0].Blob = "not base64 ciphertext"

	_, err := f.svc.Submit(context.Background(), session.ID, answers, cleanTelemetry(3))
	if !errors.Is(err, fhe.ErrInvalidCiphertext) {
		t.Fatalf("Submit error = %v, want ErrInvalidCiphertext", err)
	}

	stored, _ := f.sessions.Get(context.Background(), session.ID)
	if stored.State != model.SessionStateInProgress {
		t.Errorf("state after bad ciphertext = %s, want %s", stored.State, model.SessionStateInProgress)
	}
}

func TestSubmitRejectsMultiSelection(t *testing.T) {
	f := newFixture(t, 3)
	session, templates := f.begin(t, "math")
	answers := f.encryptAnswers(t, templates, func(int) bool { return true })

	// Overwrite a zero slot with a second Enc(1): the vector now selects two
	// options and must be rejected even though every envelope is valid.
	one, err := f.key.EncryptInt(1)
	if err != nil {
		t.Fatalf("EncryptInt: %v", err)
	}
	wrong := (templates[0].CorrectIndex + 1) % len(templates[0].Options)
	answers[0][wrong] = fhe.Seal(one)

	_, serr := f.svc.Submit(context.Background(), session.ID, answers, cleanTelemetry(3))
	if !errors.Is(serr, fhe.ErrInvalidCiphertext) {
		t.Fatalf("Submit error = %v, want ErrInvalidCiphertext", serr)
	}
}

func TestSubmitBeforeQuestionsIsInvalidState(t *testing.T) {
	f := newFixture(t, 3)
	ctx := context.Background()

	session, _, err := f.svc.Create(ctx, &model.CreateSessionRequest{UserID: "u", Category: "math"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	templates, _ := f.bank.Resolve("math", session.QuestionIDs)
	answers := f.encryptAnswers(t, templates, func(int) bool { return true })

	_, err = f.svc.Submit(ctx, session.ID, answers, cleanTelemetry(3))
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("Submit on CREATED error = %v, want ErrInvalidState", err)
	}
}

func TestFlaggedSubmissionIsRejected(t *testing.T) {
	f := newFixture(t, 3)
	session, templates := f.begin(t, "fhe")
	answers := f.encryptAnswers(t, templates, func(int) bool { return true })

	// Bot-like: flat timing, heavy switching, implausibly fast. All three
	// heuristics fire, likelihood 1.0.
	telemetry := &model.AnswerTelemetry{
		AnswerTimes:  []float64{2, 2, 2},
		SwitchCounts: []int{3, 3, 3},
		SessionStart: 1000,
		SessionEnd:   1006,
	}

	result, err := f.svc.Submit(context.Background(), session.ID, answers, telemetry)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !result.IsFlagged {
		t.Fatal("bot-like telemetry was not flagged")
	}
	// Perfect score, but flagged: no certificate.
	if result.CorrectCount != 3 {
		t.Errorf("CorrectCount = %d, want 3", result.CorrectCount)
	}

	stored, _ := f.sessions.Get(context.Background(), session.ID)
	if stored.State != model.SessionStateRejected {
		t.Errorf("flagged session state = %s, want %s", stored.State, model.SessionStateRejected)
	}

	_, err = f.certSvc.Issue(context.Background(), session.ID)
	if !errors.Is(err, ErrNotEligible) {
		t.Fatalf("Issue on flagged session error = %v, want ErrNotEligible", err)
	}
}

func TestRecordAnswerValidation(t *testing.T) {
	f := newFixture(t, 3)
	session, _ := f.begin(t, "math")
	ctx := context.Background()

	if err := f.svc.RecordAnswer(ctx, session.ID, &model.RecordAnswerRequest{
		QuestionIndex: 1, AnswerSeconds: 12.5, SwitchCount: 1,
	}); err != nil {
		t.Fatalf("RecordAnswer: %v", err)
	}

	err := f.svc.RecordAnswer(ctx, session.ID, &model.RecordAnswerRequest{QuestionIndex: 3})
	if !errors.Is(err, ErrQuestionIndexOutOfRange) {
		t.Fatalf("out-of-range error = %v, want ErrQuestionIndexOutOfRange", err)
	}
}

func TestExpiredSessionRejectedOnAccess(t *testing.T) {
	f := newFixture(t, 3)
	ctx := context.Background()

	session, _, err := f.svc.Create(ctx, &model.CreateSessionRequest{UserID: "u", Category: "math"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Backdate the expiry directly in the store.
	f.sessions.mu.Lock()
	f.sessions.sessions[session.ID].ExpiresAt = time.Now().Add(-time.Minute)
	f.sessions.mu.Unlock()

	_, _, err = f.svc.Questions(ctx, session.ID)
	if !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("Questions on expired session error = %v, want ErrSessionExpired", err)
	}

	stored, _ := f.sessions.Get(ctx, session.ID)
	if stored.State != model.SessionStateRejected {
		t.Errorf("expired session state = %s, want %s", stored.State, model.SessionStateRejected)
	}
}

func TestResultNotReady(t *testing.T) {
	f := newFixture(t, 3)
	session, _ := f.begin(t, "math")

	_, err := f.svc.Result(context.Background(), session.ID)
	if !errors.Is(err, ErrResultNotReady) {
		t.Fatalf("Result before scoring error = %v, want ErrResultNotReady", err)
	}
}

func TestIssueCertificateIsIdempotent(t *testing.T) {
	f := newFixture(t, 3)
	session, templates := f.begin(t, "blockchain")
	answers := f.encryptAnswers(t, templates, func(int) bool { return true })
	ctx := context.Background()

	if _, err := f.svc.Submit(ctx, session.ID, answers, cleanTelemetry(3)); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	first, err := f.certSvc.Issue(ctx, session.ID)
	if err != nil {
		t.Fatalf("first Issue: %v", err)
	}
	if first.MintedTokenID == nil {
		t.Fatal("first Issue did not mint")
	}
	if first.Fingerprint == "" {
		t.Error("certificate has no fingerprint")
	}

	second, err := f.certSvc.Issue(ctx, session.ID)
	if err != nil {
		t.Fatalf("second Issue: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("second Issue returned a different certificate: %s vs %s", second.ID, first.ID)
	}
	if f.chain.mintCount() != 1 {
		t.Errorf("mint count = %d, want 1", f.chain.mintCount())
	}

	stored, _ := f.sessions.Get(ctx, session.ID)
	if stored.State != model.SessionStateCertified {
		t.Errorf("certified session state = %s, want %s", stored.State, model.SessionStateCertified)
	}
}

func TestConcurrentIssueMintsOnce(t *testing.T) {
	f := newFixture(t, 3)
	session, templates := f.begin(t, "blockchain")
	answers := f.encryptAnswers(t, templates, func(int) bool { return true })
	ctx := context.Background()

	if _, err := f.svc.Submit(ctx, session.ID, answers, cleanTelemetry(3)); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	// Slow ledger so both callers observe an unminted certificate before
	// either mint completes.
	f.chain.delay = 50 * time.Millisecond

	type outcome struct {
		cert *model.Certificate
		err  error
	}
	results := make(chan outcome, 2)
	for i := 0; i < 2; i++ {
		go func() {
			cert, err := f.certSvc.Issue(ctx, session.ID)
			results <- outcome{cert, err}
		}()
	}

	var certs []*model.Certificate
	for i := 0; i < 2; i++ {
		out := <-results
		if out.err != nil {
			t.Fatalf("concurrent Issue: %v", out.err)
		}
		certs = append(certs, out.cert)
	}

	if f.chain.mintCount() != 1 {
		t.Errorf("mint count = %d, want 1", f.chain.mintCount())
	}
	if certs[0].ID != certs[1].ID {
		t.Errorf("concurrent Issue returned different certificates: %s vs %s", certs[0].ID, certs[1].ID)
	}
	if certs[0].MintedTokenID == nil && certs[1].MintedTokenID == nil {
		t.Error("neither caller observed the minted certificate")
	}

	stored, _ := f.certs.GetBySession(ctx, session.ID)
	if stored == nil || stored.MintedTokenID == nil {
		t.Fatal("certificate not minted after concurrent issuance")
	}
}

func TestIssueRetriesMintAfterLedgerFailure(t *testing.T) {
	f := newFixture(t, 3)
	session, templates := f.begin(t, "security")
	answers := f.encryptAnswers(t, templates, func(int) bool { return true })
	ctx := context.Background()

	if _, err := f.svc.Submit(ctx, session.ID, answers, cleanTelemetry(3)); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	f.chain.failWith = ledger.ErrMintFailed
	cert, err := f.certSvc.Issue(ctx, session.ID)
	if !errors.Is(err, ledger.ErrMintFailed) {
		t.Fatalf("Issue with failing ledger error = %v, want ErrMintFailed", err)
	}
	if cert == nil || cert.MintedTokenID != nil {
		t.Fatal("certificate should exist unminted after ledger failure")
	}

	f.chain.failWith = nil
	retried, err := f.certSvc.Issue(ctx, session.ID)
	if err != nil {
		t.Fatalf("Issue after ledger recovery: %v", err)
	}
	if retried.ID != cert.ID {
		t.Errorf("retry returned a different certificate")
	}
	if retried.MintedTokenID == nil {
		t.Fatal("retry did not mint")
	}
	if f.chain.mintCount() != 1 {
		t.Errorf("mint count = %d, want 1", f.chain.mintCount())
	}
}

func TestIssueOnUnscoredSessionIsNotEligible(t *testing.T) {
	f := newFixture(t, 3)
	session, _ := f.begin(t, "math")

	_, err := f.certSvc.Issue(context.Background(), session.ID)
	if !errors.Is(err, ErrNotEligible) {
		t.Fatalf("Issue on in-progress session error = %v, want ErrNotEligible", err)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	tokens := NewTokenService(&config.Config{TokenSecret: "secret", SessionTTL: time.Hour})
	id := uuid.New()

	signed, err := tokens.Issue(id, "alice")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	claims, err := tokens.Validate(signed)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if claims.SessionID != id.String() || claims.UserID != "alice" {
		t.Errorf("claims = %+v, want session %s user alice", claims, id)
	}

	other := NewTokenService(&config.Config{TokenSecret: "different", SessionTTL: time.Hour})
	if _, err := other.Validate(signed); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("Validate with wrong secret error = %v, want ErrTokenInvalid", err)
	}

	if _, err := tokens.Validate("garbage"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("Validate garbage error = %v, want ErrTokenInvalid", err)
	}
}
