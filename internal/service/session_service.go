package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prooftalent/assessment-backend/internal/fhe"
	"github.com/prooftalent/assessment-backend/internal/model"
	"github.com/prooftalent/assessment-backend/internal/questionbank"
	"github.com/rs/zerolog"
)

var (
	// ErrInvalidState is returned when the session's lifecycle state does
	// not permit the requested operation.
	ErrInvalidState = errors.New("session state does not permit this operation")
	// ErrAlreadySubmitted is returned on every submit after the first.
	ErrAlreadySubmitted = errors.New("session already submitted")
	// ErrSessionExpired is returned when the session's TTL lapsed before
	// submission.
	ErrSessionExpired = errors.New("session expired")
	// ErrAnswerCountMismatch is returned when the number of answer vectors
	// differs from the session's question count.
	ErrAnswerCountMismatch = errors.New("answer count does not match question count")
	// ErrTelemetryMismatch is returned when telemetry slices do not carry
	// exactly one entry per question.
	ErrTelemetryMismatch = errors.New("telemetry length does not match question count")
	// ErrQuestionIndexOutOfRange is returned for telemetry deltas that
	// reference a question the session does not have.
	ErrQuestionIndexOutOfRange = errors.New("question index out of range")
	// ErrResultNotReady is returned when a result is requested before the
	// session has been scored.
	ErrResultNotReady = errors.New("session has not been scored yet")
)

// SessionStore is the persistence surface SessionService needs. Implemented
// by repository.SessionRepository.
type SessionStore interface {
	Create(ctx context.Context, s *model.Session) error
	Get(ctx context.Context, id uuid.UUID) (*model.Session, error)
	TransitionState(ctx context.Context, id uuid.UUID, from, to model.SessionState) (bool, error)
	SaveResult(ctx context.Context, id uuid.UUID, res *model.ScoreResult) (bool, error)
}

// BehaviorAnalyzer scores raw telemetry into a suspicion report.
type BehaviorAnalyzer interface {
	Analyze(t *model.AnswerTelemetry) model.BehaviorReport
}

// SessionService drives the assessment lifecycle from creation through
// scoring. Every state transition is a conditional update in the store, so
// concurrent requests race safely: one wins, the rest observe the new state.
type SessionService struct {
	store      SessionStore
	bank       *questionbank.Bank
	evaluator  *EvaluatorService
	analyzer   BehaviorAnalyzer
	tokens     *TokenService
	telemetry  TelemetrySink
	monitor    MonitorPublisher
	sessionTTL time.Duration
	log        zerolog.Logger
}

// NewSessionService creates a SessionService.
func NewSessionService(
	store SessionStore,
	bank *questionbank.Bank,
	evaluator *EvaluatorService,
	analyzer BehaviorAnalyzer,
	tokens *TokenService,
	telemetry TelemetrySink,
	monitor MonitorPublisher,
	sessionTTL time.Duration,
	log zerolog.Logger,
) *SessionService {
	return &SessionService{
		store:      store,
		bank:       bank,
		evaluator:  evaluator,
		analyzer:   analyzer,
		tokens:     tokens,
		telemetry:  telemetry,
		monitor:    monitor,
		sessionTTL: sessionTTL,
		log:        log.With().Str("component", "session_service").Logger(),
	}
}

// Create samples a fresh question set for the category and opens a new
// session in CREATED state. The returned token authenticates all subsequent
// calls against this session.
func (s *SessionService) Create(ctx context.Context, req *model.CreateSessionRequest) (*model.Session, string, error) {
	questions, err := s.bank.Sample(req.Category)
	if err != nil {
		return nil, "", err
	}

	ids := make([]string, len(questions))
	for i := range questions {
		ids[i] = questions[i].ID
	}

	now := time.Now()
	session := &model.Session{
		ID:          uuid.New(),
		UserID:      req.UserID,
		Category:    req.Category,
		QuestionIDs: ids,
		State:       model.SessionStateCreated,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.sessionTTL),
	}

	if err := s.store.Create(ctx, session); err != nil {
		return nil, "", fmt.Errorf("create session: %w", err)
	}

	token, err := s.tokens.Issue(session.ID, session.UserID)
	if err != nil {
		return nil, "", fmt.Errorf("issue session token: %w", err)
	}

	s.log.Info().
		Str("session_id", session.ID.String()).
		Str("category", session.Category).
		Int("questions", len(ids)).
		Msg("session created")
	s.publish(ctx, session)

	return session, token, nil
}

// Get loads a session, lazily expiring it when its TTL has lapsed. All other
// service methods go through this, so an expired session is rejected on the
// next touch even before the background sweep reaches it.
func (s *SessionService) Get(ctx context.Context, id uuid.UUID) (*model.Session, error) {
	session, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if session.Expired(time.Now()) {
		ok, err := s.store.TransitionState(ctx, id, session.State, model.SessionStateRejected)
		if err != nil {
			return nil, err
		}
		if ok {
			session.State = model.SessionStateRejected
			s.log.Info().Str("session_id", id.String()).Msg("session expired on access")
			s.publish(ctx, session)
		}
		return session, ErrSessionExpired
	}

	return session, nil
}

// Questions returns the session's question set without answer keys. The
// first fetch moves the session CREATED -> IN_PROGRESS and starts the
// attempt; later fetches are idempotent reads.
func (s *SessionService) Questions(ctx context.Context, id uuid.UUID) (*model.Session, []model.PublicQuestion, error) {
	session, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	switch session.State {
	case model.SessionStateCreated:
		ok, err := s.store.TransitionState(ctx, id, model.SessionStateCreated, model.SessionStateInProgress)
		if err != nil {
			return nil, nil, err
		}
		if ok {
			session.State = model.SessionStateInProgress
			s.publish(ctx, session)
		}
	case model.SessionStateInProgress:
		// re-fetch while answering, fine
	default:
		return nil, nil, ErrInvalidState
	}

	templates, err := s.bank.Resolve(session.Category, session.QuestionIDs)
	if err != nil {
		return nil, nil, err
	}

	public := make([]model.PublicQuestion, len(templates))
	for i := range templates {
		public[i] = templates[i].Public()
	}
	return session, public, nil
}

// RecordAnswer ingests a per-question telemetry delta from an in-progress
// session. Deltas are advisory; the authoritative telemetry arrives with the
// final submission.
func (s *SessionService) RecordAnswer(ctx context.Context, id uuid.UUID, req *model.RecordAnswerRequest) error {
	session, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if session.State != model.SessionStateInProgress {
		return ErrInvalidState
	}
	if req.QuestionIndex >= len(session.QuestionIDs) {
		return ErrQuestionIndexOutOfRange
	}

	event := model.TelemetryEvent{
		SessionID:     id.String(),
		QuestionIndex: req.QuestionIndex,
		AnswerSeconds: req.AnswerSeconds,
		SwitchCount:   req.SwitchCount,
		RecordedAt:    time.Now().Unix(),
	}
	if err := s.telemetry.Record(ctx, event); err != nil {
		// Telemetry loss degrades the behavior signal but must not block
		// the attempt.
		s.log.Warn().Err(err).Str("session_id", id.String()).Msg("failed to record telemetry delta")
	}
	return nil
}

// Submit scores the encrypted answers exactly once. Input validation runs
// before the state transition, so a malformed submission leaves the session
// IN_PROGRESS and retryable; after the transition wins, the session is
// submitted for good and every later call observes ErrAlreadySubmitted.
func (s *SessionService) Submit(ctx context.Context, id uuid.UUID, answers [][]fhe.Ciphertext, telemetry *model.AnswerTelemetry) (*model.ScoreResult, error) {
	session, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if session.SubmittedAt != nil {
		return nil, ErrAlreadySubmitted
	}
	if session.State != model.SessionStateInProgress {
		return nil, ErrInvalidState
	}

	total := len(session.QuestionIDs)
	if len(answers) != total {
		return nil, ErrAnswerCountMismatch
	}
	if len(telemetry.AnswerTimes) != total || len(telemetry.SwitchCounts) != total {
		return nil, ErrTelemetryMismatch
	}

	questions, err := s.bank.Resolve(session.Category, session.QuestionIDs)
	if err != nil {
		return nil, err
	}
	if err := s.evaluator.Validate(questions, answers); err != nil {
		return nil, err
	}

	ok, err := s.store.TransitionState(ctx, id, model.SessionStateInProgress, model.SessionStateSubmitted)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Lost the race: someone else submitted or the sweep expired us.
		current, gerr := s.store.Get(ctx, id)
		if gerr != nil {
			return nil, gerr
		}
		if current.SubmittedAt != nil {
			return nil, ErrAlreadySubmitted
		}
		return nil, ErrSessionExpired
	}
	session.State = model.SessionStateSubmitted
	s.publish(ctx, session)

	correct, encryptedScore, err := s.evaluator.Evaluate(questions, answers)
	if err != nil {
		// Validation passed, so this is an internal fault. The session
		// stays SUBMITTED for operator attention rather than silently
		// rejecting the attempt.
		s.log.Error().Err(err).Str("session_id", id.String()).Msg("evaluation failed after submit")
		return nil, err
	}

	report := s.analyzer.Analyze(telemetry)

	category, err := s.bank.Category(session.Category)
	if err != nil {
		return nil, err
	}

	result := &model.ScoreResult{
		CorrectCount:       correct,
		TotalQuestions:     total,
		Level:              model.LevelFor(correct, total),
		Passed:             correct >= model.PassThreshold(category.PassFraction, total),
		EncryptedScore:     encryptedScore.Blob,
		CheatingLikelihood: report.CheatingLikelihood,
		IsFlagged:          report.IsFlagged,
	}

	saved, err := s.store.SaveResult(ctx, id, result)
	if err != nil {
		return nil, err
	}
	if !saved {
		return nil, ErrAlreadySubmitted
	}
	session.State = model.SessionStateScored
	session.Result = result
	s.publish(ctx, session)

	if !result.Passed || result.IsFlagged {
		if _, err := s.store.TransitionState(ctx, id, model.SessionStateScored, model.SessionStateRejected); err != nil {
			return nil, err
		}
		session.State = model.SessionStateRejected
		s.publish(ctx, session)
	}

	s.log.Info().
		Str("session_id", id.String()).
		Int("correct", correct).
		Int("total", total).
		Bool("passed", result.Passed).
		Bool("flagged", result.IsFlagged).
		Float64("cheating_likelihood", result.CheatingLikelihood).
		Msg("session scored")

	return result, nil
}

// Result returns the stored score for a scored session.
func (s *SessionService) Result(ctx context.Context, id uuid.UUID) (*model.Session, error) {
	session, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Result == nil {
		return nil, ErrResultNotReady
	}
	return session, nil
}

func (s *SessionService) publish(ctx context.Context, session *model.Session) {
	s.monitor.Publish(ctx, MonitorEvent{
		SessionID: session.ID.String(),
		UserID:    session.UserID,
		Category:  session.Category,
		State:     session.State,
		At:        time.Now(),
	})
}
