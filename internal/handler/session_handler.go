package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prooftalent/assessment-backend/internal/fhe"
	"github.com/prooftalent/assessment-backend/internal/model"
	"github.com/prooftalent/assessment-backend/internal/questionbank"
	"github.com/prooftalent/assessment-backend/internal/repository"
	"github.com/prooftalent/assessment-backend/internal/response"
	"github.com/prooftalent/assessment-backend/internal/service"
	"github.com/prooftalent/assessment-backend/internal/validator"
)

// SessionHandler handles the assessment session lifecycle endpoints.
type SessionHandler struct {
	sessionService *service.SessionService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessionService *service.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

// SubmitRequest is the final submission payload: one encrypted one-hot
// vector per question plus the attempt's behavior telemetry.
type SubmitRequest struct {
	Answers   [][]fhe.Ciphertext    `json:"answers" binding:"required"`
	Telemetry model.AnswerTelemetry `json:"telemetry" binding:"required"`
}

// CreateSession godoc
// POST /api/v1/sessions
func (h *SessionHandler) CreateSession(c *gin.Context) {
	var req model.CreateSessionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	session, token, err := h.sessionService.Create(c.Request.Context(), &req)
	if err != nil {
		failSession(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"session_id": session.ID,
		"category":   session.Category,
		"state":      session.State,
		"expires_at": session.ExpiresAt,
		"token":      token,
	})
}

// GetQuestions godoc
// GET /api/v1/sessions/:id/questions
// The first fetch starts the attempt.
func (h *SessionHandler) GetQuestions(c *gin.Context) {
	id, ok := parseSessionID(c)
	if !ok {
		return
	}

	session, questions, err := h.sessionService.Questions(c.Request.Context(), id)
	if err != nil {
		failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"session_id": session.ID,
		"state":      session.State,
		"expires_at": session.ExpiresAt,
		"questions":  questions,
	})
}

// RecordAnswer godoc
// POST /api/v1/sessions/:id/answers
func (h *SessionHandler) RecordAnswer(c *gin.Context) {
	id, ok := parseSessionID(c)
	if !ok {
		return
	}

	var req model.RecordAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.sessionService.RecordAnswer(c.Request.Context(), id, &req); err != nil {
		failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"recorded": true})
}

// Submit godoc
// POST /api/v1/sessions/:id/submit
func (h *SessionHandler) Submit(c *gin.Context) {
	id, ok := parseSessionID(c)
	if !ok {
		return
	}

	var req SubmitRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.sessionService.Submit(c.Request.Context(), id, req.Answers, &req.Telemetry)
	if err != nil {
		failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// GetResult godoc
// GET /api/v1/sessions/:id/result
func (h *SessionHandler) GetResult(c *gin.Context) {
	id, ok := parseSessionID(c)
	if !ok {
		return
	}

	session, err := h.sessionService.Result(c.Request.Context(), id)
	if err != nil {
		failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"session_id": session.ID,
		"state":      session.State,
		"result":     session.Result,
	})
}

func parseSessionID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return uuid.Nil, false
	}
	return id, true
}

// failSession maps service errors onto the HTTP error envelope.
func failSession(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrSessionNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, questionbank.ErrUnknownCategory):
		response.Fail(c, http.StatusBadRequest, response.ErrUnknownCategory)
	case errors.Is(err, service.ErrSessionExpired):
		response.Fail(c, http.StatusGone, response.ErrSessionExpired)
	case errors.Is(err, service.ErrAlreadySubmitted):
		response.Fail(c, http.StatusConflict, response.ErrAlreadySubmitted)
	case errors.Is(err, service.ErrInvalidState), errors.Is(err, service.ErrResultNotReady):
		response.FailWithReason(c, http.StatusConflict, response.ErrInvalidState, err.Error())
	case errors.Is(err, service.ErrAnswerCountMismatch):
		response.Fail(c, http.StatusBadRequest, response.ErrAnswerCountMismatch)
	case errors.Is(err, service.ErrTelemetryMismatch),
		errors.Is(err, service.ErrQuestionIndexOutOfRange):
		response.FailWithReason(c, http.StatusBadRequest, response.ErrValidation, err.Error())
	case errors.Is(err, fhe.ErrInvalidCiphertext):
		response.FailWithReason(c, http.StatusBadRequest, response.ErrInvalidCiphertext, err.Error())
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
