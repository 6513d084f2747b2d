package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prooftalent/assessment-backend/internal/fhe"
	"github.com/prooftalent/assessment-backend/internal/questionbank"
	"github.com/prooftalent/assessment-backend/internal/response"
	"github.com/prooftalent/assessment-backend/internal/service"
)

// QuizHandler serves the public quiz catalog and the evaluation public key.
type QuizHandler struct {
	bank      *questionbank.Bank
	evaluator *service.EvaluatorService
}

// NewQuizHandler creates a new QuizHandler.
func NewQuizHandler(bank *questionbank.Bank, evaluator *service.EvaluatorService) *QuizHandler {
	return &QuizHandler{bank: bank, evaluator: evaluator}
}

// ListCategories godoc
// GET /api/v1/quizzes
func (h *QuizHandler) ListCategories(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{
		"categories": h.bank.Categories(),
	})
}

// PublicKey godoc
// GET /api/v1/fhe/public-key
// Clients encrypt their answer vectors under this key before submission.
func (h *QuizHandler) PublicKey(c *gin.Context) {
	pub := h.evaluator.PublicKey()
	response.Success(c, http.StatusOK, gin.H{
		"scheme": fhe.Scheme,
		"n":      pub.N.Text(16),
	})
}
