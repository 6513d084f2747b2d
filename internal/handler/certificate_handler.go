package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prooftalent/assessment-backend/internal/ledger"
	"github.com/prooftalent/assessment-backend/internal/repository"
	"github.com/prooftalent/assessment-backend/internal/response"
	"github.com/prooftalent/assessment-backend/internal/service"
)

// CertificateHandler handles certificate issuance and retrieval.
type CertificateHandler struct {
	certificateService *service.CertificateService
}

// NewCertificateHandler creates a new CertificateHandler.
func NewCertificateHandler(certificateService *service.CertificateService) *CertificateHandler {
	return &CertificateHandler{certificateService: certificateService}
}

// Issue godoc
// POST /api/v1/sessions/:id/certificate
// Idempotent: repeated calls return the same certificate. A failed mint
// leaves the certificate unminted and is retried on the next call.
func (h *CertificateHandler) Issue(c *gin.Context) {
	id, ok := parseSessionID(c)
	if !ok {
		return
	}

	cert, err := h.certificateService.Issue(c.Request.Context(), id)
	switch {
	case err == nil:
		response.Success(c, http.StatusCreated, cert)
	case errors.Is(err, ledger.ErrMintFailed):
		// The certificate itself is durable; only the ledger anchor failed.
		response.FailWithReason(c, http.StatusBadGateway, response.ErrMintFailed, err.Error())
	case errors.Is(err, service.ErrNotEligible):
		response.Fail(c, http.StatusConflict, response.ErrNotEligible)
	case errors.Is(err, repository.ErrSessionNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// Get godoc
// GET /api/v1/sessions/:id/certificate
func (h *CertificateHandler) Get(c *gin.Context) {
	id, ok := parseSessionID(c)
	if !ok {
		return
	}

	cert, err := h.certificateService.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrCertificateNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, cert)
}
