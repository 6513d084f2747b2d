package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prooftalent/assessment-backend/internal/ledger"
	"github.com/prooftalent/assessment-backend/internal/response"
)

// LedgerHandler proxies read-only ledger queries so clients never talk to
// the chain gateway directly.
type LedgerHandler struct {
	chain ledger.Client
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(chain ledger.Client) *LedgerHandler {
	return &LedgerHandler{chain: chain}
}

// MintFee godoc
// GET /api/v1/ledger/mint-fee
func (h *LedgerHandler) MintFee(c *gin.Context) {
	fee, err := h.chain.MintFee(c.Request.Context())
	if err != nil {
		response.FailWithReason(c, http.StatusBadGateway, response.ErrMintFailed, err.Error())
		return
	}
	response.Success(c, http.StatusOK, gin.H{"mint_fee_wei": fee})
}

// Badges godoc
// GET /api/v1/ledger/badges/:owner
func (h *LedgerHandler) Badges(c *gin.Context) {
	owner := c.Param("owner")
	badges, err := h.chain.Badges(c.Request.Context(), owner)
	if err != nil {
		response.FailWithReason(c, http.StatusBadGateway, response.ErrMintFailed, err.Error())
		return
	}
	if badges == nil {
		badges = []ledger.Badge{}
	}
	response.Success(c, http.StatusOK, gin.H{"owner": owner, "badges": badges})
}

// TokenMetadata godoc
// GET /api/v1/ledger/tokens/:token_id
func (h *LedgerHandler) TokenMetadata(c *gin.Context) {
	tokenID, err := strconv.ParseInt(c.Param("token_id"), 10, 64)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	meta, err := h.chain.TokenMetadata(c.Request.Context(), tokenID)
	if err != nil {
		response.FailWithReason(c, http.StatusBadGateway, response.ErrMintFailed, err.Error())
		return
	}
	if meta == nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}
	response.Success(c, http.StatusOK, meta)
}
