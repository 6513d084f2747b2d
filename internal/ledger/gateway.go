package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Gateway talks to the mint relay service over HTTP. The relay holds the
// funded wallet and fronts the ERC-721 contract; this process never touches
// key material for the chain.
type Gateway struct {
	baseURL string
	client  *http.Client
	log     zerolog.Logger
}

// NewGateway creates a Gateway with the given base URL and per-call timeout.
func NewGateway(baseURL string, timeout time.Duration, log zerolog.Logger) *Gateway {
	return &Gateway{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		log:     log.With().Str("component", "ledger_gateway").Logger(),
	}
}

// gatewayError is the relay's error body. Reason carries the revert string
// from the chain when there is one.
type gatewayError struct {
	Reason string `json:"reason"`
}

type mintResponse struct {
	TokenID int64 `json:"token_id"`
}

// Mint implements Client. Every failure mode — transport error, non-2xx,
// undecodable body — wraps ErrMintFailed with the reason attached.
func (g *Gateway) Mint(ctx context.Context, record MintRecord) (int64, error) {
	var resp mintResponse
	if err := g.post(ctx, "/v1/mint", record, &resp); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMintFailed, err)
	}

	g.log.Info().
		Int64("token_id", resp.TokenID).
		Str("skill_type", record.SkillType).
		Msg("Badge minted")

	return resp.TokenID, nil
}

// Badges implements Client.
func (g *Gateway) Badges(ctx context.Context, owner string) ([]Badge, error) {
	var out []Badge
	if err := g.get(ctx, "/v1/badges/"+owner, &out); err != nil {
		return nil, fmt.Errorf("list badges: %w", err)
	}
	return out, nil
}

// TokenMetadata implements Client.
func (g *Gateway) TokenMetadata(ctx context.Context, tokenID int64) (*Metadata, error) {
	var out Metadata
	if err := g.get(ctx, fmt.Sprintf("/v1/tokens/%d", tokenID), &out); err != nil {
		return nil, fmt.Errorf("token metadata: %w", err)
	}
	return &out, nil
}

// MintFee implements Client.
func (g *Gateway) MintFee(ctx context.Context) (string, error) {
	var out struct {
		FeeWei string `json:"fee_wei"`
	}
	if err := g.get(ctx, "/v1/mint-fee", &out); err != nil {
		return "", fmt.Errorf("mint fee: %w", err)
	}
	return out.FeeWei, nil
}

func (g *Gateway) post(ctx context.Context, path string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return g.do(req, out)
}

func (g *Gateway) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	return g.do(req, out)
}

func (g *Gateway) do(req *http.Request, out interface{}) error {
	resp, err := g.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var ge gatewayError
		if json.Unmarshal(raw, &ge) == nil && ge.Reason != "" {
			return fmt.Errorf("gateway %d: %s", resp.StatusCode, ge.Reason)
		}
		return fmt.Errorf("gateway %d: %s", resp.StatusCode, string(raw))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
