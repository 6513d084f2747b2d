package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/prooftalent/assessment-backend/internal/config"
)

// ErrTokenInvalid covers every token rejection: bad signature, wrong signing
// method, expired, malformed claims.
var ErrTokenInvalid = errors.New("invalid session token")

// SessionClaims binds a token to exactly one session. The session ID itself
// is a crypto-random UUID, so the token adds authentication on top of an
// already unguessable identifier.
type SessionClaims struct {
	jwt.RegisteredClaims
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`
}

// TokenService issues and validates HS256 session tokens. Token lifetime
// tracks the session TTL — an expired session's token is useless by
// construction.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a TokenService from configuration.
func NewTokenService(cfg *config.Config) *TokenService {
	return &TokenService{
		secret: []byte(cfg.TokenSecret),
		ttl:    cfg.SessionTTL,
	}
}

// Issue signs a token for the given session.
func (s *TokenService) Issue(sessionID uuid.UUID, userID string) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		SessionID: sessionID.String(),
		UserID:    userID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validate parses and verifies a token, returning its claims.
func (s *TokenService) Validate(tokenStr string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrTokenInvalid
	}
	if claims.SessionID == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
