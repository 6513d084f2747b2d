package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prooftalent/assessment-backend/internal/response"
	"github.com/prooftalent/assessment-backend/internal/service"
)

// RequireSessionToken validates the bearer token issued at session creation
// and pins it to the session named in the URL: a token for one session
// cannot touch another, even with a valid signature.
func RequireSessionToken(tokens *service.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := extractToken(c)
		if tokenStr == "" {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		claims, err := tokens.Validate(tokenStr)
		if err != nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
			return
		}

		if id := c.Param("id"); id != "" && claims.SessionID != id {
			response.AbortFail(c, http.StatusForbidden, response.ErrTokenInvalid)
			return
		}

		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
	}
	// WebSocket upgrades cannot set headers from the browser.
	return c.Query("token")
}
