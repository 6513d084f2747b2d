package response

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ContextKeyRequestID is the Gin context key the envelope metadata and the
// request logger read the request ID from.
const ContextKeyRequestID = "request_id"

// RequestIDMiddleware assigns each request an ID that is echoed back in the
// X-Request-ID header and in every response envelope's metadata, so a client
// report can be matched to the server logs for that submission or mint.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Honor a caller-supplied ID so retries keep a stable trail.
		reqID := c.GetHeader("X-Request-ID")
		if reqID == "" {
			reqID = uuid.New().String()
		}
		c.Set(ContextKeyRequestID, reqID)
		c.Header("X-Request-ID", reqID)
		c.Next()
	}
}
