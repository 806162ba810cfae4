package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ContextRequestID is the gin context key for the request id.
const ContextRequestID = "request_id"

// RequestIDHeader is the response header carrying the request id.
const RequestIDHeader = "X-Request-ID"

// RequestID assigns a request id to every request, honoring one supplied by
// the caller, and echoes it on the response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ContextRequestID, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}
