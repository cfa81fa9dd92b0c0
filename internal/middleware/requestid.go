package middleware

import (
	"blog-todo/internal/logging"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
)

const RequestIDHeader = "X-Request-ID"

// RequestID reuses a well formed incoming X-Request-ID or generates a new
// one, echoes it on the response and stores it on the request context.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if len(id) == 0 || len(id) > 64 {
			id = uuid.Must(uuid.NewV4()).String()
		}

		c.Set(string(logging.RequestIDKey), id)
		c.Header(RequestIDHeader, id)
		c.Request = c.Request.WithContext(logging.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}
