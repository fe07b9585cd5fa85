package middleware

import (
	"context"

	"github.com/contactbook/backend/internal/constants"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestID propagates an incoming X-Request-ID header or assigns a fresh
// one, echoes it on the response and stores it on the request context for
// log correlation in downstream layers.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(constants.HeaderRequestID)
		if id == "" {
			id = uuid.New().String()
		}

		c.Set(constants.HeaderRequestID, id)
		c.Writer.Header().Set(constants.HeaderRequestID, id)
		c.Request = c.Request.WithContext(
			context.WithValue(c.Request.Context(), constants.CtxKeyRequestID, id))
		c.Next()
	}
}
