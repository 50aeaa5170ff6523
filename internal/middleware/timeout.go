package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
)

// Timeout applies a per-request deadline to the request context. Repository
// calls inherit it through ctx, so a slow store aborts the whole operation
// instead of hanging the client. Handlers map context.DeadlineExceeded to a
// distinct 504 response rather than the generic backend error.
func Timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
