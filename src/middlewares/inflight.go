package middlewares

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
)

// OperationIDHeader names the client-chosen id for a mutation. Reusing an
// id while its first request is still running gets a 409 instead of a
// duplicate document.
const OperationIDHeader = "X-Operation-Id"

// InFlightGuard rejects concurrent duplicates of the same operation. It
// guards against double-submits in flight, not against replays after the
// first request finished.
func InFlightGuard() gin.HandlerFunc {
	var inflight sync.Map

	return func(c *gin.Context) {
		opID := c.GetHeader(OperationIDHeader)
		if opID == "" {
			c.Next()
			return
		}

		if _, loaded := inflight.LoadOrStore(opID, struct{}{}); loaded {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{
				"error":     "operation " + opID + " is already in flight",
				"retryable": true,
			})
			return
		}
		defer inflight.Delete(opID)

		c.Next()
	}
}
