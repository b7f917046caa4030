// Package requestid tags every request with a correlation id so log lines
// and error responses can be tied back to one call.
package requestid

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Header is the wire header carrying the id, inbound and outbound.
const Header = "X-Request-ID"

const contextKey = "request_id"

// maxInboundLen guards against clients stuffing arbitrary payloads into the
// header. Anything longer is replaced with a fresh id.
const maxInboundLen = 64

// Middleware reuses a caller-supplied id when present and well sized,
// otherwise mints a UUID. The id is echoed back on the response.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader(Header)
		if reqID == "" || len(reqID) > maxInboundLen {
			reqID = uuid.NewString()
		}

		c.Set(contextKey, reqID)
		c.Writer.Header().Set(Header, reqID)

		c.Next()
	}
}

// Value returns the request id stored in the Gin context, or "" outside the
// middleware.
func Value(c *gin.Context) string {
	if v, exists := c.Get(contextKey); exists {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}
