// Package requestid tags every request with an id that the request logger
// picks up, so log lines for one call can be correlated.
package requestid

import (
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Header is the HTTP header carrying the request id. A caller-supplied value
// is trusted as-is; one is minted when the header is absent.
const Header = "X-Request-ID"

const contextKey = "request_id"

// Middleware stores the request id on the gin context and echoes it back on
// the response.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(Header)
		if id == "" {
			id = newID()
		}

		c.Set(contextKey, id)
		c.Writer.Header().Set(Header, id)

		c.Next()
	}
}

// Value returns the request id stored on the context, or "" when the
// middleware did not run.
func Value(c *gin.Context) string {
	id, _ := c.Value(contextKey).(string)
	return id
}

func newID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		// Entropy exhaustion is effectively unreachable; a timestamp id
		// keeps the request traceable anyway.
		return "t-" + strconv.FormatInt(time.Now().UnixNano(), 36)
	}
	return hex.EncodeToString(buf)
}
