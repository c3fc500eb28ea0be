package response

import (
	"github.com/gin-gonic/gin"

	appErrors "github.com/acadhub/academic-records-api/pkg/errors"
)

// The legacy API this service replaces answered some routes with an
// {"error": ...} body and others with {"message": ...}. Clients depend on
// both shapes, so the helpers here keep the split per route instead of a
// single envelope.

// JSON sends a success payload as-is.
func JSON(c *gin.Context, status int, payload interface{}) {
	c.JSON(status, payload)
}

// Message sends a success acknowledgment with only a message field.
func Message(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"message": message})
}

// Error renders the error under the "error" key.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	c.JSON(appErr.Status, gin.H{"error": appErr.Message})
}

// MessageError renders the error under the "message" key, matching the
// routes the legacy service answered with message-only bodies.
func MessageError(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	c.JSON(appErr.Status, gin.H{"message": appErr.Message})
}
