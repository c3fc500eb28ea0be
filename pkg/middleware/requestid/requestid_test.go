package requestid

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter() (*gin.Engine, *string) {
	gin.SetMode(gin.TestMode)
	var seen string
	r := gin.New()
	r.Use(Middleware())
	r.GET("/ping", func(c *gin.Context) {
		seen = Value(c)
		c.Status(http.StatusOK)
	})
	return r, &seen
}

func TestMiddlewareMintsID(t *testing.T) {
	r, seen := newRouter()

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

	id := rec.Header().Get(Header)
	require.NotEmpty(t, id)
	assert.Equal(t, id, *seen)
}

func TestMiddlewareKeepsCallerID(t *testing.T) {
	r, seen := newRouter()

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(Header, "caller-supplied")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, "caller-supplied", rec.Header().Get(Header))
	assert.Equal(t, "caller-supplied", *seen)
}
