package requestid

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func performRequest(t *testing.T, header string) (*httptest.ResponseRecorder, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var seen string
	r := gin.New()
	r.Use(Middleware())
	r.GET("/ping", func(c *gin.Context) {
		seen = Value(c)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	if header != "" {
		req.Header.Set(Header, header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w, seen
}

func TestMiddlewareMintsUUID(t *testing.T) {
	w, seen := performRequest(t, "")

	echoed := w.Header().Get(Header)
	require.NotEmpty(t, echoed)
	assert.Equal(t, echoed, seen)

	_, err := uuid.Parse(echoed)
	assert.NoError(t, err)
}

func TestMiddlewareReusesInboundID(t *testing.T) {
	w, seen := performRequest(t, "front-desk-42")

	assert.Equal(t, "front-desk-42", w.Header().Get(Header))
	assert.Equal(t, "front-desk-42", seen)
}

func TestMiddlewareReplacesOversizedID(t *testing.T) {
	oversized := strings.Repeat("x", maxInboundLen+1)
	w, _ := performRequest(t, oversized)

	echoed := w.Header().Get(Header)
	assert.NotEqual(t, oversized, echoed)
	_, err := uuid.Parse(echoed)
	assert.NoError(t, err)
}

func TestValueOutsideMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Empty(t, Value(c))
}
