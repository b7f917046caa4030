package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func serveLogged(t *testing.T, path string, status int) *observer.ObservedLogs {
	t.Helper()
	gin.SetMode(gin.TestMode)

	core, logs := observer.New(zapcore.InfoLevel)
	r := gin.New()
	r.Use(GinMiddleware(zap.New(core)))
	r.GET(path, func(c *gin.Context) {
		c.Status(status)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return logs
}

func TestGinMiddlewareLogsRequest(t *testing.T) {
	logs := serveLogged(t, "/solicitudes", http.StatusOK)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.InfoLevel, entry.Level)
	fields := entry.ContextMap()
	assert.Equal(t, "/solicitudes", fields["path"])
	assert.Equal(t, int64(http.StatusOK), fields["status"])
}

func TestGinMiddlewareLevelsByStatus(t *testing.T) {
	logs := serveLogged(t, "/solicitudes", http.StatusUnprocessableEntity)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, zapcore.WarnLevel, logs.All()[0].Level)

	logs = serveLogged(t, "/solicitudes", http.StatusBadGateway)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, zapcore.ErrorLevel, logs.All()[0].Level)
}

func TestGinMiddlewareSkipsQuietPaths(t *testing.T) {
	logs := serveLogged(t, "/health", http.StatusOK)
	assert.Zero(t, logs.Len())

	logs = serveLogged(t, "/health", http.StatusInternalServerError)
	assert.Equal(t, 1, logs.Len())
}
