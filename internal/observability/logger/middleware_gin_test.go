package logger

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestGinMiddlewareLogsWithCorrelation(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logs := observe(t)

	r := gin.New()
	r.Use(GinMiddleware(MiddlewareConfig{
		ErrorClassifier: func(error) (string, string) { return "forbidden", "forbidden_address" },
	}))
	r.POST("/fraud-review/kount/ens", func(c *gin.Context) {
		_ = c.Error(errors.New("denied"))
		c.Status(http.StatusForbidden)
	})

	req := httptest.NewRequest(http.MethodPost, "/fraud-review/kount/ens", nil)
	req.Header.Set("X-Request-Id", "req-1")
	req.Header.Set("X-Correlation-Id", "01ARZ3NDEKTSV4RRFFQ69G5FAV")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "req-1", w.Header().Get("X-Request-Id"))
	entries := logs.FilterMessage("http_request").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	fields := entries[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "01ARZ3NDEKTSV4RRFFQ69G5FAV", fields["correlation_id"])
	assert.Equal(t, "forbidden_address", fields["error_code"])
}

func TestAccessLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, accessLevel("/health", http.StatusOK))
	assert.Equal(t, zapcore.InfoLevel, accessLevel("/fraud-review/kount/ens", http.StatusOK))
	assert.Equal(t, zapcore.WarnLevel, accessLevel("/fraud-review/kount/ens", http.StatusConflict))
	assert.Equal(t, zapcore.ErrorLevel, accessLevel("/fraud-review/kount/ens", http.StatusBadGateway))
}
