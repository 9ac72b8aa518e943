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

func init() {
	gin.SetMode(gin.TestMode)
}

// serveLogged runs one request through GinMiddleware and returns the
// recorded log entries.
func serveLogged(t *testing.T, level zapcore.Level, status int, target string, pre gin.HandlerFunc) []observer.LoggedEntry {
	t.Helper()

	core, recorded := observer.New(level)
	router := gin.New()
	if pre != nil {
		router.Use(pre)
	}
	router.Use(GinMiddleware(zap.New(core)))
	router.GET("/api/v1/invoices", func(c *gin.Context) {
		c.JSON(status, gin.H{"ok": status < 400})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", target, nil)
	req.Header.Set("User-Agent", "packops-test/1.0")
	router.ServeHTTP(w, req)
	assert.Equal(t, status, w.Code)

	return recorded.All()
}

func findRequestLog(t *testing.T, logs []observer.LoggedEntry) *observer.LoggedEntry {
	t.Helper()
	for i := range logs {
		if logs[i].Message == "HTTP Request" {
			return &logs[i]
		}
	}
	t.Fatal("no request log entry recorded")
	return nil
}

func TestGinMiddleware_LevelTracksStatus(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   zapcore.Level
	}{
		{name: "success logs at info", status: http.StatusOK, want: zapcore.InfoLevel},
		{name: "client error logs at warn", status: http.StatusNotFound, want: zapcore.WarnLevel},
		{name: "server error logs at error", status: http.StatusInternalServerError, want: zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logs := serveLogged(t, zapcore.DebugLevel, tt.status, "/api/v1/invoices", nil)
			entry := findRequestLog(t, logs)
			assert.Equal(t, tt.want, entry.Level)
		})
	}
}

func TestGinMiddleware_CarriesRequestFields(t *testing.T) {
	logs := serveLogged(t, zapcore.InfoLevel, http.StatusOK, "/api/v1/invoices?status=sent&page=2", func(c *gin.Context) {
		c.Set("request_id", "req-abc-1")
		c.Next()
	})
	entry := findRequestLog(t, logs)

	fields := make(map[string]zapcore.Field)
	for _, f := range entry.Context {
		fields[f.Key] = f
	}

	assert.Equal(t, "req-abc-1", fields["request_id"].String)
	assert.Equal(t, "GET", fields["method"].String)
	assert.Equal(t, "/api/v1/invoices", fields["path"].String)
	assert.Contains(t, fields, "status")
	assert.Contains(t, fields, "latency")
	assert.Contains(t, fields, "client_ip")
	assert.Contains(t, fields, "user_agent")
	require.Contains(t, fields, "query")
	assert.Contains(t, fields["query"].String, "status=sent")
}

func TestGinMiddleware_OmitsEmptyQuery(t *testing.T) {
	logs := serveLogged(t, zapcore.InfoLevel, http.StatusOK, "/api/v1/invoices", nil)
	entry := findRequestLog(t, logs)

	for _, f := range entry.Context {
		assert.NotEqual(t, "query", f.Key)
	}
}

func TestRecovery(t *testing.T) {
	core, recorded := observer.New(zapcore.ErrorLevel)

	router := gin.New()
	router.Use(Recovery(zap.New(core)))
	router.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/panic", nil)
	assert.NotPanics(t, func() {
		router.ServeHTTP(w, req)
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	logs := recorded.All()
	require.NotEmpty(t, logs)
	assert.Equal(t, "Panic recovered", logs[0].Message)
}

func TestGetGinLogger(t *testing.T) {
	t.Run("returns the request-scoped logger", func(t *testing.T) {
		core, _ := observer.New(zapcore.InfoLevel)

		var got *zap.Logger
		router := gin.New()
		router.Use(GinMiddleware(zap.New(core)))
		router.GET("/api/v1/actions", func(c *gin.Context) {
			got = GetGinLogger(c)
			c.Status(http.StatusOK)
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/actions", nil))

		assert.NotNil(t, got)
	})

	t.Run("falls back to a no-op logger", func(t *testing.T) {
		var got *zap.Logger
		router := gin.New()
		router.GET("/api/v1/actions", func(c *gin.Context) {
			got = GetGinLogger(c)
			c.Status(http.StatusOK)
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/actions", nil))

		require.NotNil(t, got)
		assert.NotPanics(t, func() {
			got.Info("still usable")
		})
	})
}
