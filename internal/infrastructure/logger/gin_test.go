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

func loggedRouter(t *testing.T, register func(*gin.Engine)) (*gin.Engine, *observer.ObservedLogs) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	core, recorded := observer.New(zapcore.InfoLevel)
	router := gin.New()
	router.Use(GinMiddleware(zap.New(core)))
	register(router)
	return router, recorded
}

func requestEntry(t *testing.T, recorded *observer.ObservedLogs) observer.LoggedEntry {
	t.Helper()
	entries := recorded.FilterMessage("HTTP Request").All()
	require.Len(t, entries, 1)
	return entries[0]
}

func TestGinMiddleware_LogsRequest(t *testing.T) {
	router, recorded := loggedRouter(t, func(r *gin.Engine) {
		r.POST("/api/v1/trades", func(c *gin.Context) {
			c.JSON(http.StatusCreated, gin.H{"id": 1})
		})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/trades", nil)
	req.Header.Set("User-Agent", "npl-cli/1.0")
	router.ServeHTTP(w, req)

	entry := requestEntry(t, recorded)
	assert.Equal(t, zapcore.InfoLevel, entry.Level)

	fields := entry.ContextMap()
	assert.Equal(t, "POST", fields["method"])
	assert.Equal(t, "/api/v1/trades", fields["path"])
	assert.Equal(t, int64(http.StatusCreated), fields["status"])
	assert.Equal(t, "npl-cli/1.0", fields["user_agent"])
	assert.Contains(t, fields, "latency")
	assert.Contains(t, fields, "client_ip")
}

func TestGinMiddleware_RequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, recorded := observer.New(zapcore.InfoLevel)

	router := gin.New()
	// Stands in for the RequestID middleware upstream
	router.Use(func(c *gin.Context) {
		c.Set("request_id", "req-123")
		c.Next()
	})
	router.Use(GinMiddleware(zap.New(core)))
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/ping", nil)
	router.ServeHTTP(w, req)

	entry := requestEntry(t, recorded)
	assert.Equal(t, "req-123", entry.ContextMap()["request_id"])
}

func TestGinMiddleware_StatusLevels(t *testing.T) {
	router, recorded := loggedRouter(t, func(r *gin.Engine) {
		r.GET("/bad", func(c *gin.Context) { c.Status(http.StatusBadRequest) })
		r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusBadGateway) })
	})

	for path, level := range map[string]zapcore.Level{
		"/bad":  zapcore.WarnLevel,
		"/boom": zapcore.ErrorLevel,
	} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", path, nil)
		router.ServeHTTP(w, req)

		entries := recorded.TakeAll()
		require.Len(t, entries, 1, path)
		assert.Equal(t, level, entries[0].Level, path)
	}
}

func TestGinMiddleware_Query(t *testing.T) {
	router, recorded := loggedRouter(t, func(r *gin.Engine) {
		r.GET("/api/v1/assets", func(c *gin.Context) { c.Status(http.StatusOK) })
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/assets?status=ACTIVE&page=2", nil)
	router.ServeHTTP(w, req)

	entry := requestEntry(t, recorded)
	assert.Contains(t, entry.ContextMap()["query"], "status=ACTIVE")
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, recorded := observer.New(zapcore.ErrorLevel)

	router := gin.New()
	router.Use(Recovery(zap.New(core)))
	router.GET("/panic", func(c *gin.Context) {
		panic("boarding blew up")
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/panic", nil)
	assert.NotPanics(t, func() { router.ServeHTTP(w, req) })

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	entries := recorded.FilterMessage("Panic recovered").All()
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].ContextMap(), "stacktrace")
}

func TestGetGinLogger(t *testing.T) {
	var fromHandler *zap.Logger

	router, _ := loggedRouter(t, func(r *gin.Engine) {
		r.GET("/ok", func(c *gin.Context) {
			fromHandler = GetGinLogger(c)
			c.Status(http.StatusOK)
		})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/ok", nil)
	router.ServeHTTP(w, req)

	require.NotNil(t, fromHandler)
}

func TestGetGinLogger_WithoutMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var fromHandler *zap.Logger
	router := gin.New()
	router.GET("/ok", func(c *gin.Context) {
		fromHandler = GetGinLogger(c)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/ok", nil)
	router.ServeHTTP(w, req)

	// Nop, never nil
	require.NotNil(t, fromHandler)
	assert.NotPanics(t, func() { fromHandler.Info("safe") })
}
