package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func doRequest(router *gin.Engine, method, path, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if remoteAddr != "" {
		req.RemoteAddr = remoteAddr
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRateLimiter_Allow(t *testing.T) {
	t.Run("budget per window", func(t *testing.T) {
		limiter := NewRateLimiter(3, time.Minute)

		for i := 0; i < 3; i++ {
			assert.True(t, limiter.Allow("10.0.0.1"), "request %d", i+1)
		}
		assert.False(t, limiter.Allow("10.0.0.1"))
	})

	t.Run("keys are independent", func(t *testing.T) {
		limiter := NewRateLimiter(2, time.Minute)

		limiter.Allow("trader-1")
		limiter.Allow("trader-1")
		assert.False(t, limiter.Allow("trader-1"))

		assert.True(t, limiter.Allow("trader-2"))
	})

	t.Run("window reset restores budget", func(t *testing.T) {
		limiter := NewRateLimiter(2, 50*time.Millisecond)

		limiter.Allow("10.0.0.2")
		limiter.Allow("10.0.0.2")
		assert.False(t, limiter.Allow("10.0.0.2"))

		time.Sleep(60 * time.Millisecond)

		assert.True(t, limiter.Allow("10.0.0.2"))
	})

	t.Run("concurrent callers never overdraw", func(t *testing.T) {
		limiter := NewRateLimiter(100, time.Minute)

		var wg sync.WaitGroup
		var mu sync.Mutex
		allowed := 0
		for i := 0; i < 150; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if limiter.Allow("shared") {
					mu.Lock()
					allowed++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 100, allowed)
	})
}

func TestRateLimiter_Remaining(t *testing.T) {
	limiter := NewRateLimiter(5, time.Minute)

	assert.Equal(t, 5, limiter.Remaining("fresh"))

	limiter.Allow("fresh")
	limiter.Allow("fresh")

	assert.Equal(t, 3, limiter.Remaining("fresh"))
}

func TestRateLimit_Middleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newRouter := func(limiter *RateLimiter, setUser string) *gin.Engine {
		router := gin.New()
		if setUser != "" {
			router.Use(func(c *gin.Context) { c.Set(JWTUserIDKey, setUser) })
		}
		router.Use(RateLimit(limiter))
		router.GET("/assets", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
		return router
	}

	t.Run("rejects over budget with envelope", func(t *testing.T) {
		router := newRouter(NewRateLimiter(2, time.Minute), "")

		for i := 0; i < 2; i++ {
			assert.Equal(t, http.StatusOK, doRequest(router, "GET", "/assets", "").Code)
		}

		w := doRequest(router, "GET", "/assets", "")
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Contains(t, w.Body.String(), "RATE_LIMIT_EXCEEDED")
	})

	t.Run("exposes budget headers", func(t *testing.T) {
		router := newRouter(NewRateLimiter(5, time.Minute), "")

		w := doRequest(router, "GET", "/assets", "")

		assert.Equal(t, "5", w.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "4", w.Header().Get("X-RateLimit-Remaining"))
	})

	t.Run("authenticated users get their own budget", func(t *testing.T) {
		limiter := NewRateLimiter(1, time.Minute)

		assert.Equal(t, http.StatusOK, doRequest(newRouter(limiter, "am-analyst"), "GET", "/assets", "").Code)
		assert.Equal(t, http.StatusTooManyRequests, doRequest(newRouter(limiter, "am-analyst"), "GET", "/assets", "").Code)

		// Same IP, different user
		assert.Equal(t, http.StatusOK, doRequest(newRouter(limiter, "trader"), "GET", "/assets", "").Code)
	})
}

func TestRateLimitByKey(t *testing.T) {
	gin.SetMode(gin.TestMode)

	limiter := NewRateLimiter(1, time.Minute)
	router := gin.New()
	router.Use(RateLimitByKey(limiter, func(c *gin.Context) string {
		return c.GetHeader("X-Api-Key")
	}))
	router.POST("/documents/1/extract", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	do := func(apiKey string) int {
		req := httptest.NewRequest("POST", "/documents/1/extract", nil)
		req.Header.Set("X-Api-Key", apiKey)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, do("key-a"))
	assert.Equal(t, http.StatusTooManyRequests, do("key-a"))
	assert.Equal(t, http.StatusOK, do("key-b"))
}

func TestAuthRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newRouter := func(limiter *RateLimiter) *gin.Engine {
		router := gin.New()
		router.Use(AuthRateLimit(limiter))
		router.POST("/login", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"success": true}) })
		return router
	}

	t.Run("blocks with auth specific error and retry hint", func(t *testing.T) {
		router := newRouter(NewRateLimiter(2, time.Minute))

		for i := 0; i < 2; i++ {
			assert.Equal(t, http.StatusOK, doRequest(router, "POST", "/login", "192.168.1.100:12345").Code)
		}

		w := doRequest(router, "POST", "/login", "192.168.1.100:12345")
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Contains(t, w.Body.String(), "AUTH_RATE_LIMIT_EXCEEDED")
		assert.Contains(t, w.Body.String(), "Too many authentication attempts")
		assert.Equal(t, "60", w.Header().Get("Retry-After"))
	})

	t.Run("budget headers on success", func(t *testing.T) {
		router := newRouter(NewRateLimiter(5, time.Minute))

		w := doRequest(router, "POST", "/login", "192.168.1.100:12345")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "5", w.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "4", w.Header().Get("X-RateLimit-Remaining"))
	})

	t.Run("budgets are per IP", func(t *testing.T) {
		router := newRouter(NewRateLimiter(1, time.Minute))

		assert.Equal(t, http.StatusOK, doRequest(router, "POST", "/login", "192.168.1.1:1000").Code)
		assert.Equal(t, http.StatusTooManyRequests, doRequest(router, "POST", "/login", "192.168.1.1:1000").Code)
		assert.Equal(t, http.StatusOK, doRequest(router, "POST", "/login", "192.168.1.2:1000").Code)
	})

	t.Run("auth prefix isolates a shared limiter from the global key space", func(t *testing.T) {
		limiter := NewRateLimiter(1, time.Minute)

		router := gin.New()
		auth := router.Group("/auth")
		auth.Use(AuthRateLimit(limiter))
		auth.POST("/login", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"success": true}) })
		router.GET("/assets", RateLimit(limiter), func(c *gin.Context) { c.String(http.StatusOK, "ok") })

		addr := "192.168.1.100:12345"
		assert.Equal(t, http.StatusOK, doRequest(router, "POST", "/auth/login", addr).Code)
		assert.Equal(t, http.StatusTooManyRequests, doRequest(router, "POST", "/auth/login", addr).Code)

		// The plain key still has budget on the same limiter
		assert.Equal(t, http.StatusOK, doRequest(router, "GET", "/assets", addr).Code)
	})
}

func TestRateLimiter_SweepDropsIdleKeys(t *testing.T) {
	limiter := NewRateLimiter(1, 20*time.Millisecond)

	for i := 0; i < 5; i++ {
		limiter.Allow(fmt.Sprintf("10.0.0.%d", i))
	}

	// Two windows idle plus a sweep tick
	assert.Eventually(t, func() bool {
		limiter.mu.Lock()
		defer limiter.mu.Unlock()
		return len(limiter.buckets) == 0
	}, time.Second, 10*time.Millisecond)
}
