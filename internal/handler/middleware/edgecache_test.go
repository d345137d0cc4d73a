//go:build unit

package middleware_test

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"storefront-api/internal/handler/middleware"
	"storefront-api/internal/infra/edgecache"
	"storefront-api/internal/pkg/clock"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cacheTestEnv struct {
	router *gin.Engine
	clk    *clock.MockClock
	calls  *atomic.Int64
	fail   *atomic.Bool
}

func newCacheTestEnv(t *testing.T, ttl time.Duration) *cacheTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	clk := clock.NewMockClock(time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC))
	store := edgecache.NewMemoryStore(clk)
	logger := slog.New(slog.DiscardHandler)

	var calls atomic.Int64
	var fail atomic.Bool

	handler := func(c *gin.Context) {
		n := calls.Add(1)
		if fail.Load() {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "calls": n})
	}

	router := gin.New()
	cached := middleware.EdgeCache(store, ttl, logger)
	router.GET("/api/product/list", cached, handler)
	router.POST("/api/product/single", cached, handler)

	return &cacheTestEnv{router: router, clk: clk, calls: &calls, fail: &fail}
}

func (e *cacheTestEnv) do(method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	e.router.ServeHTTP(w, req)
	return w
}

func TestEdgeCache_SecondGetIsServedFromCache(t *testing.T) {
	env := newCacheTestEnv(t, time.Minute)

	first := env.do(http.MethodGet, "/api/product/list")
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "MISS", first.Header().Get("X-Edge-Cache"))
	assert.Equal(t, "public, max-age=60", first.Header().Get("Cache-Control"))
	assert.Equal(t, "public, max-age=60", first.Header().Get("CDN-Cache-Control"))

	second := env.do(http.MethodGet, "/api/product/list")
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "HIT", second.Header().Get("X-Edge-Cache"))
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, int64(1), env.calls.Load())
}

func TestEdgeCache_ExpiredEntryRecomputes(t *testing.T) {
	env := newCacheTestEnv(t, time.Minute)

	env.do(http.MethodGet, "/api/product/list")
	env.clk.Advance(61 * time.Second)

	w := env.do(http.MethodGet, "/api/product/list")
	assert.Equal(t, "MISS", w.Header().Get("X-Edge-Cache"))
	assert.Equal(t, int64(2), env.calls.Load())
}

func TestEdgeCache_DistinctURLsAreDistinctEntries(t *testing.T) {
	env := newCacheTestEnv(t, time.Minute)

	env.do(http.MethodGet, "/api/product/list")
	env.do(http.MethodGet, "/api/product/list?category=Men")

	assert.Equal(t, int64(2), env.calls.Load())

	env.do(http.MethodGet, "/api/product/list?category=Men")
	assert.Equal(t, int64(2), env.calls.Load())
}

func TestEdgeCache_PostBypassesCache(t *testing.T) {
	env := newCacheTestEnv(t, time.Minute)

	first := env.do(http.MethodPost, "/api/product/single")
	assert.Empty(t, first.Header().Get("X-Edge-Cache"))
	assert.Empty(t, first.Header().Get("Cache-Control"))

	env.do(http.MethodPost, "/api/product/single")
	assert.Equal(t, int64(2), env.calls.Load())
}

func TestEdgeCache_ErrorResponsesAreNeverCached(t *testing.T) {
	env := newCacheTestEnv(t, time.Minute)
	env.fail.Store(true)

	first := env.do(http.MethodGet, "/api/product/list")
	require.Equal(t, http.StatusInternalServerError, first.Code)
	assert.Empty(t, first.Header().Get("Cache-Control"))

	// recovery is visible on the very next request
	env.fail.Store(false)
	second := env.do(http.MethodGet, "/api/product/list")
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "MISS", second.Header().Get("X-Edge-Cache"))
	assert.Equal(t, int64(2), env.calls.Load())

	third := env.do(http.MethodGet, "/api/product/list")
	assert.Equal(t, "HIT", third.Header().Get("X-Edge-Cache"))
	assert.Equal(t, int64(2), env.calls.Load())
}
