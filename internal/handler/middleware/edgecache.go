package middleware

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"storefront-api/internal/infra/edgecache"

	"github.com/gin-gonic/gin"
)

// EdgeCache serves cached copies of successful GET responses, keyed by method
// and full request URL. Anything other than GET bypasses the cache entirely,
// and only 200 responses are ever stored. A failing cache backend degrades to
// computing fresh; it never fails the request.
func EdgeCache(store edgecache.Store, ttl time.Duration, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		key := c.Request.Method + " " + c.Request.URL.String()
		ctx := c.Request.Context()

		entry, err := store.Get(ctx, key)
		if err == nil {
			setCacheHeaders(c.Writer.Header(), ttl)
			c.Header("X-Edge-Cache", "HIT")
			c.Data(http.StatusOK, entry.ContentType, entry.Body)
			c.Abort()
			return
		}
		if err != edgecache.ErrCacheMiss {
			logger.Warn("edge cache lookup failed, computing fresh", "key", key, "error", err)
		}

		w := &cachingWriter{ResponseWriter: c.Writer, ttl: ttl}
		c.Writer = w
		c.Header("X-Edge-Cache", "MISS")
		c.Next()

		if w.Status() != http.StatusOK {
			return
		}
		entry = &edgecache.Entry{
			Body:        w.body.Bytes(),
			ContentType: w.Header().Get("Content-Type"),
			StoredAt:    time.Now(),
			TTLSeconds:  int(ttl.Seconds()),
		}
		if err := store.Set(ctx, key, entry, ttl); err != nil {
			logger.Warn("edge cache store failed", "key", key, "error", err)
		}
	}
}

// cachingWriter captures the response body and stamps cache-control headers
// onto 200 responses just before the status line goes out.
type cachingWriter struct {
	gin.ResponseWriter
	ttl  time.Duration
	body bytes.Buffer
}

func (w *cachingWriter) WriteHeader(code int) {
	if code == http.StatusOK {
		setCacheHeaders(w.Header(), w.ttl)
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *cachingWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *cachingWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

func setCacheHeaders(h http.Header, ttl time.Duration) {
	v := fmt.Sprintf("public, max-age=%d", int(ttl.Seconds()))
	h.Set("Cache-Control", v)
	h.Set("CDN-Cache-Control", v)
}
