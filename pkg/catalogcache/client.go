// Package catalogcache is the client-side half of the catalog freshness
// protocol. It renders stale-but-present data instantly on warm starts, then
// reconciles against the server's cheap fingerprint and refetches the full
// payload only on mismatch. Staleness is always preferred over emptiness:
// network failures keep the cached payload on screen.
package catalogcache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// Meta is the collection fingerprint: record count plus latest modification
// timestamp. Equality is field-wise and is a necessary but not sufficient
// condition for payload equality (an accepted approximation).
type Meta struct {
	Count           int64      `json:"count"`
	LatestUpdatedAt *time.Time `json:"latestUpdatedAt"`
}

func (m Meta) Equal(other Meta) bool {
	if m.Count != other.Count {
		return false
	}
	if (m.LatestUpdatedAt == nil) != (other.LatestUpdatedAt == nil) {
		return false
	}
	if m.LatestUpdatedAt == nil {
		return true
	}
	return m.LatestUpdatedAt.Equal(*other.LatestUpdatedAt)
}

// Collection binds a storage key to its server endpoints and the field of the
// list response that carries the payload array.
type Collection struct {
	Key          string
	MetaPath     string
	ListPath     string
	PayloadField string
}

var (
	Products = Collection{
		Key:          "products",
		MetaPath:     "/api/product/meta",
		ListPath:     "/api/product/list",
		PayloadField: "products",
	}
	Categories = Collection{
		Key:          "categories",
		MetaPath:     "/api/categories/meta",
		ListPath:     "/api/categories",
		PayloadField: "categories",
	}
)

type Config struct {
	BaseURL    string
	Store      Store
	HTTPClient *http.Client
	Logger     *slog.Logger
	// OnRefresh is invoked after a background reconciliation replaced the
	// stored payload. Optional.
	OnRefresh func(collection string, payload json.RawMessage)
}

type Client struct {
	baseURL   string
	store     Store
	http      *http.Client
	logger    *slog.Logger
	onRefresh func(string, json.RawMessage)

	mu       sync.Mutex
	fresh    map[string]bool
	inflight map[string]bool
}

func New(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:   cfg.BaseURL,
		store:     cfg.Store,
		http:      httpClient,
		logger:    logger,
		onRefresh: cfg.OnRefresh,
		fresh:     make(map[string]bool),
		inflight:  make(map[string]bool),
	}
}

// Load returns the collection payload.
//
// Cold (nothing stored): fetches fingerprint and full payload before
// returning. Warm: returns the stored payload immediately and reconciles in
// the background; a fingerprint match costs no payload transfer, a mismatch
// replaces the stored entry wholesale. force skips the short-circuit and
// always refetches — used by flows that must observe their own write.
func (c *Client) Load(ctx context.Context, col Collection, force bool) (json.RawMessage, error) {
	if force {
		entry, err := c.refetch(ctx, col)
		if err != nil {
			return nil, err
		}
		return entry.Payload, nil
	}

	entry, err := c.store.Load(col.Key)
	if err != nil {
		c.logger.Warn("catalog cache read failed, falling back to network", "collection", col.Key, "error", err)
		entry = nil
	}

	if entry == nil {
		// Cold start: first render needs the payload, no way around the fetch.
		fetched, err := c.refetch(ctx, col)
		if err != nil {
			return nil, err
		}
		return fetched.Payload, nil
	}

	if c.beginReconcile(col.Key) {
		go func() {
			defer c.endReconcile(col.Key)
			// Detached: the render this Load serves must not wait on it.
			rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
			defer cancel()
			if _, _, err := c.Reconcile(rctx, col); err != nil {
				c.logger.Warn("catalog reconciliation failed, keeping stale payload", "collection", col.Key, "error", err)
			}
		}()
	}
	return entry.Payload, nil
}

// Reconcile compares the stored fingerprint with the server's and refetches
// the payload only on mismatch. It returns the authoritative payload and
// whether a refetch happened. Fingerprint-fetch failures leave the stored
// entry untouched.
func (c *Client) Reconcile(ctx context.Context, col Collection) (json.RawMessage, bool, error) {
	entry, err := c.store.Load(col.Key)
	if err != nil || entry == nil {
		fetched, ferr := c.refetch(ctx, col)
		if ferr != nil {
			return nil, false, ferr
		}
		return fetched.Payload, true, nil
	}

	serverMeta, err := c.fetchMeta(ctx, col)
	if err != nil {
		// Stale beats empty: keep serving what we have.
		return entry.Payload, false, fmt.Errorf("fetch fingerprint: %w", err)
	}

	if entry.Meta.Equal(*serverMeta) {
		c.markFresh(col.Key)
		return entry.Payload, false, nil
	}

	fetched, err := c.refetch(ctx, col)
	if err != nil {
		// Mismatch detected but the refetch failed; the stale payload stays.
		return entry.Payload, false, err
	}
	if c.onRefresh != nil {
		c.onRefresh(col.Key, fetched.Payload)
	}
	return fetched.Payload, true, nil
}

// refetch pulls fingerprint and full payload, replaces the stored entry
// wholesale and marks the collection fresh for this session.
func (c *Client) refetch(ctx context.Context, col Collection) (*Entry, error) {
	meta, err := c.fetchMeta(ctx, col)
	if err != nil {
		return nil, err
	}
	payload, err := c.fetchList(ctx, col)
	if err != nil {
		return nil, err
	}

	entry := &Entry{Payload: payload, Meta: *meta, StoredAt: time.Now()}
	if err := c.store.Save(col.Key, entry); err != nil {
		// The fetched payload is still good for this session.
		c.logger.Warn("catalog cache write failed", "collection", col.Key, "error", err)
	}
	c.markFresh(col.Key)
	return entry, nil
}

type metaResponse struct {
	Success         bool       `json:"success"`
	Count           int64      `json:"count"`
	LatestUpdatedAt *time.Time `json:"latestUpdatedAt"`
}

func (c *Client) fetchMeta(ctx context.Context, col Collection) (*Meta, error) {
	var resp metaResponse
	if err := c.getJSON(ctx, col.MetaPath, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("meta endpoint reported failure for %s", col.Key)
	}
	return &Meta{Count: resp.Count, LatestUpdatedAt: resp.LatestUpdatedAt}, nil
}

func (c *Client) fetchList(ctx context.Context, col Collection) (json.RawMessage, error) {
	var resp map[string]json.RawMessage
	if err := c.getJSON(ctx, col.ListPath, &resp); err != nil {
		return nil, err
	}
	payload, ok := resp[col.PayloadField]
	if !ok {
		return nil, fmt.Errorf("list response missing %q field", col.PayloadField)
	}
	return payload, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: unexpected status %d", path, res.StatusCode)
	}
	return json.NewDecoder(res.Body).Decode(out)
}

// beginReconcile claims the background-reconcile slot for a collection.
// It reports false when the collection is already fresh or another
// reconcile is running, so concurrent warm Loads spawn at most one.
func (c *Client) beginReconcile(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fresh[key] || c.inflight[key] {
		return false
	}
	c.inflight[key] = true
	return true
}

func (c *Client) endReconcile(key string) {
	c.mu.Lock()
	delete(c.inflight, key)
	c.mu.Unlock()
}

func (c *Client) markFresh(key string) {
	c.mu.Lock()
	c.fresh[key] = true
	c.mu.Unlock()
}
