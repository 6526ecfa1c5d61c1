// Package middleware contains http middlewares of the service.
package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Decentr-net/yatube/internal/metrics"
)

// DefaultCacheTTL is how long a rendered listing is served without re-rendering.
const DefaultCacheTTL = 20 * time.Second

const listingPrefix = "listing:"

var log = logrus.WithField("package", "middleware")

var errNotCacheable = errors.New("response is not cacheable")

// Storage ...
// Get returns nil content when key is missing or expired.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, content []byte, ttl time.Duration) error
	DeletePrefix(ctx context.Context, prefix string) error
}

// Cache memoizes rendered listing snapshots for a fixed ttl.
// Concurrent misses may render the same snapshot more than once.
type Cache struct {
	s   Storage
	ttl time.Duration
	m   metrics.CacheRecorder
}

// NewCache creates Cache. m can be nil.
func NewCache(s Storage, ttl time.Duration, m metrics.CacheRecorder) *Cache {
	if m == nil {
		m = nopRecorder{}
	}

	return &Cache{
		s:   s,
		ttl: ttl,
		m:   m,
	}
}

// GetOrRender returns the stored snapshot for key or renders and stores a new one.
// Render errors are returned as is and nothing is stored.
func (c *Cache) GetOrRender(ctx context.Context, key string, render func(ctx context.Context) ([]byte, error)) ([]byte, error) {
	key = listingPrefix + key

	content, err := c.s.Get(ctx, key)
	if err != nil {
		log.WithError(err).WithField("key", key).Error("failed to get cached content")
	}

	if content != nil {
		c.m.CacheHit()
		return content, nil
	}

	c.m.CacheMiss()

	content, err = render(ctx)
	if err != nil {
		return nil, err
	}

	if err := c.s.Set(ctx, key, content, c.ttl); err != nil {
		log.WithError(err).WithField("key", key).Error("failed to set cached content")
	}

	return content, nil
}

// Clear evicts every snapshot regardless of its remaining ttl.
func (c *Cache) Clear(ctx context.Context) error {
	if err := c.s.DeletePrefix(ctx, listingPrefix); err != nil {
		return fmt.Errorf("failed to delete cached content: %w", err)
	}

	c.m.CacheClear()

	return nil
}

// Handler caches successful responses of a paginated listing handler by path and page number.
// Other query parameters are ignored.
func (c *Cache) Handler(handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var rec *httptest.ResponseRecorder

		content, err := c.GetOrRender(r.Context(), pageKey(r), func(context.Context) ([]byte, error) {
			rec = httptest.NewRecorder()
			handler(rec, r)

			if rec.Code != http.StatusOK {
				return nil, errNotCacheable
			}

			return rec.Body.Bytes(), nil
		})

		switch {
		case err == nil:
		case errors.Is(err, errNotCacheable):
			copyHeader(w, rec)
			w.WriteHeader(rec.Code)
			_, _ = w.Write(rec.Body.Bytes())
			return
		default:
			log.WithError(err).Error("failed to render cached content")
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		if rec != nil {
			copyHeader(w, rec)
		} else {
			w.Header().Set("Content-Type", "application/json")
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(content)
	}
}

// pageKey normalizes page the way lenient pagination does: malformed numbers mean the first page.
func pageKey(r *http.Request) string {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}

	return r.URL.Path + "?page=" + strconv.Itoa(page)
}

func copyHeader(w http.ResponseWriter, rec *httptest.ResponseRecorder) {
	for k, v := range rec.Header() {
		w.Header()[k] = v
	}
}

type nopRecorder struct{}

func (nopRecorder) CacheHit()   {}
func (nopRecorder) CacheMiss()  {}
func (nopRecorder) CacheClear() {}
