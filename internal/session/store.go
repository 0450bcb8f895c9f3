// Package session keeps one listing view per browser session. A view lives
// until its session is idle for the configured TTL or is ended explicitly,
// which is the server side equivalent of the page being unmounted.
package session

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/jwalitptl/clinic-dashboard/internal/listing"
	"github.com/jwalitptl/clinic-dashboard/pkg/metrics"
)

const (
	ContextViewKey    = "listing_view"
	ContextSessionKey = "session_id"
)

// Factory builds the view for a new session.
type Factory func() *listing.View

type Store struct {
	cache   *cache.Cache
	newView Factory
	metrics *metrics.Metrics
}

func NewStore(ttl time.Duration, newView Factory, m *metrics.Metrics) *Store {
	if m == nil {
		m = metrics.Nop()
	}
	cleanup := ttl / 2
	if cleanup < time.Second {
		cleanup = time.Second
	}
	s := &Store{
		cache:   cache.New(ttl, cleanup),
		newView: newView,
		metrics: m,
	}
	s.cache.OnEvicted(func(string, interface{}) {
		s.metrics.ActiveViews.Dec()
	})
	return s
}

// Acquire returns the view for id, creating a fresh session when id is
// empty or unknown. The returned id is the one the caller must hand back.
func (s *Store) Acquire(id string) (string, *listing.View) {
	if id != "" {
		if v, ok := s.Get(id); ok {
			return id, v
		}
	}

	id = uuid.New().String()
	v := s.newView()
	if err := s.cache.Add(id, v, cache.DefaultExpiration); err != nil {
		// uuid collision; take whatever is stored
		if existing, ok := s.Get(id); ok {
			return id, existing
		}
	}
	s.metrics.ActiveViews.Inc()
	return id, v
}

// Get returns the view for id and extends its lifetime.
func (s *Store) Get(id string) (*listing.View, bool) {
	item, ok := s.cache.Get(id)
	if !ok {
		return nil, false
	}
	v := item.(*listing.View)
	if !s.touch(id, v) {
		return nil, false
	}
	return v, true
}

// touch refreshes the expiry of a live entry. It fails when the janitor
// evicted the entry since it was read, so the view is not resurrected
// without being counted.
func (s *Store) touch(id string, v *listing.View) bool {
	return s.cache.Replace(id, v, cache.DefaultExpiration) == nil
}

// End drops the session immediately.
func (s *Store) End(id string) {
	s.cache.Delete(id)
}

func (s *Store) Len() int {
	return s.cache.ItemCount()
}

type CookieConfig struct {
	Name   string
	Path   string
	MaxAge time.Duration
	Secure bool
}

// Middleware attaches the session's view to the request, issuing a cookie
// for new sessions.
func (s *Store) Middleware(cfg CookieConfig) gin.HandlerFunc {
	if cfg.Path == "" {
		cfg.Path = "/"
	}
	return func(c *gin.Context) {
		existing, _ := c.Cookie(cfg.Name)
		id, view := s.Acquire(existing)
		if id != existing {
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(cfg.Name, id, int(cfg.MaxAge.Seconds()), cfg.Path, "", cfg.Secure, true)
		}
		c.Set(ContextSessionKey, id)
		c.Set(ContextViewKey, view)
		c.Next()
	}
}

// ViewFromContext returns the view attached by Middleware.
func ViewFromContext(c *gin.Context) (*listing.View, bool) {
	v, ok := c.Get(ContextViewKey)
	if !ok {
		return nil, false
	}
	view, ok := v.(*listing.View)
	return view, ok
}
