package router

import (
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/clinic-dashboard/internal/handler/appointment"
	"github.com/jwalitptl/clinic-dashboard/internal/handler/prometheus"
	"github.com/jwalitptl/clinic-dashboard/internal/middleware"
	"github.com/jwalitptl/clinic-dashboard/internal/session"
	"github.com/jwalitptl/clinic-dashboard/pkg/event"
)

type Handler interface {
	RegisterRoutes(gin.IRoutes)
}

type EventHandler interface {
	RegisterRoutesWithEvents(*gin.RouterGroup, *event.EventTrackerMiddleware)
}

type RouterConfig struct {
	Mode           string
	RateLimit      rate.Limit
	RateBurst      int
	CORSConfig     middleware.CORSConfig
	Security       middleware.SecurityConfig
	RequestTimeout time.Duration
	MetricsPath    string
	Cookie         session.CookieConfig
	MaxBodySize    int64
}

type Router struct {
	engine       *gin.Engine
	config       RouterConfig
	auth         *middleware.AuthMiddleware
	sessions     *session.Store
	metrics      *prometheus.Handler
	eventTracker *event.EventTrackerMiddleware
	healthH      Handler
	contentH     Handler
	appointmentH EventHandler
}

// NewRouter wires the engine. auth may be nil, which leaves the dashboard
// unauthenticated.
func NewRouter(
	logger *zerolog.Logger,
	templates *template.Template,
	auth *middleware.AuthMiddleware,
	sessions *session.Store,
	metrics *prometheus.Handler,
	eventTracker *event.EventTrackerMiddleware,
	healthH Handler,
	contentH Handler,
	appointmentH EventHandler,
	config RouterConfig,
) *Router {
	if config.Mode != "" {
		gin.SetMode(config.Mode)
	}
	if config.MetricsPath == "" {
		config.MetricsPath = "/metrics"
	}
	if config.MaxBodySize <= 0 {
		config.MaxBodySize = 64 << 10
	}

	engine := gin.New()
	engine.SetHTMLTemplate(templates)
	engine.HandleMethodNotAllowed = true

	r := &Router{
		engine:       engine,
		config:       config,
		auth:         auth,
		sessions:     sessions,
		metrics:      metrics,
		eventTracker: eventTracker,
		healthH:      healthH,
		contentH:     contentH,
		appointmentH: appointmentH,
	}

	engine.Use(
		middleware.RequestID(logger),
		middleware.Recovery(),
		metrics.Middleware(),
		middleware.Logger("/health", config.MetricsPath),
		middleware.ErrorHandler(),
		middleware.Timeout(config.RequestTimeout),
		middleware.CORS(config.CORSConfig),
	)

	return r
}

func (r *Router) Setup() {
	r.healthH.RegisterRoutes(r.engine)
	r.engine.GET(r.config.MetricsPath, r.metrics.Handler())

	pages := r.engine.Group("")
	pages.Use(
		middleware.SecurityHeaders(r.config.Security),
		r.rateLimit(),
		middleware.SizeLimit(r.config.MaxBodySize),
	)
	pages.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, appointment.DefaultBasePath)
	})
	r.contentH.RegisterRoutes(pages)

	dashboard := pages.Group("/dashboard")
	api := pages.Group("/api/v1/dashboard", appointment.JSONOnly())
	api.Use(func(c *gin.Context) {
		c.Header("X-API-Version", "1.0")
		c.Next()
	})
	if r.auth != nil {
		dashboard.Use(r.auth.Authenticate())
		api.Use(r.auth.Authenticate())
	}
	dashboard.Use(r.sessions.Middleware(r.config.Cookie))
	api.Use(r.sessions.Middleware(r.config.Cookie))

	r.appointmentH.RegisterRoutesWithEvents(dashboard, r.eventTracker)
	r.appointmentH.RegisterRoutesWithEvents(api, r.eventTracker)
}

func (r *Router) rateLimit() gin.HandlerFunc {
	if r.config.RateLimit <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	return middleware.NewRateLimiter(middleware.RateLimiterConfig{
		Rate:  r.config.RateLimit,
		Burst: r.config.RateBurst,
	}).RateLimit()
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
