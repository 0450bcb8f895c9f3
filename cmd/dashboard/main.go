package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/clinic-dashboard/internal/backend"
	"github.com/jwalitptl/clinic-dashboard/internal/config"
	"github.com/jwalitptl/clinic-dashboard/internal/handler/appointment"
	"github.com/jwalitptl/clinic-dashboard/internal/handler/content"
	"github.com/jwalitptl/clinic-dashboard/internal/handler/health"
	"github.com/jwalitptl/clinic-dashboard/internal/handler/prometheus"
	"github.com/jwalitptl/clinic-dashboard/internal/listing"
	"github.com/jwalitptl/clinic-dashboard/internal/middleware"
	"github.com/jwalitptl/clinic-dashboard/internal/router"
	"github.com/jwalitptl/clinic-dashboard/internal/session"
	"github.com/jwalitptl/clinic-dashboard/internal/web"
	"github.com/jwalitptl/clinic-dashboard/pkg/auth"
	"github.com/jwalitptl/clinic-dashboard/pkg/circuitbreaker"
	"github.com/jwalitptl/clinic-dashboard/pkg/event"
	"github.com/jwalitptl/clinic-dashboard/pkg/logger"
	"github.com/jwalitptl/clinic-dashboard/pkg/messaging"
	"github.com/jwalitptl/clinic-dashboard/pkg/messaging/redis"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(&logger.Config{
		Level:      logger.ParseLevel(cfg.Log.Level),
		TimeFormat: time.RFC3339,
		Pretty:     cfg.Log.Pretty,
	})
	log.SetGlobal()
	zl := log.Zerolog()

	metricsH := prometheus.New(cfg.Metrics.Namespace)
	m := metricsH.Metrics()

	// Appointment backend
	client, err := backend.NewClient(backend.Config{
		BaseURL: cfg.Backend.BaseURL,
		Timeout: cfg.Backend.Timeout,
		Token:   cfg.Backend.Token,
		Breaker: circuitbreaker.Settings{
			MaxFailures: cfg.Backend.Breaker.MaxFailures,
			MaxRequests: cfg.Backend.Breaker.MaxRequests,
			Interval:    cfg.Backend.Breaker.Interval,
			Timeout:     cfg.Backend.Breaker.Timeout,
		},
	}, m, zl)
	if err != nil {
		log.Fatal(err, "failed to create backend client")
	}

	// Event broker; without redis, events are dropped
	var broker messaging.Broker = messaging.NopBroker{}
	if cfg.Redis.Enabled {
		connectCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		broker, err = redis.NewRedisBroker(connectCtx, redis.Config{
			URL:          cfg.Redis.URL,
			MaxRetries:   cfg.Redis.MaxRetries,
			RetryBackoff: cfg.Redis.RetryBackoff,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
		}, zl)
		cancel()
		if err != nil {
			log.Fatal(err, "failed to connect to Redis")
		}
	}
	defer broker.Close()

	publisher := event.NewPublisher(broker, cfg.Redis.Channel, m, zl)
	eventTracker := event.NewEventTrackerMiddleware(publisher)

	sessions := session.NewStore(cfg.Dashboard.SessionTTL, func() *listing.View {
		return listing.NewView(client, listing.Options{
			PageSize:       cfg.Dashboard.PageSize,
			EditPathPrefix: cfg.Dashboard.EditPathPrefix,
			Metrics:        m,
			Logger:         zl,
		})
	}, m)

	var authMiddleware *middleware.AuthMiddleware
	if cfg.JWT.Enabled {
		authMiddleware = middleware.NewAuthMiddleware(auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Issuer), cfg.JWT.Cookie)
	}

	templates, err := web.Templates()
	if err != nil {
		log.Fatal(err, "failed to parse templates")
	}

	// Initialize handlers
	healthHandler := health.NewHandler(client, broker)
	contentHandler := content.NewHandler()
	appointmentHandler := appointment.NewHandler(appointment.Options{
		ReconcileAfterDelete: cfg.Dashboard.ReconcileAfterDelete,
		ReconcileTimeout:     cfg.Backend.Timeout,
		Logger:               zl,
	})

	mode := gin.ReleaseMode
	if cfg.Log.Level == "debug" || cfg.Log.Level == "trace" {
		mode = gin.DebugMode
	}
	var limit rate.Limit
	if cfg.RateLimit.Enabled {
		limit = rate.Limit(cfg.RateLimit.RequestsPerSecond)
	}

	r := router.NewRouter(
		zl,
		templates,
		authMiddleware,
		sessions,
		metricsH,
		eventTracker,
		healthHandler,
		contentHandler,
		appointmentHandler,
		router.RouterConfig{
			Mode:           mode,
			RateLimit:      limit,
			RateBurst:      cfg.RateLimit.Burst,
			CORSConfig:     middleware.DefaultCORSConfig(cfg.Security.AllowedOrigins),
			Security:       middleware.DefaultSecurityConfig(cfg.Dashboard.SecureCookies),
			RequestTimeout: cfg.Server.RequestTimeout,
			MetricsPath:    cfg.Metrics.Path,
			Cookie: session.CookieConfig{
				Name:   cfg.Dashboard.SessionCookie,
				Path:   "/",
				MaxAge: cfg.Dashboard.SessionTTL,
				Secure: cfg.Dashboard.SecureCookies,
			},
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           r.Engine(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err, "failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error(err, "server forced to shutdown")
	}
	appointmentHandler.Wait()

	log.Info("server exited properly")
}
