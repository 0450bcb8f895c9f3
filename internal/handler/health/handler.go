package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-dashboard/pkg/circuitbreaker"
)

// BreakerReporter exposes the backend circuit breaker.
type BreakerReporter interface {
	BreakerState() circuitbreaker.State
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	backend BreakerReporter
	broker  Pinger
}

// NewHandler builds the health endpoints. broker may be nil when event
// publishing is disabled.
func NewHandler(backend BreakerReporter, broker Pinger) *Handler {
	return &Handler{
		backend: backend,
		broker:  broker,
	}
}

func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/health/live", h.LivenessCheck)
	r.GET("/health/ready", h.ReadinessCheck)
}

func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "UP"})
}

// ReadinessCheck is DOWN while the backend breaker is open or the broker
// does not answer.
func (h *Handler) ReadinessCheck(c *gin.Context) {
	checks := gin.H{}
	ready := true

	state := h.backend.BreakerState()
	checks["backend"] = state.String()
	if state == circuitbreaker.StateOpen {
		ready = false
	}

	if h.broker != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.broker.Ping(ctx); err != nil {
			checks["broker"] = "unreachable"
			ready = false
		} else {
			checks["broker"] = "ok"
		}
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "DOWN", "checks": checks})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "UP", "checks": checks})
}
