package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Checker reports whether a dependency is reachable.
type Checker interface {
	Name() string
	Check(ctx context.Context) error
}

// CheckFunc adapts a function to Checker.
type CheckFunc struct {
	DependencyName string
	Fn             func(ctx context.Context) error
}

func (f CheckFunc) Name() string                    { return f.DependencyName }
func (f CheckFunc) Check(ctx context.Context) error { return f.Fn(ctx) }

// Handler serves liveness and readiness endpoints.
type Handler struct {
	service  string
	checkers []Checker
}

// NewHandler creates a Handler that checks the given dependencies on /ready.
func NewHandler(service string, checkers ...Checker) *Handler {
	return &Handler{service: service, checkers: checkers}
}

// RegisterRoutes mounts /health and /ready.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Live)
	r.GET("/ready", h.Ready)
}

// Live always answers 200 while the process is serving.
func (h *Handler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": h.service})
}

// Ready answers 503 if any dependency check fails.
func (h *Handler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	deps := make(gin.H, len(h.checkers))
	for _, chk := range h.checkers {
		if err := chk.Check(ctx); err != nil {
			status = http.StatusServiceUnavailable
			deps[chk.Name()] = err.Error()
			continue
		}
		deps[chk.Name()] = "ok"
	}

	c.JSON(status, gin.H{"service": h.service, "dependencies": deps})
}
