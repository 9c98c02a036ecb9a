package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cartelera/billboard/internal/config"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db    Pinger
	redis Pinger
}

// NewHealthHandler takes the dependencies readiness should check. Either may
// be nil, in which case it is skipped (redis is optional in small deploys).
func NewHealthHandler(db, redis Pinger) *HealthHandler {
	return &HealthHandler{db: db, redis: redis}
}

func (h *HealthHandler) Healthz(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *HealthHandler) Readyz(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	checks := gin.H{}
	ready := true

	if h.db != nil {
		if err := h.db.Ping(cctx); err != nil {
			checks["db"] = "down"
			ready = false
		} else {
			checks["db"] = "ok"
		}
	}

	if h.redis != nil {
		if err := h.redis.Ping(cctx); err != nil {
			checks["redis"] = "down"
			ready = false
		} else {
			checks["redis"] = "ok"
		}
	}

	status := http.StatusOK
	state := "ready"

	if !ready {
		status = http.StatusServiceUnavailable
		state = "degraded"
	}

	ctx.JSON(status, gin.H{
		"status": state,
		"checks": checks,
	})
}
