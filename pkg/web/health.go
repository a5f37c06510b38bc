package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"locallibrary/pkg/circuitbreaker"

	"github.com/gin-gonic/gin"
)

const healthTimeout = 2 * time.Second

// Health pings the database through the circuit breaker. While the breaker
// is open the database is reported down without being pinged.
func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	ping := h.db.Ping
	var err error
	if h.breaker != nil {
		err = h.breaker.Execute(ctx, ping)
	} else {
		err = ping(ctx)
	}

	if err != nil {
		details := "Database ping failed"
		if errors.Is(err, circuitbreaker.ErrOpen) {
			details = "Database unavailable, health checks paused"
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "DOWN",
			"details": details,
			"error":   err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "UP",
		"details": "Catalog database is reachable",
	})
}
