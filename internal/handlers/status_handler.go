package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/akylbek/payment-system/fraud-dashboard/internal/models"
	"github.com/akylbek/payment-system/fraud-dashboard/internal/state"
)

// StatusHandler answers the per-service status endpoints from the last probe.
type StatusHandler struct {
	state *state.DashboardState
}

func NewStatusHandler(st *state.DashboardState) *StatusHandler {
	return &StatusHandler{state: st}
}

func (h *StatusHandler) MLStatus(c *gin.Context) {
	h.respond(c, models.ServiceScoring)
}

func (h *StatusHandler) AlertStatus(c *gin.Context) {
	h.respond(c, models.ServiceAlerts)
}

func (h *StatusHandler) respond(c *gin.Context, service models.ServiceName) {
	health := h.state.Health(service)

	status := "offline"
	if health.Status == models.HealthHealthy {
		status = "online"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":     status,
		"service":    service,
		"checked_at": health.CheckedAt,
	})
}
