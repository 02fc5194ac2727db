package api

import (
	"github.com/gin-gonic/gin"

	"github.com/basexlabs/basex-oracle/protocol"
	"github.com/basexlabs/basex-oracle/protocol/common/health"
)

type healthStatus struct {
	healthReporters []protocol.HealthReporter
}

// handleLiveness answers as long as the process can serve HTTP.
func (h *healthStatus) handleLiveness(c *gin.Context) {
	response := health.NewAliveResponse()
	c.JSON(response.StatusCode(), response)
}

// handleReadiness reports every dependency. No reporters is a valid idle state.
func (h *healthStatus) handleReadiness(c *gin.Context) {
	statuses := make([]health.ServicesHealth, 0, len(h.healthReporters))
	for _, reporter := range h.healthReporters {
		statuses = append(statuses, health.NewServiceHealth(reporter))
	}
	response := health.NewReadinessResponse(statuses)
	c.JSON(response.StatusCode(), response)
}
