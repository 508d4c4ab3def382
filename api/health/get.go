package health

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/killallgit/wortschatz-api/api/types"
)

// Get handles health check requests. A database failure makes the service
// unhealthy (503); a missing engine only degrades it, since the library and
// vocabulary keep working.
// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200 {object} types.HealthResponse
// @Failure      503 {object} types.HealthResponse
// @Router       /health [get]
func Get(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		response := types.HealthResponse{
			Status:    types.StatusOK,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Database:  databaseStatus(c, deps),
			Engine:    engineStatus(deps),
		}

		code := http.StatusOK
		switch {
		case response.Database.Status != types.StatusHealthy:
			response.Status = types.StatusUnhealthy
			code = http.StatusServiceUnavailable
		case response.Engine.Status != types.StatusHealthy:
			response.Status = types.StatusDegraded
		}

		c.JSON(code, response)
	}
}

func databaseStatus(c *gin.Context, deps *types.Dependencies) types.ComponentStatus {
	if deps == nil || deps.DB == nil || deps.DB.DB == nil {
		return types.ComponentStatus{Status: types.StatusNotConfigured}
	}
	if err := deps.DB.HealthCheck(c.Request.Context()); err != nil {
		return types.ComponentStatus{Status: types.StatusUnhealthy, Error: err.Error()}
	}
	return types.ComponentStatus{Status: types.StatusHealthy}
}

func engineStatus(deps *types.Dependencies) types.ComponentStatus {
	if deps == nil || deps.TranscriptService == nil {
		return types.ComponentStatus{Status: types.StatusNotConfigured}
	}
	if err := deps.TranscriptService.Available(); err != nil {
		return types.ComponentStatus{Status: types.StatusUnavailable, Error: err.Error()}
	}
	return types.ComponentStatus{Status: types.StatusHealthy}
}
