package version

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/killallgit/wortschatz-api/api/types"
)

// Name is the service name reported by the version endpoints
const Name = "Wortschatz API"

// Get handles version requests
// @Summary      Version information
// @Tags         system
// @Produce      json
// @Success      200 {object} types.VersionResponse
// @Router       /version [get]
func Get(version string) gin.HandlerFunc {
	if version == "" {
		version = "dev"
	}
	resp := types.VersionResponse{
		Name:        Name,
		Version:     version,
		Description: "German audio transcription and vocabulary API",
		Status:      "running",
	}
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, resp)
	}
}
