package audio

import (
	"github.com/gin-gonic/gin"
	"github.com/killallgit/wortschatz-api/api/types"
)

// RegisterRoutes registers the audio file routes
func RegisterRoutes(engine *gin.Engine, deps *types.Dependencies) {
	handler := Get(deps)

	// GET/HEAD /audio/:filename - Stream a stored audio file (supports Range)
	engine.GET("/audio/:filename", handler)
	engine.HEAD("/audio/:filename", handler)
}
