package vocabulary

import (
	"github.com/gin-gonic/gin"
	"github.com/killallgit/wortschatz-api/api/types"
)

// RegisterRoutes registers vocabulary routes
func RegisterRoutes(router *gin.RouterGroup, deps *types.Dependencies) {
	// GET /api/vocabulary - Saved words ordered by German spelling
	router.GET("", List(deps))

	// POST /api/vocabulary - Save a word
	router.POST("", Create(deps))

	// DELETE /api/vocabulary/:id - Remove a word
	router.DELETE("/:id", Delete(deps))
}
