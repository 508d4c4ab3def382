package dictionary

import (
	"github.com/gin-gonic/gin"
	"github.com/killallgit/wortschatz-api/api/types"
)

// RegisterRoutes registers the dictionary lookup route
func RegisterRoutes(router *gin.RouterGroup, deps *types.Dependencies) {
	// POST /api/dictionary_lookup - Translate a German word
	router.POST("/dictionary_lookup", Lookup(deps))
}
