package transcripts

import (
	"github.com/gin-gonic/gin"
	"github.com/killallgit/wortschatz-api/api/types"
)

// RegisterRoutes registers transcript routes. upload runs in front of the
// upload handler only (size limit, rate limit).
func RegisterRoutes(router *gin.RouterGroup, deps *types.Dependencies, upload ...gin.HandlerFunc) {
	// GET /api/transcripts - List transcripts, newest first
	router.GET("", List(deps))

	// POST /api/transcripts - Upload and transcribe an audio file
	router.POST("", append(upload, Upload(deps))...)

	// GET /api/transcripts/:id - Transcript with its data
	router.GET("/:id", Get(deps))

	// GET /api/transcripts/:id/subtitles - Segments as WebVTT, SubRip or text
	router.GET("/:id/subtitles", Subtitles(deps))

	// DELETE /api/transcripts/:id - Remove a transcript and its audio
	router.DELETE("/:id", Delete(deps))
}
