package audio

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/killallgit/wortschatz-api/api/types"
	"github.com/killallgit/wortschatz-api/internal/services/transcripts"
	apperrors "github.com/killallgit/wortschatz-api/pkg/errors"
)

// MsgNotFound is returned for unknown or unsafe filenames
const MsgNotFound = "Audio file not found"

// Get streams a file from the audio library
// @Summary      Stream audio
// @Description  Serves a stored upload by the filename in its audio_url. Range requests are honored for seeking.
// @Tags         audio
// @Produce      octet-stream
// @Param        filename path string true "Stored audio filename"
// @Success      200 {file} binary
// @Success      206 {file} binary "Partial content"
// @Failure      404 {object} types.ErrorResponse
// @Router       /audio/{filename} [get]
func Get(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		path, err := deps.TranscriptService.AudioPath(c.Param("filename"))
		if err != nil {
			if errors.Is(err, transcripts.ErrNotFound) {
				types.SendNotFound(c, MsgNotFound)
				return
			}
			types.SendAppError(c, apperrors.Internal("Failed to open audio file", err))
			return
		}

		c.Header("Accept-Ranges", "bytes")
		c.File(path)
	}
}
