package transcripts

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/killallgit/wortschatz-api/api/types"
	"github.com/killallgit/wortschatz-api/internal/services/transcripts"
	apperrors "github.com/killallgit/wortschatz-api/pkg/errors"
)

// Get returns one transcript with its data
// @Summary      Get transcript
// @Description  A transcript including the full sanitized engine output (text, segments, words).
// @Tags         transcripts
// @Produce      json
// @Param        id path int true "Transcript ID" minimum(1)
// @Success      200 {object} models.TranscriptDetail
// @Failure      404 {object} types.ErrorResponse "Transcript not found"
// @Failure      500 {object} types.ErrorResponse
// @Router       /api/transcripts/{id} [get]
func Get(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := types.ParseIDParam(c, "id", MsgNotFound)
		if !ok {
			return
		}

		transcript, err := deps.TranscriptService.Get(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, transcripts.ErrNotFound) {
				types.SendNotFound(c, MsgNotFound)
				return
			}
			types.SendAppError(c, apperrors.Internal(MsgGetFailed, err))
			return
		}

		c.JSON(http.StatusOK, transcript.Detail())
	}
}
