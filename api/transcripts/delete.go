package transcripts

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/killallgit/wortschatz-api/api/types"
	"github.com/killallgit/wortschatz-api/internal/services/transcripts"
	apperrors "github.com/killallgit/wortschatz-api/pkg/errors"
)

// Delete removes a transcript and its audio file
// @Summary      Delete transcript
// @Description  Removes the stored audio file and the transcript row.
// @Tags         transcripts
// @Produce      json
// @Param        id path int true "Transcript ID" minimum(1)
// @Success      200 {object} types.MessageResponse
// @Failure      404 {object} types.ErrorResponse "Transcript not found"
// @Failure      500 {object} types.ErrorResponse
// @Router       /api/transcripts/{id} [delete]
func Delete(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := types.ParseIDParam(c, "id", MsgNotFound)
		if !ok {
			return
		}

		if err := deps.TranscriptService.Delete(c.Request.Context(), id); err != nil {
			if errors.Is(err, transcripts.ErrNotFound) {
				types.SendNotFound(c, MsgNotFound)
				return
			}
			types.SendAppError(c, apperrors.Internal(MsgDeleteFailed, err))
			return
		}

		types.SendMessage(c, MsgDeleted)
	}
}
