package transcripts

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/killallgit/wortschatz-api/api/types"
	"github.com/killallgit/wortschatz-api/internal/models"
	apperrors "github.com/killallgit/wortschatz-api/pkg/errors"
)

// List returns all transcripts without their data
// @Summary      List transcripts
// @Description  Every stored transcript, newest first. Transcript data is omitted; fetch a single transcript for it.
// @Tags         transcripts
// @Produce      json
// @Success      200 {array} models.TranscriptSummary
// @Failure      500 {object} types.ErrorResponse
// @Router       /api/transcripts [get]
func List(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := deps.TranscriptService.List(c.Request.Context())
		if err != nil {
			types.SendAppError(c, apperrors.Internal(MsgListFailed, err))
			return
		}

		summaries := make([]models.TranscriptSummary, 0, len(list))
		for i := range list {
			summaries = append(summaries, list[i].Summary())
		}
		c.JSON(http.StatusOK, summaries)
	}
}
