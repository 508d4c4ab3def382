package transcripts

import (
	"bytes"
	"errors"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/killallgit/wortschatz-api/api/types"
	"github.com/killallgit/wortschatz-api/internal/services/transcripts"
	apperrors "github.com/killallgit/wortschatz-api/pkg/errors"
	"github.com/killallgit/wortschatz-api/pkg/subtitles"
)

// Subtitles exports a transcript's segments
// @Summary      Export subtitles
// @Description  The transcript's timed segments as WebVTT (default), SubRip or plain text, for playing along with the stored audio.
// @Tags         transcripts
// @Produce      plain
// @Param        id path int true "Transcript ID" minimum(1)
// @Param        format query string false "Subtitle format" Enums(vtt, srt, text) default(vtt)
// @Success      200 {string} string "Subtitle file"
// @Failure      400 {object} types.ErrorResponse "Unsupported format"
// @Failure      404 {object} types.ErrorResponse "Transcript not found"
// @Failure      500 {object} types.ErrorResponse
// @Router       /api/transcripts/{id}/subtitles [get]
func Subtitles(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := types.ParseIDParam(c, "id", MsgNotFound)
		if !ok {
			return
		}

		format, err := subtitles.ParseFormat(c.Query("format"))
		if err != nil {
			types.SendBadRequest(c, MsgBadFormat)
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

		cues, err := subtitles.FromTranscript([]byte(transcript.TranscriptJSON))
		if err != nil {
			types.SendAppError(c, apperrors.Internal(MsgGetFailed, err))
			return
		}

		var body bytes.Buffer
		if err := subtitles.Render(&body, cues, format); err != nil {
			types.SendAppError(c, apperrors.Internal(MsgGetFailed, err))
			return
		}

		base := strings.TrimSuffix(transcript.AudioFilename, filepath.Ext(transcript.AudioFilename))
		c.Header("Content-Disposition", mime.FormatMediaType("inline", map[string]string{
			"filename": base + "." + format.Extension(),
		}))
		c.Data(http.StatusOK, format.ContentType(), body.Bytes())
	}
}
