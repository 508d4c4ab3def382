package transcripts

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/killallgit/wortschatz-api/api/types"
	"github.com/killallgit/wortschatz-api/internal/services/transcripts"
	apperrors "github.com/killallgit/wortschatz-api/pkg/errors"
)

// Upload transcribes an uploaded audio file and stores it in the library
// @Summary      Upload audio for transcription
// @Description  Accepts any common audio container in the multipart field "audio". The request blocks until
// @Description  the file is normalized, transcribed and stored; the response is the new transcript summary.
// @Tags         transcripts
// @Accept       multipart/form-data
// @Produce      json
// @Param        audio formData file true "Audio file"
// @Success      201 {object} models.TranscriptSummary
// @Failure      400 {object} types.ErrorResponse "No audio file provided / No file selected"
// @Failure      413 {object} types.ErrorResponse "Upload exceeds server.max_upload_size"
// @Failure      415 {object} types.ErrorResponse "Audio could not be decoded"
// @Failure      503 {object} types.ErrorResponse "Engine not loaded or queue full"
// @Failure      500 {object} types.ErrorResponse
// @Router       /api/transcripts [post]
func Upload(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		svc := deps.TranscriptService
		if err := svc.Available(); err != nil {
			types.SendAppError(c, apperrors.ServiceUnavailable(MsgUnavailable, err))
			return
		}

		header, err := c.FormFile(formField)
		if err != nil {
			if errors.Is(err, http.ErrMissingFile) && fieldWithoutFile(c) {
				types.SendBadRequest(c, MsgNoFileSelected)
				return
			}
			types.SendAppError(c, uploadError(err))
			return
		}
		if header.Filename == "" {
			types.SendBadRequest(c, MsgNoFileSelected)
			return
		}

		file, err := header.Open()
		if err != nil {
			types.SendAppError(c, apperrors.Internal(MsgInternal, err))
			return
		}
		upload, err := svc.Receive(header.Filename, file)
		file.Close()
		if err != nil {
			types.SendAppError(c, apperrors.Internal(MsgInternal, err))
			return
		}

		transcript, err := svc.Ingest(c.Request.Context(), upload)
		if err != nil {
			log.Printf("[WARN] Upload %q stopped before %s: %v", header.Filename, transcripts.FailedStage(err), err)
			types.SendAppError(c, ingestError(err))
			return
		}

		c.JSON(http.StatusCreated, transcript.Summary())
	}
}

// fieldWithoutFile reports whether the audio field was sent with an empty
// filename, which multipart parsing files under values instead of files
func fieldWithoutFile(c *gin.Context) bool {
	form := c.Request.MultipartForm
	if form == nil {
		return false
	}
	_, ok := form.Value[formField]
	return ok
}
