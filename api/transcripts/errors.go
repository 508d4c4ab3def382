package transcripts

import (
	"errors"
	"net/http"

	"github.com/killallgit/wortschatz-api/internal/services/transcripts"
	apperrors "github.com/killallgit/wortschatz-api/pkg/errors"
)

// Client facing messages
const (
	MsgUnavailable    = "Transcription service is unavailable: Model not loaded."
	MsgNoAudio        = "No audio file provided"
	MsgNoFileSelected = "No file selected"
	MsgTooLarge       = "Uploaded file is too large"
	MsgUnsupported    = "Could not decode audio file. Please use a standard format like MP3, WAV, or M4A."
	MsgBusy           = "Transcription queue is full. Please try again later."
	MsgInternal       = "An internal error occurred during transcription."
	MsgNotFound       = "Transcript not found"
	MsgDeleted        = "Transcript deleted successfully"
	MsgDeleteFailed   = "Failed to delete transcript due to an internal error"
	MsgListFailed     = "Failed to list transcripts"
	MsgGetFailed      = "Failed to load transcript"
	MsgBadFormat      = "Unsupported subtitle format. Use vtt, srt or text."
	formField         = "audio"
)

// ingestError maps a pipeline failure to its HTTP error
func ingestError(err error) *apperrors.AppError {
	switch {
	case errors.Is(err, transcripts.ErrEngineUnavailable):
		return apperrors.ServiceUnavailable(MsgUnavailable, err)
	case errors.Is(err, transcripts.ErrUnsupportedFormat):
		return apperrors.UnsupportedMedia(MsgUnsupported, err)
	case errors.Is(err, transcripts.ErrBusy):
		return apperrors.Wrap(err, apperrors.ErrCodeBusy, MsgBusy)
	default:
		return apperrors.Internal(MsgInternal, err)
	}
}

// uploadError maps a multipart parsing failure
func uploadError(err error) *apperrors.AppError {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		appErr := apperrors.Wrap(err, apperrors.ErrCodeValidation, MsgTooLarge)
		appErr.HTTPCode = http.StatusRequestEntityTooLarge
		return appErr
	}
	return apperrors.Wrap(err, apperrors.ErrCodeMissingField, MsgNoAudio)
}
