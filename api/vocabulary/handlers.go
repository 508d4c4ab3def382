package vocabulary

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/killallgit/wortschatz-api/api/types"
	"github.com/killallgit/wortschatz-api/internal/models"
	"github.com/killallgit/wortschatz-api/internal/services/vocabulary"
	apperrors "github.com/killallgit/wortschatz-api/pkg/errors"
)

const (
	MsgMissingFields  = "Missing required data: german and english fields"
	MsgDuplicate      = "Word already exists in vocabulary"
	MsgInvalidDetails = "Invalid details: must be a JSON value"
	MsgNotFound       = "Word not found in vocabulary"
	MsgDeleted        = "Word deleted successfully"
	MsgFailed         = "Failed to update vocabulary"
)

// List returns every saved word
// @Summary      List vocabulary
// @Tags         vocabulary
// @Produce      json
// @Success      200 {array} models.VocabularyResponse
// @Failure      500 {object} types.ErrorResponse
// @Router       /api/vocabulary [get]
func List(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		words, err := deps.VocabularyService.List(c.Request.Context())
		if err != nil {
			types.SendAppError(c, apperrors.Internal("Failed to list vocabulary", err))
			return
		}

		resp := make([]models.VocabularyResponse, 0, len(words))
		for i := range words {
			resp = append(resp, words[i].ToResponse())
		}
		c.JSON(http.StatusOK, resp)
	}
}

// Create saves a word
// @Summary      Add word
// @Description  Saves a German word with its translation. German spelling is unique ignoring case.
// @Tags         vocabulary
// @Accept       json
// @Produce      json
// @Param        word body vocabulary.CreateRequest true "Word to save"
// @Success      201 {object} models.VocabularyResponse
// @Failure      400 {object} types.ErrorResponse
// @Failure      409 {object} types.ErrorResponse "Word already exists"
// @Router       /api/vocabulary [post]
func Create(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req vocabulary.CreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			types.SendBadRequest(c, MsgMissingFields)
			return
		}

		word, err := deps.VocabularyService.Create(c.Request.Context(), req)
		if err != nil {
			types.SendAppError(c, createError(err))
			return
		}

		c.JSON(http.StatusCreated, word.ToResponse())
	}
}

// Delete removes a word
// @Summary      Delete word
// @Tags         vocabulary
// @Produce      json
// @Param        id path int true "Word ID" minimum(1)
// @Success      200 {object} types.MessageResponse
// @Failure      404 {object} types.ErrorResponse
// @Router       /api/vocabulary/{id} [delete]
func Delete(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := types.ParseIDParam(c, "id", MsgNotFound)
		if !ok {
			return
		}

		if err := deps.VocabularyService.Delete(c.Request.Context(), id); err != nil {
			if errors.Is(err, vocabulary.ErrWordNotFound) {
				types.SendNotFound(c, MsgNotFound)
				return
			}
			types.SendAppError(c, apperrors.Internal(MsgFailed, err))
			return
		}

		types.SendMessage(c, MsgDeleted)
	}
}

func createError(err error) *apperrors.AppError {
	switch {
	case errors.Is(err, vocabulary.ErrMissingFields):
		return apperrors.MissingFieldError(MsgMissingFields, "german", "english")
	case errors.Is(err, vocabulary.ErrDuplicateWord):
		return apperrors.AlreadyExists(MsgDuplicate)
	case errors.Is(err, vocabulary.ErrInvalidDetails):
		return apperrors.Wrap(err, apperrors.ErrCodeValidation, MsgInvalidDetails)
	default:
		return apperrors.Internal(MsgFailed, err)
	}
}
