package dictionary

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/killallgit/wortschatz-api/api/types"
	"github.com/killallgit/wortschatz-api/internal/services/dictionary"
	apperrors "github.com/killallgit/wortschatz-api/pkg/errors"
)

const (
	MsgNoWord     = "No word provided"
	MsgNotFound   = "Word not found and fallback translation failed."
	MsgUnexpected = "An unexpected error occurred."
)

// LookupRequest is the body of a dictionary lookup
type LookupRequest struct {
	Word string `json:"word" example:"Haus"`
}

// Lookup translates a word using the dictionary, then machine translation
// @Summary      Look up a German word
// @Description  Queries the dictionary for a translation, grammatical gender and the full entry. Words the
// @Description  dictionary does not know are machine translated; those answers carry no gender or details.
// @Tags         dictionary
// @Accept       json
// @Produce      json
// @Param        request body LookupRequest true "Word to look up"
// @Success      200 {object} dictionary.LookupResult
// @Failure      400 {object} types.ErrorResponse "No word provided"
// @Failure      404 {object} types.ErrorResponse "No translation found"
// @Failure      500 {object} types.ErrorResponse
// @Router       /api/dictionary_lookup [post]
func Lookup(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LookupRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			types.SendBadRequest(c, MsgNoWord)
			return
		}

		result, err := deps.DictionaryService.Lookup(c.Request.Context(), req.Word)
		if err != nil {
			types.SendAppError(c, lookupError(err))
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

func lookupError(err error) *apperrors.AppError {
	switch {
	case errors.Is(err, dictionary.ErrEmptyWord):
		return apperrors.MissingFieldError(MsgNoWord, "word")
	case errors.Is(err, dictionary.ErrWordNotFound):
		return apperrors.Wrap(err, apperrors.ErrCodeNotFound, MsgNotFound)
	default:
		return apperrors.Internal(MsgUnexpected, err)
	}
}
