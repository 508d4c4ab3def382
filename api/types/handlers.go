package types

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	apperrors "github.com/killallgit/wortschatz-api/pkg/errors"
)

// Handler utility functions to reduce duplication across handlers

// ParseIDParam extracts a positive numeric path parameter. Anything else
// answers 404 with notFound, since no resource can live at that path.
func ParseIDParam(c *gin.Context, paramName, notFound string) (uint, bool) {
	value, err := strconv.ParseUint(c.Param(paramName), 10, 32)
	if err != nil || value == 0 {
		SendNotFound(c, notFound)
		return 0, false
	}
	return uint(value), true
}

// SendAppError writes err as an ErrorResponse using its HTTP code. Causes are
// logged, never sent to the client.
func SendAppError(c *gin.Context, err *apperrors.AppError) {
	code := err.GetHTTPCode()
	if code >= http.StatusInternalServerError {
		log.Printf("[ERROR] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	} else if err.Cause != nil {
		log.Printf("[DEBUG] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(code, ErrorResponse{Error: err.Message})
}

// SendBadRequest sends a standardized bad request response
func SendBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message})
}

// SendNotFound sends a standardized not found response
func SendNotFound(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, ErrorResponse{Error: message})
}

// SendMessage sends a 200 with a message body
func SendMessage(c *gin.Context, message string) {
	c.JSON(http.StatusOK, MessageResponse{Message: message})
}
