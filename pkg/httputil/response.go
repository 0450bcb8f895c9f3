package httputil

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-dashboard/pkg/errors"
)

// Response wraps all API responses
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *Error      `json:"error,omitempty"`
}

// Error represents API error
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// RespondWithSuccess sends a success response
func RespondWithSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
	})
}

// RespondWithError sends an error response. Only AppError messages reach
// the client; anything else is reported as an internal error.
func RespondWithError(c *gin.Context, err error) {
	RespondWithErrorData(c, err, nil)
}

// RespondWithErrorData is RespondWithError with a payload, for failures that
// still have state worth returning.
func RespondWithErrorData(c *gin.Context, err error, data interface{}) {
	status, message := StatusAndMessage(err)
	c.JSON(status, Response{
		Success: false,
		Data:    data,
		Error: &Error{
			Code:    status,
			Message: message,
		},
	})
}

func StatusAndMessage(err error) (int, string) {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return appErr.HTTPStatus(), appErr.Message
	}
	return http.StatusInternalServerError, "Internal server error"
}

// WantsHTML reports whether the client prefers an HTML page over JSON.
// Requests without an Accept header get HTML.
func WantsHTML(c *gin.Context) bool {
	if c.GetHeader("Accept") == "" {
		return true
	}
	return c.NegotiateFormat(gin.MIMEHTML, gin.MIMEJSON) == gin.MIMEHTML
}
