package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/readleap/readleap-backend/internal/apierr"
)

type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// RespondError maps any error onto the {error:{code,message}} envelope.
// Internal faults never leak their underlying message.
func RespondError(c *gin.Context, err error) {
	apiErr := apierr.From(err)
	c.JSON(apiErr.Status, ErrorEnvelope{
		Error: APIError{
			Code:    apiErr.Code,
			Message: apiErr.Message,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
