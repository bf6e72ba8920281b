package utils

import (
	"net/http"

	"vidshare-api/internal/apperror"

	"github.com/gin-gonic/gin"
)

// Envelope is the body of every successful API response.
type Envelope struct {
	StatusCode int    `json:"status_code"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

// ErrorBody is the body of every failed API response.
type ErrorBody struct {
	StatusCode int      `json:"status_code"`
	Data       any      `json:"data"`
	Message    string   `json:"message"`
	Errors     []string `json:"errors"`
	Success    bool     `json:"success"`
}

// Respond writes a success envelope.
func Respond(c *gin.Context, status int, data any, message string) {
	c.JSON(status, Envelope{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    status < http.StatusBadRequest,
	})
}

// ErrorEnvelope renders err as a failure envelope. Internal failures never
// leak their cause.
func ErrorEnvelope(err error) ErrorBody {
	appErr := apperror.From(err)
	status := appErr.Kind.Status()
	msg := appErr.Message
	if msg == "" {
		msg = http.StatusText(status)
	}
	errs := appErr.Details
	if errs == nil {
		errs = []string{}
	}
	return ErrorBody{
		StatusCode: status,
		Data:       nil,
		Message:    msg,
		Errors:     errs,
		Success:    false,
	}
}
