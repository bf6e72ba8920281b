package middleware

import (
	"fmt"
	"net/http"
	"time"

	"vidshare-api/internal/apperror"
	"vidshare-api/internal/utils"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
)

const (
	HeaderRequestID = "X-Request-ID"
	ctxRequestID    = "request_id"
)

// RequestID tags every request with an ID, reusing a well-formed one sent by
// the client.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" || len(id) > 64 {
			id = utils.GenerateID()
		}
		c.Set(ctxRequestID, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

// LoggingMiddleware writes one access log line per request.
func LoggingMiddleware(logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		kv := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"ip", c.ClientIP(),
			"status", status,
			"duration", time.Since(start),
			"request_id", c.GetString(ctxRequestID),
		}
		switch {
		case status >= http.StatusInternalServerError:
			logger.Error("request", kv...)
		case status >= http.StatusBadRequest:
			logger.Warn("request", kv...)
		default:
			logger.Info("request", kv...)
		}
	}
}

// ErrorHandlingMiddleware renders the last error attached with c.Error as the
// failure envelope, unless a handler already wrote a body.
func ErrorHandlingMiddleware(logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err
		appErr := apperror.From(err)
		if appErr.Kind.Status() >= http.StatusInternalServerError {
			logger.Error("request failed", "path", c.Request.URL.Path, "request_id", c.GetString(ctxRequestID), "err", err)
		} else {
			logger.Debug("request rejected", "path", c.Request.URL.Path, "err", err)
		}

		if c.Writer.Written() {
			return
		}
		body := utils.ErrorEnvelope(appErr)
		c.JSON(body.StatusCode, body)
	}
}

// Recovery converts a panic into an internal error envelope.
func Recovery(logger *log.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered any) {
		logger.Error("panic recovered", "path", c.Request.URL.Path, "panic", fmt.Sprint(recovered))
		body := utils.ErrorEnvelope(apperror.Internal("Something went wrong", fmt.Errorf("panic: %v", recovered)))
		c.AbortWithStatusJSON(body.StatusCode, body)
	})
}

// Abort attaches err to the context and stops the handler chain.
func Abort(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
