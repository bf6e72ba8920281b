// Package handlers binds HTTP requests to the services and writes the
// response envelope. Failures are attached to the gin context and rendered
// by the error middleware.
package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"vidshare-api/internal/apperror"
	"vidshare-api/internal/media"
	"vidshare-api/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// bindError turns a binding failure into a ValidationError listing the
// offending fields.
func bindError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			details = append(details, strings.ToLower(fe.Field())+" failed on "+fe.Tag())
		}
		return apperror.Validation("Invalid request body.", details...)
	}
	return apperror.Validation("Invalid request body.", err.Error())
}

// formFile opens an optional multipart file. A nil file and nil error mean the
// field was not sent. The returned close func is always safe to call.
func formFile(c *gin.Context, field string) (*media.File, func(), error) {
	noop := func() {}
	header, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, noop, nil
	}
	if err != nil {
		return nil, noop, apperror.Validation("Invalid multipart form.", err.Error())
	}
	return openUpload(header)
}

func openUpload(header *multipart.FileHeader) (*media.File, func(), error) {
	src, err := header.Open()
	if err != nil {
		return nil, func() {}, apperror.Internal("Failed to open uploaded file", err)
	}
	return &media.File{
		Name:        header.Filename,
		Size:        header.Size,
		ContentType: header.Header.Get("Content-Type"),
		Body:        src,
	}, func() { src.Close() }, nil
}

// queryInt parses a positive integer query value, returning 0 when it is
// absent or malformed.
func queryInt(c *gin.Context, key string) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func fail(c *gin.Context, err error) {
	middleware.Abort(c, err)
}
