package api

import (
	"errors"
	"net/http"
	"strings"

	"bitwise74/zeropass/service"
	"bitwise74/zeropass/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// FileUpload stores one multipart file for the authenticated caller.
// Quota is checked before any byte is written, a rejection leaves no
// partial state.
func (a *API) FileUpload(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	if !strings.HasPrefix(c.Request.Header.Get("Content-Type"), "multipart/form-data") {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "validation_failed",
			"requestID": requestID,
		})
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "internal_server_error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to parse multipart form", zap.Error(err))
		return
	}

	files := form.File["file"]
	if len(files) <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "validation_failed",
			"requestID": requestID,
		})
		return
	}

	fh := files[0]

	code, f, contentType, err := validators.FileValidator(fh)
	if err != nil {
		if code == http.StatusInternalServerError {
			zap.L().Error("Failed to validate file", zap.Error(err))
			err = errors.New("internal_server_error")
		}

		c.AbortWithStatusJSON(code, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}
	defer f.Close()

	file, err := a.Uploads.Upload(c.Request.Context(), userID, fh.Filename, contentType, f, fh.Size)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoSpace):
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":     "quota_exceeded",
				"requestID": requestID,
			})
		case errors.Is(err, service.ErrUploadFailed):
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":     "upload_failed",
				"requestID": requestID,
			})
		default:
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":     "internal_server_error",
				"requestID": requestID,
			})

			zap.L().Error("Failed to store file", zap.Error(err), zap.String("requestID", requestID))
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"file": file,
	})
}
