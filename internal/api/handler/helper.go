package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/crimsight/crimsight/pkg/errors"
)

// writeError maps an error to a JSON response using the application
// error code and HTTP status when available.
func writeError(c *gin.Context, err error) {
	if appErr, ok := errors.AsAppError(err); ok {
		c.JSON(appErr.HTTPStatus(), gin.H{
			"code":    appErr.Code,
			"message": appErr.Message,
		})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{
		"code":    errors.ErrCodeInternal,
		"message": err.Error(),
	})
}
