package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/repair-shop-api/locales"
	"go.uber.org/zap"
)

// ExposeErrorDetails adds the underlying error text to internal error responses.
// Enabled in development only.
var ExposeErrorDetails = false

// RespondOK writes the success envelope with status 200
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}

// RespondCreated writes the success envelope with status 201
func RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    data,
	})
}

// RespondError maps err onto the error envelope and aborts the request
func RespondError(c *gin.Context, err error) {
	appErr := AsAppError(err)

	if appErr.Kind == KindInternal {
		zap.L().Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(appErr.Err),
		)
	}

	body := gin.H{
		"code":    appErr.Code,
		"message": locales.TranslateContext(c, appErr.Code, appErr.Message, appErr.Data),
	}
	if len(appErr.Fields) > 0 {
		body["fields"] = appErr.Fields
	}
	if appErr.Kind == KindInternal && ExposeErrorDetails && appErr.Err != nil {
		body["details"] = appErr.Err.Error()
	}

	c.AbortWithStatusJSON(appErr.Kind.Status(), gin.H{
		"success": false,
		"error":   body,
	})
}
