package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/repair-shop-api/locales"
)

// Locale picks the response language from Accept-Language
func Locale() gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := locales.Negotiate(c.GetHeader("Accept-Language"))
		c.Set(locales.ContextKey, lang)
		c.Header("Content-Language", lang)
		c.Next()
	}
}
