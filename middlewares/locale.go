package middlewares

import (
	"civicsync/i18n"

	"github.com/gin-gonic/gin"
)

const langKey = "lang"

// Locale picks the response language from ?lang= or Accept-Language.
func Locale(messages *i18n.Bundle) gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := c.Query("lang")
		if !messages.Supports(lang) {
			lang = messages.Match(c.GetHeader("Accept-Language"))
		}
		c.Set(langKey, lang)
		c.Next()
	}
}

func Lang(c *gin.Context) string {
	if lang := c.GetString(langKey); lang != "" {
		return lang
	}
	return i18n.DefaultLanguage
}

// Abort stops the chain with a localized error body.
func Abort(c *gin.Context, messages *i18n.Bundle, status int, key string) {
	c.AbortWithStatusJSON(status, gin.H{"error": messages.T(Lang(c), key)})
}
