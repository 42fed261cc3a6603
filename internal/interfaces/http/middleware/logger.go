package middleware

import (
	"net/url"
	"time"

	"barberq.backend/pkg/logger"
	"github.com/gin-gonic/gin"
)

// LoggerMiddleware logs every request once it has been served. Socket
// tokens passed as ?token= are masked.
func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.LogRequest(c.Request.Context(), c.Request.Method, loggedPath(c.Request.URL), c.Writer.Status(), time.Since(start), c.ClientIP())
	}
}

func loggedPath(u *url.URL) string {
	if u.RawQuery == "" {
		return u.Path
	}
	query := u.Query()
	if query.Has(TokenQueryParam) {
		query.Set(TokenQueryParam, "[redacted]")
	}
	return u.Path + "?" + query.Encode()
}
