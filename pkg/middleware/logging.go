package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/harryzhoudev/portfolio-api/pkg/logger"
)

// RequestLogger logs one line per request through the leveled logger.
// Server errors log at error level, client errors at warn, the rest at debug.
func RequestLogger() gin.HandlerFunc {
	log := logger.Op("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		status := c.Writer.Status()
		took := time.Since(start).Round(time.Microsecond)
		switch {
		case status >= 500:
			log.Errorf("%s %s %d %s ip=%s", c.Request.Method, path, status, took, c.ClientIP())
		case status >= 400:
			log.Warnf("%s %s %d %s ip=%s", c.Request.Method, path, status, took, c.ClientIP())
		default:
			log.Debugf("%s %s %d %s", c.Request.Method, path, status, took)
		}
	}
}
