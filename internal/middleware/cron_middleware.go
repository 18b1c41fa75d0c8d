package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"
	"github.com/viraleats/viraleats-backend/internal/errors"
)

// CronAuth guards the manual batch-trigger endpoints with a shared secret,
// accepted from the X-Cron-Secret header or the secret query parameter.
// An empty configured secret disables the endpoints entirely rather than
// leaving them open.
func CronAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		if secret == "" {
			log.Warn("Cron endpoint called but no secret is configured", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			errors.Unauthorized(c, errors.CronUnauthorized, "Cron endpoints are disabled")
			c.Abort()
			return
		}

		provided := c.GetHeader("X-Cron-Secret")
		if provided == "" {
			provided = c.Query("secret")
		}

		if subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
			log.Warn("Cron endpoint called with a bad secret", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			errors.Unauthorized(c, errors.CronUnauthorized, "Invalid cron secret")
			c.Abort()
			return
		}

		c.Next()
	}
}
