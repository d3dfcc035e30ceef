package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"marketplace/internal/cache"
	"marketplace/internal/obs"
)

const ctxRetryAfter = "retry_after"

// ThrottleKey normalizes the e-mail used as the throttle key.
func ThrottleKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// LoginThrottle stops login POSTs for an e-mail in cooldown and hands the
// request to onBlocked instead. Failures and resets are recorded by the login
// handler, which knows the outcome.
func LoginThrottle(th cache.Throttle, onBlocked gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := ThrottleKey(c.PostForm("email"))
		if key == "" {
			c.Next()
			return
		}

		left, err := th.Blocked(c.Request.Context(), key)
		if err != nil {
			// the throttle is advisory; a broken backend must not lock everyone out
			obs.Logger.WarnContext(c.Request.Context(), "login throttle unavailable", "err", err, "request_id", RequestIDFrom(c))
			c.Next()
			return
		}
		if left > 0 {
			c.Set(ctxRetryAfter, left)
			onBlocked(c)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RetryAfter is the remaining cooldown set by LoginThrottle.
func RetryAfter(c *gin.Context) time.Duration {
	v, _ := c.Get(ctxRetryAfter)
	d, _ := v.(time.Duration)
	return d
}
