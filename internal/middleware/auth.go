package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"marketplace/internal/obs"
)

const MsgLoginRequired = "Please log in to access this page."

// RequireLogin redirects anonymous visitors to /login?next=<path>.
func RequireLogin(s *Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) != nil {
			c.Next()
			return
		}
		AddFlash(c, MsgLoginRequired)
		redirect(c, s, "/login?next="+url.QueryEscape(c.Request.URL.RequestURI()))
	}
}

// RequireSeller must run after RequireLogin. Non-sellers get msg flashed and
// go back to the index.
func RequireSeller(s *Sessions, msg string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if u := CurrentUser(c); u != nil && u.Capabilities().CanSell {
			c.Next()
			return
		}
		AddFlash(c, msg)
		redirect(c, s, "/")
	}
}

// RedirectIfAuthenticated keeps logged-in users away from /login and /register.
func RedirectIfAuthenticated(s *Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			c.Next()
			return
		}
		redirect(c, s, "/")
	}
}

// SafeNext accepts only local absolute paths as post-login targets.
func SafeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, "\\") {
		return "/"
	}
	return next
}

func redirect(c *gin.Context, s *Sessions, to string) {
	if err := s.Save(c); err != nil {
		obs.Logger.ErrorContext(c.Request.Context(), "save session", "err", err, "request_id", RequestIDFrom(c))
	}
	c.Redirect(http.StatusFound, to)
	c.Abort()
}
