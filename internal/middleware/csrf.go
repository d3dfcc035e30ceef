package middleware

import (
	"context"
	"crypto/sha256"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/csrf"
)

const (
	CSRFField = "csrf_token"

	ctxCSRFFailure = "csrf_failure"
)

type csrfOutcome struct{ reason error }

type csrfOutcomeKey struct{}

// CSRF guards every unsafe request with a gorilla/csrf token that pairs a
// signed cookie with a form field or X-CSRF-Token header.
type CSRF struct {
	protect func(http.Handler) http.Handler
}

// NewCSRF derives the token key from the session secret so one secret
// configures both cookies.
func NewCSRF(secret []byte, secure bool) *CSRF {
	key := sha256.Sum256(append([]byte("csrf\x00"), secret...))
	return &CSRF{protect: csrf.Protect(key[:],
		csrf.CookieName("mp_csrf"),
		csrf.FieldName(CSRFField),
		csrf.Path("/"),
		csrf.HttpOnly(true),
		csrf.Secure(secure),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.ErrorHandler(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			if out, ok := r.Context().Value(csrfOutcomeKey{}).(*csrfOutcome); ok {
				out.reason = csrf.FailureReason(r)
			}
		})),
	)}
}

// Protect runs the token check and hands rejected requests to onFail,
// which must write the response.
func (x *CSRF) Protect(onFail gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		out := &csrfOutcome{}
		r := c.Request.WithContext(context.WithValue(c.Request.Context(), csrfOutcomeKey{}, out))
		if r.TLS == nil {
			// no Referer is required over plain HTTP
			r = csrf.PlaintextHTTPRequest(r)
		}

		passed := false
		x.protect(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			passed = true
			c.Request = r
			c.Next()
		})).ServeHTTP(c.Writer, r)

		if !passed {
			c.Set(ctxCSRFFailure, out.reason)
			onFail(c)
			c.Abort()
		}
	}
}

// CSRFToken is the masked token to embed in forms, or "" outside Protect.
func CSRFToken(c *gin.Context) string {
	return csrf.Token(c.Request)
}

// CSRFFailure is why Protect rejected the request.
func CSRFFailure(c *gin.Context) error {
	err, _ := c.Get(ctxCSRFFailure)
	e, _ := err.(error)
	return e
}
