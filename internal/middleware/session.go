package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"marketplace/internal/models"
	"marketplace/internal/obs"
	"marketplace/internal/repository"
)

const (
	ctxSession = "session"
	ctxUser    = "user"

	keySID      = "sid"
	keyUserID   = "user_id"
	keyRemember = "remember"
)

// NewCookieStore builds the signed cookie store backing every session.
// maxAge bounds how long a signed cookie is accepted.
func NewCookieStore(secret []byte, maxAge time.Duration, secure bool) *sessions.CookieStore {
	store := sessions.NewCookieStore(secret)
	store.MaxAge(int(maxAge.Seconds()))
	store.Options.HttpOnly = true
	store.Options.Secure = secure
	store.Options.SameSite = http.SameSiteLaxMode
	return store
}

// Sessions binds a gorilla session and the logged-in user to each request.
type Sessions struct {
	store  sessions.Store
	name   string
	maxAge int
	secure bool
	users  repository.UserRepository
}

func NewSessions(store sessions.Store, name string, maxAge time.Duration, secure bool, users repository.UserRepository) *Sessions {
	return &Sessions{store: store, name: name, maxAge: int(maxAge.Seconds()), secure: secure, users: users}
}

// Load makes sure the session carries a sid and resolves user_id to a user.
// A user_id pointing at a missing account is dropped.
func (s *Sessions) Load() gin.HandlerFunc {
	return func(c *gin.Context) {
		// a cookie that fails to decode yields a fresh session
		sess, _ := s.store.Get(c.Request, s.name)
		c.Set(ctxSession, sess)

		if sid, _ := sess.Values[keySID].(string); sid == "" {
			sess.Values[keySID] = uuid.NewString()
		}

		if id, ok := sess.Values[keyUserID].(uint); ok {
			u, err := s.users.GetByID(c.Request.Context(), id)
			switch {
			case errors.Is(err, repository.ErrNotFound):
				delete(sess.Values, keyUserID)
			case err != nil:
				obs.Logger.ErrorContext(c.Request.Context(), "load session user",
					"user_id", id, "err", err, "request_id", RequestIDFrom(c))
				c.AbortWithStatus(http.StatusInternalServerError)
				return
			default:
				c.Set(ctxUser, u)
			}
		}
		c.Next()
	}
}

// Login binds user to the session. remember keeps the cookie past the
// browser session.
func (s *Sessions) Login(c *gin.Context, user *models.User, remember bool) {
	sess := session(c)
	if sess == nil {
		return
	}
	sess.Values[keyUserID] = user.ID
	sess.Values[keyRemember] = remember
	c.Set(ctxUser, user)
}

// Logout forgets the user but keeps the sid, so the cart survives.
func (s *Sessions) Logout(c *gin.Context) {
	if sess := session(c); sess != nil {
		delete(sess.Values, keyUserID)
		delete(sess.Values, keyRemember)
	}
	c.Set(ctxUser, (*models.User)(nil))
}

// Save writes the session cookie. It must run before the response body.
func (s *Sessions) Save(c *gin.Context) error {
	sess := session(c)
	if sess == nil {
		return nil
	}
	opts := *s.optionsFor(sess)
	sess.Options = &opts
	return sess.Save(c.Request, c.Writer)
}

func (s *Sessions) optionsFor(sess *sessions.Session) *sessions.Options {
	opts := &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	}
	if remember, _ := sess.Values[keyRemember].(bool); remember {
		opts.MaxAge = s.maxAge
	}
	return opts
}

func session(c *gin.Context) *sessions.Session {
	v, ok := c.Get(ctxSession)
	if !ok {
		return nil
	}
	sess, _ := v.(*sessions.Session)
	return sess
}

// CurrentUser returns the logged-in user or nil.
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(ctxUser)
	if !ok {
		return nil
	}
	u, _ := v.(*models.User)
	return u
}

// SessionID returns the cart key for this browser session.
func SessionID(c *gin.Context) string {
	if sess := session(c); sess != nil {
		sid, _ := sess.Values[keySID].(string)
		return sid
	}
	return ""
}

func AddFlash(c *gin.Context, msg string) {
	if sess := session(c); sess != nil {
		sess.AddFlash(msg)
	}
}

// Flashes pops pending flash messages.
func Flashes(c *gin.Context) []string {
	sess := session(c)
	if sess == nil {
		return nil
	}
	var out []string
	for _, f := range sess.Flashes() {
		if s, ok := f.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
