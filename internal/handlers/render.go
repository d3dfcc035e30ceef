package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"marketplace/internal/middleware"
)

// render adds the layout data, writes the session cookie and renders name.
func (h *Handler) render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["User"] = middleware.CurrentUser(c)
	data["Flashes"] = middleware.Flashes(c)
	data["CartCount"] = h.cartCount(c)
	data["CSRFToken"] = middleware.CSRFToken(c)

	h.saveSession(c)
	c.HTML(status, name, data)
}

// redirect answers POSTs with 303 and everything else with 302.
func (h *Handler) redirect(c *gin.Context, to string) {
	h.saveSession(c)
	status := http.StatusFound
	if c.Request.Method == http.MethodPost {
		status = http.StatusSeeOther
	}
	c.Redirect(status, to)
}

func (h *Handler) flashRedirect(c *gin.Context, msg, to string) {
	middleware.AddFlash(c, msg)
	h.redirect(c, to)
}

func (h *Handler) saveSession(c *gin.Context) {
	if err := h.Sessions.Save(c); err != nil {
		h.Logger.ErrorContext(c.Request.Context(), "save session",
			"err", err, "request_id", middleware.RequestIDFrom(c))
	}
}

func (h *Handler) cartCount(c *gin.Context) int {
	sid := middleware.SessionID(c)
	if sid == "" {
		return 0
	}
	ct, err := h.Carts.Load(c.Request.Context(), sid)
	if err != nil {
		h.Logger.WarnContext(c.Request.Context(), "load cart for header",
			"err", err, "request_id", middleware.RequestIDFrom(c))
		return 0
	}
	return ct.Count()
}

func (h *Handler) notFound(c *gin.Context) {
	h.render(c, http.StatusNotFound, "error.html", gin.H{
		"Title":   "Not found",
		"Heading": "Not found",
		"Message": "The page you asked for does not exist.",
	})
}

// fail logs a persistence error and renders the 500 page.
func (h *Handler) fail(c *gin.Context, msg string, err error) {
	reqID := middleware.RequestIDFrom(c)
	h.Logger.ErrorContext(c.Request.Context(), msg,
		"err", err, "path", c.Request.URL.Path, "request_id", reqID)
	h.render(c, http.StatusInternalServerError, "error.html", gin.H{
		"Title":     "Error",
		"Heading":   "Something went wrong",
		"Message":   "We could not complete your request. Please try again.",
		"RequestID": reqID,
	})
}

var errBadID = errors.New("invalid id")

func parseID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, errBadID
	}
	return uint(id), nil
}

// CSRFFailed rejects a form post whose token is missing or stale.
func (h *Handler) CSRFFailed(c *gin.Context) {
	h.Logger.WarnContext(c.Request.Context(), "csrf rejected",
		"path", c.Request.URL.Path, "reason", middleware.CSRFFailure(c), "request_id", middleware.RequestIDFrom(c))
	h.render(c, http.StatusForbidden, "error.html", gin.H{
		"Title":   "Forbidden",
		"Heading": "Form expired",
		"Message": "The form has expired or was not sent from this site. Reload the page and try again.",
	})
}

// NoRoute renders the 404 page for unknown paths.
func (h *Handler) NoRoute(c *gin.Context) { h.notFound(c) }
