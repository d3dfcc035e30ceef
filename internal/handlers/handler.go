// Package handlers serves the marketplace pages. Each handler binds its form,
// calls one component and either redirects with a flash or renders a page.
package handlers

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"marketplace/internal/cache"
	"marketplace/internal/cart"
	"marketplace/internal/checkout"
	"marketplace/internal/middleware"
	"marketplace/internal/models"
	"marketplace/internal/obs"
	"marketplace/internal/repository"
	"marketplace/internal/utils"
)

// Materializer turns a cart into an order.
type Materializer interface {
	Materialize(ctx context.Context, buyer *models.User, snap cart.Snapshot) (*checkout.Receipt, error)
}

// Deps are the collaborators a Handler needs. CSRF is required. Locker and
// Throttle are optional; Auditor, Notifier and Logger fall back to log-based versions.
type Deps struct {
	Users        repository.UserRepository
	Products     repository.ProductRepository
	Orders       repository.OrderRepository
	Carts        cart.Store
	Materializer Materializer
	Sessions     *middleware.Sessions
	CSRF         *middleware.CSRF

	Locker   cache.Locker
	LockTTL  time.Duration
	Throttle cache.Throttle

	Auditor  utils.Auditor
	Notifier utils.OrderNotifier
	Logger   *slog.Logger

	// Ping backs /healthz when set.
	Ping func(ctx context.Context) error
}

type Handler struct {
	Deps
}

var errNoCSRF = errors.New("handlers: CSRF protection is not configured")

var (
	validatorsOnce sync.Once
	validatorsErr  error
)

func New(d Deps) (*Handler, error) {
	validatorsOnce.Do(func() { validatorsErr = registerValidators() })
	if validatorsErr != nil {
		return nil, validatorsErr
	}
	if d.CSRF == nil {
		return nil, errNoCSRF
	}
	if d.Logger == nil {
		d.Logger = obs.Logger
	}
	if d.Auditor == nil {
		d.Auditor = utils.NewLogAuditor(d.Logger)
	}
	if d.Notifier == nil {
		d.Notifier = utils.NewLogNotifier(d.Logger)
	}
	if d.LockTTL <= 0 {
		d.LockTTL = 30 * time.Second
	}
	return &Handler{Deps: d}, nil
}

func (h *Handler) audit(c *gin.Context, e utils.AuditEntry) {
	if u := middleware.CurrentUser(c); u != nil && e.UserID == "" {
		e.UserID = strconv.FormatUint(uint64(u.ID), 10)
		e.UserEmail = u.Email
	}
	e.SessionID = middleware.SessionID(c)
	if err := h.Auditor.Record(c.Request.Context(), e); err != nil {
		h.Logger.WarnContext(c.Request.Context(), "audit record failed",
			"action", e.Action, "err", err, "request_id", middleware.RequestIDFrom(c))
	}
}
