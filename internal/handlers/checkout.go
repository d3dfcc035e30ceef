package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"marketplace/internal/cache"
	"marketplace/internal/checkout"
	"marketplace/internal/middleware"
	"marketplace/internal/utils"
)

const (
	msgEmptyCart       = "Your cart is empty."
	msgCheckoutRunning = "A checkout is already in progress."
	msgNothingToOrder  = "None of the items in your cart are available anymore."
)

func (h *Handler) CheckoutPage(c *gin.Context) {
	ctx := c.Request.Context()
	ct, err := h.Carts.Load(ctx, middleware.SessionID(c))
	if err != nil {
		h.fail(c, "load cart", err)
		return
	}
	snap := ct.Snapshot()
	if snap.Empty() {
		h.flashRedirect(c, msgEmptyCart, "/")
		return
	}
	v, err := h.priceCart(ctx, snap)
	if err != nil {
		h.fail(c, "price cart", err)
		return
	}
	h.render(c, http.StatusOK, "checkout.html", v.data("Checkout"))
}

// Checkout materializes the session cart into an order and clears the cart
// once the order is committed.
func (h *Handler) Checkout(c *gin.Context) {
	ctx := c.Request.Context()
	sid := middleware.SessionID(c)
	buyer := middleware.CurrentUser(c)

	var form CheckoutForm
	if err := c.ShouldBind(&form); err != nil {
		h.flashRedirect(c, "Please confirm your order.", "/checkout")
		return
	}

	// the cart is read under the lock so a concurrent checkout of the same
	// session cannot materialize a snapshot that was already ordered
	if h.Locker != nil {
		release, err := h.Locker.Acquire(ctx, "checkout:"+sid, h.LockTTL)
		if errors.Is(err, cache.ErrLocked) {
			h.flashRedirect(c, msgCheckoutRunning, "/cart")
			return
		}
		if err != nil {
			h.fail(c, "acquire checkout lock", err)
			return
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				h.Logger.WarnContext(ctx, "release checkout lock", "err", err, "request_id", middleware.RequestIDFrom(c))
			}
		}()
	}

	ct, err := h.Carts.Load(ctx, sid)
	if err != nil {
		h.fail(c, "load cart", err)
		return
	}
	snap := ct.Snapshot()
	if snap.Empty() {
		h.flashRedirect(c, msgEmptyCart, "/")
		return
	}

	rec, err := h.Materializer.Materialize(ctx, buyer, snap)
	switch {
	case errors.Is(err, checkout.ErrEmptyCart):
		h.flashRedirect(c, msgEmptyCart, "/")
		return
	case errors.Is(err, checkout.ErrNothingToOrder):
		h.flashRedirect(c, msgNothingToOrder, "/cart")
		return
	case err != nil:
		h.fail(c, "materialize order", err)
		return
	}

	// the order is committed; a failed clear only leaves a stale cart behind
	if err := h.Carts.Delete(ctx, sid); err != nil {
		h.Logger.ErrorContext(ctx, "clear cart after checkout",
			"order_id", rec.Order.ID, "err", err, "request_id", middleware.RequestIDFrom(c))
	}

	e := utils.NewAuditEntry(c, utils.ActionOrderCreate, utils.ResourceOrder, strconv.FormatUint(uint64(rec.Order.ID), 10))
	e.Detail = fmt.Sprintf("total=%s items=%d skipped=%d", rec.Order.Total.StringFixed(2), len(rec.Order.Items), len(rec.Skipped))
	h.audit(c, e)

	if err := h.Notifier.OrderPlaced(ctx, buyer.Email, rec.Order); err != nil {
		h.Logger.WarnContext(ctx, "order confirmation mail",
			"order_id", rec.Order.ID, "err", err, "request_id", middleware.RequestIDFrom(c))
	}

	middleware.AddFlash(c, "Order placed.")
	if n := len(rec.Skipped); n > 0 {
		middleware.AddFlash(c, fmt.Sprintf("%d item(s) were no longer available and were left out.", n))
	}
	h.redirect(c, "/buyer/dashboard")
}
