package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"marketplace/internal/cart"
	"marketplace/internal/middleware"
	"marketplace/internal/models"
	"marketplace/internal/repository"
)

type cartLine struct {
	Product  *models.Product
	Quantity int
	Subtotal decimal.Decimal
}

type cartView struct {
	Lines       []cartLine
	Total       decimal.Decimal
	Unavailable int
}

// priceCart resolves entries against the live catalog. Entries whose product
// is gone are counted, not shown.
func (h *Handler) priceCart(ctx context.Context, snap cart.Snapshot) (cartView, error) {
	v := cartView{Total: decimal.Zero}
	for _, e := range snap.Entries() {
		id, err := strconv.ParseUint(e.ProductID, 10, 64)
		if err != nil || id == 0 {
			v.Unavailable++
			continue
		}
		p, err := h.Products.GetByID(ctx, uint(id))
		if errors.Is(err, repository.ErrNotFound) {
			v.Unavailable++
			continue
		}
		if err != nil {
			return cartView{}, err
		}
		sub := p.Price.Mul(decimal.NewFromInt(int64(e.Quantity)))
		v.Lines = append(v.Lines, cartLine{Product: p, Quantity: e.Quantity, Subtotal: sub})
		v.Total = v.Total.Add(sub)
	}
	return v, nil
}

func (v cartView) data(title string) gin.H {
	return gin.H{"Title": title, "Lines": v.Lines, "Total": v.Total, "Unavailable": v.Unavailable}
}

func (h *Handler) AddToCart(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.notFound(c)
		return
	}
	ctx := c.Request.Context()
	if _, err := h.Products.GetByID(ctx, id); errors.Is(err, repository.ErrNotFound) {
		h.notFound(c)
		return
	} else if err != nil {
		h.fail(c, "load product", err)
		return
	}

	var form AddToCartForm
	if err := c.ShouldBind(&form); err != nil {
		h.flashRedirect(c, "Quantity must be a whole number between 1 and 999.", "/product/"+c.Param("id"))
		return
	}

	sid := middleware.SessionID(c)
	ct, err := h.Carts.Load(ctx, sid)
	if err != nil {
		h.fail(c, "load cart", err)
		return
	}
	if err := ct.Add(strconv.FormatUint(uint64(id), 10), form.Qty()); err != nil {
		if errors.Is(err, cart.ErrInvalidQuantity) {
			h.flashRedirect(c, "That would put too many of this item in your cart.", "/cart")
			return
		}
		h.fail(c, "add to cart", err)
		return
	}
	if err := h.Carts.Save(ctx, sid, ct); err != nil {
		h.fail(c, "save cart", err)
		return
	}
	h.flashRedirect(c, "Added to cart.", "/cart")
}

func (h *Handler) ViewCart(c *gin.Context) {
	ctx := c.Request.Context()
	ct, err := h.Carts.Load(ctx, middleware.SessionID(c))
	if err != nil {
		h.fail(c, "load cart", err)
		return
	}
	v, err := h.priceCart(ctx, ct.Snapshot())
	if err != nil {
		h.fail(c, "price cart", err)
		return
	}
	h.render(c, http.StatusOK, "cart.html", v.data("Cart"))
}
