package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"marketplace/internal/repository"
)

// Index lists every live product.
func (h *Handler) Index(c *gin.Context) {
	products, err := h.Products.ListAll(c.Request.Context())
	if err != nil {
		h.fail(c, "list products", err)
		return
	}
	h.render(c, http.StatusOK, "index.html", gin.H{"Products": products})
}

func (h *Handler) ProductDetail(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.notFound(c)
		return
	}
	ctx := c.Request.Context()
	p, err := h.Products.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		h.notFound(c)
		return
	}
	if err != nil {
		h.fail(c, "load product", err)
		return
	}
	if seller, err := h.Users.GetByID(ctx, p.SellerID); err == nil {
		p.Seller = seller
	}
	h.render(c, http.StatusOK, "product_detail.html", gin.H{"Title": p.Title, "Product": p})
}
