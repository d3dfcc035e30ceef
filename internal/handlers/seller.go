package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"marketplace/internal/middleware"
	"marketplace/internal/repository"
	"marketplace/internal/utils"
)

const (
	MsgOnlySellersAdd = "Only sellers can add products."
	MsgNotSeller      = "Not a seller."
)

func (h *Handler) AddProductPage(c *gin.Context) {
	h.render(c, http.StatusOK, "add_product.html", gin.H{
		"Title": "Add product", "Form": ProductForm{}, "Errors": map[string]string{},
	})
}

func (h *Handler) AddProduct(c *gin.Context) {
	var form ProductForm
	if err := c.ShouldBind(&form); err != nil {
		h.render(c, http.StatusUnprocessableEntity, "add_product.html", gin.H{
			"Title": "Add product", "Form": form, "Errors": fieldErrors(err),
		})
		return
	}

	p, err := form.Product(middleware.CurrentUser(c).ID)
	if err != nil {
		h.fail(c, "build product", err)
		return
	}
	if err := h.Products.Create(c.Request.Context(), p); err != nil {
		h.fail(c, "create product", err)
		return
	}

	e := utils.NewAuditEntry(c, utils.ActionProductCreate, utils.ResourceProduct, strconv.FormatUint(uint64(p.ID), 10))
	e.Detail = p.Title
	h.audit(c, e)

	h.flashRedirect(c, "Product added.", "/seller/dashboard")
}

func (h *Handler) SellerDashboard(c *gin.Context) {
	seller := middleware.CurrentUser(c)
	products, err := h.Products.ListBySeller(c.Request.Context(), seller.ID)
	if err != nil {
		h.fail(c, "list seller products", err)
		return
	}
	h.render(c, http.StatusOK, "seller_dashboard.html", gin.H{"Title": "My products", "Products": products})
}

// DeleteProduct soft-deletes one of the seller's own products. Carts still
// holding it skip it at checkout.
func (h *Handler) DeleteProduct(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.notFound(c)
		return
	}
	seller := middleware.CurrentUser(c)
	err = h.Products.Delete(c.Request.Context(), id, seller.ID)
	if errors.Is(err, repository.ErrNotFound) {
		h.flashRedirect(c, "Product not found.", "/seller/dashboard")
		return
	}
	if err != nil {
		h.fail(c, "delete product", err)
		return
	}

	h.audit(c, utils.NewAuditEntry(c, utils.ActionProductDelete, utils.ResourceProduct, strconv.FormatUint(uint64(id), 10)))
	h.flashRedirect(c, "Product deleted.", "/seller/dashboard")
}
