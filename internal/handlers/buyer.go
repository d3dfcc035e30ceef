package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"marketplace/internal/middleware"
)

func (h *Handler) BuyerDashboard(c *gin.Context) {
	buyer := middleware.CurrentUser(c)
	orders, err := h.Orders.ListByBuyer(c.Request.Context(), buyer.ID)
	if err != nil {
		h.fail(c, "list orders", err)
		return
	}
	h.render(c, http.StatusOK, "buyer_dashboard.html", gin.H{"Title": "My orders", "Orders": orders})
}
