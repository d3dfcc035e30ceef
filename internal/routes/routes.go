// Package routes assembles the gin engine.
package routes

import (
	"html/template"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"marketplace/internal/handlers"
	"marketplace/internal/middleware"
)

// NewRouter builds the engine with the shared middleware, templates and
// every route. corsOrigins may be empty.
func NewRouter(h *handlers.Handler, tmpl *template.Template, corsOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.Logging())
	if len(corsOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     corsOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost},
			AllowHeaders:     []string{"Origin", "Content-Type", "X-Request-Id"},
			ExposeHeaders:    []string{"X-Request-Id"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	r.SetHTMLTemplate(tmpl)
	RegisterRoutes(r, h)
	return r
}

func RegisterRoutes(r *gin.Engine, h *handlers.Handler) {
	s := h.Sessions

	r.GET("/healthz", h.Healthz)
	r.NoRoute(h.Sessions.Load(), h.NoRoute)

	app := r.Group("/", s.Load(), h.CSRF.Protect(h.CSRFFailed))
	app.GET("/", h.Index)
	app.GET("/product/:id", h.ProductDetail)

	// Cart (anonymous allowed, keyed by session id)
	app.POST("/add_to_cart/:id", h.AddToCart)
	app.GET("/cart", h.ViewCart)

	// Auth
	guest := app.Group("/", middleware.RedirectIfAuthenticated(s))
	guest.GET("/register", h.RegisterPage)
	guest.POST("/register", h.Register)
	guest.GET("/login", h.LoginPage)
	if h.Throttle != nil {
		guest.POST("/login", middleware.LoginThrottle(h.Throttle, h.LoginThrottled), h.Login)
	} else {
		guest.POST("/login", h.Login)
	}

	member := app.Group("/", middleware.RequireLogin(s))
	member.GET("/logout", h.Logout)
	member.GET("/buyer/dashboard", h.BuyerDashboard)
	member.GET("/checkout", h.CheckoutPage)
	member.POST("/checkout", h.Checkout)

	// Seller
	member.GET("/seller/add-product", middleware.RequireSeller(s, handlers.MsgOnlySellersAdd), h.AddProductPage)
	member.POST("/seller/add-product", middleware.RequireSeller(s, handlers.MsgOnlySellersAdd), h.AddProduct)
	seller := member.Group("/seller", middleware.RequireSeller(s, handlers.MsgNotSeller))
	seller.GET("/dashboard", h.SellerDashboard)
	seller.POST("/product/:id/delete", h.DeleteProduct)
}
