// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/checkout"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/domain/shipping"
	"github.com/your-org/storefront-backend/internal/domain/voucher"
	redisstore "github.com/your-org/storefront-backend/internal/infrastructure/database/redis"
	"github.com/your-org/storefront-backend/internal/interfaces/http/handlers"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
	"github.com/your-org/storefront-backend/internal/pkg/pdf"
	"gorm.io/gorm"
)

// Handlers groups every API handler
type Handlers struct {
	Product  *handlers.ProductHandler
	Cart     *handlers.CartHandler
	Voucher  *handlers.VoucherHandler
	Checkout *handlers.CheckoutHandler
	Order    *handlers.OrderHandler
	Invoice  *handlers.InvoiceHandler
}

// NewHandlers wires services over Postgres and the Redis session store
func NewHandlers(db *gorm.DB, redisClient *redis.Client, cfg *config.Config, logger *logrus.Logger) *Handlers {
	catalog := product.NewService(db)
	estimator := shipping.NewEstimator(cfg.Shop)
	carts := handlers.NewCarts(redisstore.NewSessionStore(redisClient, cfg.Shop.CartTTL), catalog)

	voucherService := voucher.NewService(
		voucher.NewFallbackStore(voucher.NewGormStore(db), voucher.NewMemoryStore(voucher.DefaultVouchers()...)),
		logger,
	)
	checkoutService := checkout.NewService(checkout.NewGormStore(db), estimator, cfg.Shop, logger)
	orderService := order.NewService(db, logger)

	return &Handlers{
		Product:  handlers.NewProductHandler(catalog, product.NewCategoryService(db), logger),
		Cart:     handlers.NewCartHandler(carts, catalog, estimator, logger),
		Voucher:  handlers.NewVoucherHandler(carts, voucherService, estimator, logger),
		Checkout: handlers.NewCheckoutHandler(carts, checkoutService, estimator, logger),
		Order:    handlers.NewOrderHandler(orderService, logger),
		Invoice:  handlers.NewInvoiceHandler(orderService, pdf.NewService(cfg.Company), logger),
	}
}

// SetupProductRoutes sets up catalog routes
func SetupProductRoutes(rg *gin.RouterGroup, h *handlers.ProductHandler) {
	rg.GET("/products", h.GetProducts)
	rg.GET("/products/:id", h.GetProduct)
	rg.GET("/categories", h.GetCategories)
	rg.GET("/categories/:slug", h.GetCategory)
}

// SetupCartRoutes sets up session cart and voucher routes
func SetupCartRoutes(rg *gin.RouterGroup, h *handlers.CartHandler, vh *handlers.VoucherHandler) {
	cartGroup := rg.Group("/cart")
	{
		cartGroup.GET("", h.GetCart)
		cartGroup.DELETE("", h.ClearCart)
		cartGroup.POST("/items", h.AddToCart)
		cartGroup.PUT("/items/:id", h.UpdateCartItem)
		cartGroup.DELETE("/items/:id", h.RemoveFromCart)

		cartGroup.POST("/voucher", vh.ApplyVoucher)
		cartGroup.DELETE("/voucher", vh.RemoveVoucher)
	}
}

// SetupCheckoutRoutes sets up checkout routes
func SetupCheckoutRoutes(rg *gin.RouterGroup, h *handlers.CheckoutHandler) {
	checkoutGroup := rg.Group("/checkout")
	{
		checkoutGroup.GET("/shipping-methods", h.GetShippingMethods)
		checkoutGroup.POST("", h.Checkout)
	}
}

// SetupOrderRoutes sets up guest order lookup routes
func SetupOrderRoutes(rg *gin.RouterGroup, h *handlers.OrderHandler, ih *handlers.InvoiceHandler) {
	orders := rg.Group("/orders")
	{
		orders.GET("/:number", h.GetOrderByNumber)
		orders.GET("/:number/invoice", ih.GenerateInvoice)
		orders.GET("/:number/invoice/data", ih.GetInvoiceData)
	}
}

// SetupRoutes registers every API route. Cart and checkout routes run
// inside a guest session.
func SetupRoutes(rg *gin.RouterGroup, h *Handlers, cfg *config.Config) {
	SetupProductRoutes(rg, h.Product)
	SetupOrderRoutes(rg, h.Order, h.Invoice)

	session := rg.Group("")
	session.Use(middleware.Session(cfg))
	SetupCartRoutes(session, h.Cart, h.Voucher)
	SetupCheckoutRoutes(session, h.Checkout)
}
