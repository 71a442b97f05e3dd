package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"storefront-service/internal/apperr"
	"storefront-service/internal/auth"
	"storefront-service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Services bundles the domain services behind the API
type Services struct {
	Auth      *service.AuthService
	Stores    *service.StoreService
	Products  *service.ProductService
	Customers *service.CustomerService
	Orders    *service.OrderService
	Public    *service.PublicService
}

// ReadinessCheck is a dependency that must answer before the service is
// ready.
type ReadinessCheck struct {
	Name string
	Ping func(ctx context.Context) error
}

// Config carries the HTTP-facing settings
type Config struct {
	Production     bool
	AllowedOrigins []string
	Cookies        auth.Cookies
}

// Handler contains HTTP handlers
type Handler struct {
	svc    Services
	tokens *auth.TokenManager
	cfg    Config
	checks []ReadinessCheck
}

// NewHandler creates a new HTTP handler
func NewHandler(svc Services, tokens *auth.TokenManager, cfg Config, checks ...ReadinessCheck) *Handler {
	return &Handler{svc: svc, tokens: tokens, cfg: cfg, checks: checks}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(errorHandler(h.cfg.Production))
	router.Use(recovery())
	router.Use(prometheusMiddleware())
	router.Use(requestLogger())
	router.Use(corsMiddleware(h.cfg.AllowedOrigins))

	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Storefront API running...")
	})
	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.NoRoute(func(c *gin.Context) {
		h.fail(c, apperr.NotFound("Route "+c.Request.URL.Path+" not found"))
	})

	requireSeller := auth.RequireSeller(h.tokens)
	api := router.Group("/api")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/sendOtp", h.sendOTP)
		authGroup.POST("/verifyOtp", h.verifyOTP)
		authGroup.GET("/me", requireSeller, h.me)
		authGroup.POST("/logout", requireSeller, h.logout)
	}

	stores := api.Group("/store", requireSeller)
	{
		stores.POST("", h.createStore)
		stores.GET("", h.listMyStores)
		stores.GET("/:id", h.getStore)
		stores.PUT("/:id", h.updateStore)
		stores.DELETE("/:id", h.deleteStore)
	}

	products := api.Group("/products")
	{
		products.GET("/store/:storeId", h.listStoreProducts)
		products.GET("/:id", h.getProduct)
		products.POST("", requireSeller, h.createProduct)
		products.PUT("/:id", requireSeller, h.updateProduct)
		products.DELETE("/:id", requireSeller, h.deleteProduct)
	}

	public := api.Group("/public")
	{
		public.GET("/store/:slug", h.getPublicStore)
		public.GET("/store/:slug/products", h.listPublicProducts)
	}

	customers := api.Group("/customers")
	{
		customers.POST("", h.upsertCustomer)
		customers.GET("/store/:storeId", h.listCustomers)
	}

	orders := api.Group("/orders")
	{
		orders.POST("", h.placeOrder)
		orders.GET("/store/:storeId", h.listOrders)
		orders.GET("/status/:status/store/:storeId", h.listOrders)
		orders.GET("/customer/:customerId/store/:storeId", h.listOrders)
		orders.GET("/:id", h.getOrder)
		orders.GET("/:id/events", h.listOrderEvents)
		orders.PUT("/:id/status", h.updateOrderStatus)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck pings every registered dependency
func (h *Handler) readinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	deps := gin.H{}
	for _, check := range h.checks {
		if err := check.Ping(ctx); err != nil {
			status = http.StatusServiceUnavailable
			deps[check.Name] = err.Error()
			continue
		}
		deps[check.Name] = "ok"
	}

	state := "ready"
	if status != http.StatusOK {
		state = "not ready"
	}
	c.JSON(status, gin.H{
		"status":       state,
		"dependencies": deps,
		"time":         time.Now().Unix(),
	})
}

func (h *Handler) fail(c *gin.Context, err error) {
	c.Error(err)
	c.Abort()
}

// bindJSON decodes the body into dst, recording a 400 on failure.
func (h *Handler) bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		h.fail(c, apperr.Wrap(http.StatusBadRequest, "Invalid request body", err))
		return false
	}
	return true
}

// paramID parses a positive integer path parameter.
func (h *Handler) paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		h.fail(c, apperr.BadRequest("Invalid "+name))
		return 0, false
	}
	return id, true
}
