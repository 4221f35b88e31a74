package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	_ "github.com/example/rentalshop/docs"
	"github.com/example/rentalshop/pkg/auth"
	"github.com/example/rentalshop/pkg/cart"
	"github.com/example/rentalshop/pkg/catalog"
	"github.com/example/rentalshop/pkg/config"
	"github.com/example/rentalshop/pkg/orders"
	"github.com/example/rentalshop/pkg/repository"
	"github.com/example/rentalshop/pkg/stats"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// AuditReader looks up audit entries for an entity.
type AuditReader interface {
	GetAuditLogs(ctx context.Context, entityID string, limit int64) ([]*repository.AuditLog, error)
}

// RateCounter counts hits per key inside a fixed window.
type RateCounter interface {
	IncrWindow(ctx context.Context, key string, window time.Duration) (int64, error)
}

// Services are the backends the gateway routes to. Audit, Limiter and
// Health are optional.
type Services struct {
	Cart    *cart.Store
	Orders  *orders.Manager
	Catalog *catalog.Service
	Auth    *auth.Service
	Stats   *stats.Service
	Audit   AuditReader
	Limiter RateCounter
	Health  func(ctx context.Context) error
}

type Gateway struct {
	config   *config.Config
	services Services
	logger   *zap.Logger
	router   *gin.Engine
	server   *http.Server
}

func NewGateway(cfg *config.Config, logger *zap.Logger, services Services) *Gateway {
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(loggerMiddleware(logger))
	router.Use(cors.New(corsConfig(cfg.CORS)))

	g := &Gateway{
		config:   cfg,
		services: services,
		logger:   logger,
		router:   router,
		server: &http.Server{
			Addr:              fmt.Sprintf("%s:%d", cfg.Gateway.Host, cfg.Gateway.Port),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
	if cfg.RateLimit.Enabled && services.Limiter != nil {
		router.Use(g.rateLimitMiddleware())
	}
	return g
}

// corsConfig allows credentials, and with them the guest session cookie, only
// for explicitly listed origins. A "*" entry allows every origin without
// credentials.
func corsConfig(cfg config.CORSConfig) cors.Config {
	c := cors.Config{
		AllowMethods:  cfg.AllowMethods,
		AllowHeaders:  cfg.AllowHeaders,
		ExposeHeaders: []string{"Content-Disposition"},
		MaxAge:        cfg.MaxAge,
	}
	for _, origin := range cfg.AllowOrigins {
		if origin == "*" {
			c.AllowAllOrigins = true
			return c
		}
	}
	c.AllowOrigins = cfg.AllowOrigins
	c.AllowCredentials = true
	return c
}

func (g *Gateway) SetupRoutes() {
	g.router.GET("/health", g.health)

	cartRoutes := g.router.Group("/cart", g.identityMiddleware())
	{
		cartRoutes.POST("", g.addToCart)
		cartRoutes.GET("", g.getCart)
		cartRoutes.PUT("/:id", g.updateCartItem)
		cartRoutes.DELETE("/:id", g.removeCartItem)
	}

	orderRoutes := g.router.Group("/orders")
	{
		orderRoutes.POST("", g.identityMiddleware(), g.placeOrder)
		orderRoutes.GET("/my-orders", g.identityMiddleware(), g.myOrders)
		orderRoutes.GET("", g.requireAdmin(), g.allOrders)
		orderRoutes.GET("/user/:userId", g.requireAdmin(), g.ordersByUser)
		orderRoutes.PUT("/:id", g.requireAdmin(), g.updateOrderStatus)
	}

	products := g.router.Group("/products")
	{
		products.GET("", g.listProducts)
		products.GET("/deleted", g.requireAdmin(), g.deletedProducts)
		products.GET("/export", g.requireAdmin(), g.exportProducts)
		products.GET("/:id", g.getProduct)
		products.POST("", g.requireAdmin(), g.createProduct)
		products.PUT("/:id", g.requireAdmin(), g.updateProduct)
		products.PUT("/:id/restore", g.requireAdmin(), g.restoreProduct)
		products.DELETE("/:id", g.requireAdmin(), g.deleteProduct)
	}

	categories := g.router.Group("/categories")
	{
		categories.GET("", g.listCategories)
		categories.GET("/:id", g.getCategory)
		categories.POST("", g.requireAdmin(), g.createCategory)
		categories.PUT("/:id", g.requireAdmin(), g.updateCategory)
		categories.DELETE("/:id", g.requireAdmin(), g.deleteCategory)
	}

	pages := g.router.Group("/pages")
	{
		pages.GET("", g.requireAdmin(), g.listPages)
		pages.GET("/:pageName", g.getPage)
		pages.PUT("/:pageName", g.requireAdmin(), g.savePage)
		pages.DELETE("/:pageName", g.requireAdmin(), g.deletePage)
	}

	authRoutes := g.router.Group("/auth")
	{
		authRoutes.POST("/register", g.register)
		authRoutes.POST("/login", g.login)
		authRoutes.GET("/me", g.requireUser(), g.me)
		authRoutes.PUT("/profile", g.requireUser(), g.updateProfile)
		authRoutes.PUT("/password", g.requireUser(), g.changePassword)
	}

	admin := g.router.Group("/admin", g.requireAdmin())
	{
		admin.GET("/stats", g.adminStats)
		admin.GET("/cart", g.adminCart)
		admin.GET("/users", g.adminUsers)
		admin.GET("/audit/:entityId", g.adminAudit)
	}

	// Swagger
	g.router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

// Handler exposes the router, mainly for tests.
func (g *Gateway) Handler() http.Handler {
	return g.router
}

// Start serves until Shutdown is called. A Shutdown that runs first makes
// Start return immediately.
func (g *Gateway) Start() error {
	g.logger.Info("Gateway starting", zap.String("address", g.server.Addr))
	if err := g.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (g *Gateway) Shutdown(ctx context.Context) error {
	return g.server.Shutdown(ctx)
}

func (g *Gateway) health(c *gin.Context) {
	if g.services.Health != nil {
		if err := g.services.Health(c.Request.Context()); err != nil {
			g.logger.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
