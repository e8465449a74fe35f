package gateway

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/example/shopfront/docs"
	"github.com/example/shopfront/pkg/config"
	"github.com/example/shopfront/pkg/metrics"
	"github.com/example/shopfront/pkg/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// Pinger is a dependency reported by /health.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Options struct {
	// Tokens verifies bearer tokens. Required when auth is enabled.
	Tokens TokenParser
	Checks map[string]Pinger
}

type Gateway struct {
	config   *config.Config
	logger   *zap.Logger
	router   *gin.Engine
	server   *http.Server
	services *service.Services
	tokens   TokenParser
	checks   map[string]Pinger
}

func NewGateway(cfg *config.Config, logger *zap.Logger, services *service.Services, opts Options) *Gateway {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestIDMiddleware())
	router.Use(loggerMiddleware(logger))
	router.Use(metrics.Middleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.HTTP.CORSOrigins,
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", requestIDHeader},
		ExposeHeaders: []string{"Content-Length", requestIDHeader},
		MaxAge:        12 * time.Hour,
	}))

	docs.SwaggerInfo.BasePath = cfg.HTTP.BaseURL

	return &Gateway{
		config:   cfg,
		logger:   logger.Named("gateway"),
		router:   router,
		services: services,
		tokens:   opts.Tokens,
		checks:   opts.Checks,
	}
}

func (g *Gateway) SetupRoutes() {
	g.router.GET("/health", g.health)
	g.router.GET("/metrics", metrics.Handler())
	g.router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := g.router.Group(g.config.HTTP.BaseURL)

	// Public routes
	{
		api.POST("/users/auth/signup", g.signUp)
		api.POST("/users/auth/login", g.signIn)
		api.GET("/products", g.listProducts)
		api.GET("/products/:id", g.getProduct)
	}

	protected := api.Group("")
	if g.config.Auth.Enabled {
		protected.Use(requireAuth(g.tokens))
	}

	users := protected.Group("/users")
	{
		users.GET("", g.listUsers)
		users.GET("/:id", g.getUser)
		users.PUT("/:id", g.updateUser)
		users.DELETE("/:id", g.deleteUser)
		users.GET("/:id/orders", g.userOrders)
	}

	products := protected.Group("/products")
	{
		products.POST("", g.createProduct)
		products.PUT("/:id", g.updateProduct)
		products.DELETE("/:id", g.deleteProduct)
	}

	cart := protected.Group("/cart")
	{
		cart.GET("", g.listCarts)
		cart.POST("/add", g.addToCart)
		cart.PUT("/update", g.updateCartItem)
		cart.DELETE("/remove", g.removeFromCart)
		cart.GET("/cartId/:cartId", g.getCart)
		cart.POST("/:userId", g.createCart)
		cart.GET("/:userId", g.getUserCart)
		cart.DELETE("/:cartId", g.deleteCart)
	}

	orders := protected.Group("/orders")
	{
		orders.POST("", g.createOrder)
		orders.GET("", g.listOrders)
		orders.POST("/apply-coupon", g.applyCoupon)
		orders.GET("/:orderId", g.getOrder)
		orders.PUT("/:orderId/status", g.updateOrderStatus)
	}

	coupons := protected.Group("/coupons")
	{
		coupons.POST("", g.createCoupon)
		coupons.GET("", g.listCoupons)
	}
}

func (g *Gateway) Handler() http.Handler {
	return g.router
}

func (g *Gateway) Start() error {
	addr := g.config.HTTP.Addr(g.config.Server.Host)
	g.server = &http.Server{
		Addr:              addr,
		Handler:           g.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.logger.Info("Gateway starting", zap.String("address", addr), zap.String("base_url", g.config.HTTP.BaseURL))
	if err := g.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (g *Gateway) Shutdown(ctx context.Context) error {
	if g.server == nil {
		return nil
	}
	return g.server.Shutdown(ctx)
}

// health godoc
// @Summary  Liveness and dependency check
// @Tags     ops
// @Produce  json
// @Success  200 {object} Response
// @Failure  503 {object} Response
// @Router   /health [get]
func (g *Gateway) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := make(map[string]string, len(g.checks))
	healthy := true
	for name, p := range g.checks {
		if err := p.Ping(ctx); err != nil {
			g.logger.Warn("Health check failed", zap.String("check", name), zap.Error(err))
			checks[name] = "down"
			healthy = false
			continue
		}
		checks[name] = "up"
	}

	if !healthy {
		respond(c, http.StatusServiceUnavailable, "unhealthy", checks)
		return
	}
	respond(c, http.StatusOK, "ok", checks)
}
