package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/polkiloo/veo3store/internal/config"
	"github.com/polkiloo/veo3store/internal/metrics"
	"github.com/polkiloo/veo3store/internal/server/http/dto"
	"github.com/polkiloo/veo3store/internal/server/http/handlers"
	"github.com/polkiloo/veo3store/internal/server/http/middleware"
)

// Params lists router dependencies.
type Params struct {
	fx.In

	Facade  handlers.StoreFacade
	Metrics *metrics.Metrics
	Config  *config.Config
	Logger  *slog.Logger
}

// Setup configures gin router with handlers and middleware.
func Setup(p Params) (*gin.Engine, error) {
	if err := dto.RegisterValidators(); err != nil {
		return nil, err
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(middleware.RequestLogger(p.Logger))
	engine.Use(middleware.Metrics(p.Metrics))
	engine.Use(middleware.DecompressRequest())
	engine.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	engine.GET("/metrics", gin.WrapH(p.Metrics.Handler()))

	authHandler := handlers.NewAuthHandler(p.Facade, p.Config.TokenTTL)
	catalogHandler := handlers.NewCatalogHandler(p.Facade)
	orderHandler := handlers.NewOrderHandler(p.Facade)
	adminHandler := handlers.NewAdminHandler(p.Facade)
	healthHandler := handlers.NewHealthHandler(p.Facade)

	limiter := middleware.NewRateLimiter(p.Config.AuthRateLimit, p.Config.AuthRateBurst, p.Logger)
	authenticated := middleware.AuthRequired(p.Facade)

	api := engine.Group("/api")
	api.GET("/health", healthHandler.Check)

	auth := api.Group("/auth")
	auth.POST("/register", limiter.Handler(), authHandler.Register)
	auth.POST("/login", limiter.Handler(), authHandler.Login)
	authSession := auth.Group("", authenticated)
	authSession.POST("/logout", authHandler.Logout)
	authSession.GET("/me", authHandler.Me)
	authSession.GET("/session/status", authHandler.SessionStatus)

	api.GET("/packages", catalogHandler.List)
	api.GET("/packages/:id", catalogHandler.Get)

	orders := api.Group("/orders", authenticated)
	orders.POST("", orderHandler.Create)
	orders.GET("/:id", orderHandler.Get)
	orders.POST("/:id/confirm", orderHandler.Confirm)
	orders.GET("/:id/status", orderHandler.Status)

	api.GET("/users/orders", authenticated, orderHandler.ListMine)

	admin := api.Group("/admin", authenticated, middleware.AdminOnly())
	admin.GET("/orders", adminHandler.List)
	admin.GET("/orders/:id", adminHandler.Get)
	admin.PUT("/orders/:id/approve", adminHandler.Approve)
	admin.PUT("/orders/:id/reject", adminHandler.Reject)
	admin.GET("/dashboard", adminHandler.Dashboard)

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.Envelope{
			Success:   false,
			Error:     &dto.ErrorBody{Code: "NOT_FOUND", Message: "route not found"},
			Timestamp: time.Now().UTC(),
		})
	})

	return engine, nil
}
