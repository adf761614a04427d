package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"storefront-backend/internal/cache"
	"storefront-backend/internal/cart"
	"storefront-backend/internal/checkout"
	"storefront-backend/internal/config"
	"storefront-backend/internal/database"
	"storefront-backend/internal/events"
	"storefront-backend/internal/handlers"
	"storefront-backend/internal/logger"
	"storefront-backend/internal/middleware"
	"storefront-backend/internal/orders"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel, cfg.Development)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(ctx, cfg.DatabaseURL, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if err := database.Migrate(cfg.DatabaseURL, log); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Without Redis, carts live only in this process.
	var persister cart.Persister
	if cfg.RedisURL != "" {
		client, err := cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer client.Close()
		persister = cache.NewRedisCartCache(client, cfg.SessionMaxAge)
		log.Info().Msg("cart snapshots persisted to redis")
	}

	// Without RabbitMQ, orders are stored but no event is published.
	var publisher orders.EventPublisher
	if cfg.RabbitMQURL != "" {
		conn, err := events.Dial(cfg.RabbitMQURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to rabbitmq")
		}
		defer conn.Close()

		pub, err := events.NewPublisher(conn)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open event publisher")
		}
		defer pub.Close()
		publisher = pub
		log.Info().Str("exchange", events.EventsExchange).Msg("order events enabled")
	}

	carts := cart.NewRegistry(persister, log)
	// Carts idle past the cookie lifetime can no longer be reached.
	go carts.RunJanitor(ctx, cfg.SessionMaxAge)

	router := newRouter(cfg, log, deps{
		users:    database.NewUserQueries(db),
		profiles: database.NewProfileQueries(db),
		orders:   database.NewOrderQueries(db),
		settings: database.NewSettingsQueries(db),
		carts:    carts,
		placer:   orders.NewService(database.NewOrderQueries(db), publisher, cfg.PlacementDelay, log),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("server stopped")
}

type deps struct {
	users    *database.UserQueries
	profiles *database.ProfileQueries
	orders   *database.OrderQueries
	settings *database.SettingsQueries
	carts    *cart.Registry
	placer   checkout.Placer
}

func newRouter(cfg *config.Config, log zerolog.Logger, d deps) *gin.Engine {
	if !cfg.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.TrustedProxyHeaders())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.HealthCheck("/health"))

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	sessionStore := middleware.NewSessionStore(cfg.SessionSecret, cfg.SessionMaxAge, !cfg.Development)
	r.Use(middleware.SessionMiddleware(sessionStore))
	r.Use(middleware.MaintenanceMiddleware(d.settings, cfg.JWTSecret, log))

	fallback := checkout.ShippingPolicy{Threshold: cfg.FreeShippingThreshold, Fee: cfg.ShippingFee}

	authHandler := handlers.NewAuthHandler(d.users, d.profiles, cfg.JWTSecret, log)
	profileHandler := handlers.NewProfileHandler(d.profiles)
	cartHandler := handlers.NewCartHandler(d.carts, d.settings, log)
	checkoutHandler := handlers.NewCheckoutHandler(d.carts, d.placer, d.settings, d.profiles, fallback, log)
	d.carts.OnEvict(checkoutHandler.Forget)
	orderHandler := handlers.NewOrderHandler(d.orders, log)
	adminHandler := handlers.NewAdminHandler(d.orders, d.settings, log)

	optionalAuth := middleware.OptionalAuthMiddleware(cfg.JWTSecret)

	r.GET("/api/maintenance-status", adminHandler.GetMaintenanceStatus)

	// Cart routes (public but require session)
	cartRoutes := r.Group("/api/cart")
	{
		cartRoutes.GET("", cartHandler.GetCart)
		cartRoutes.GET("/count", cartHandler.GetCartCount)
		cartRoutes.POST("/add", cartHandler.AddToCart)
		cartRoutes.PUT("/update/:id", cartHandler.UpdateCartItem)
		cartRoutes.DELETE("/remove/:id", cartHandler.RemoveFromCart)
		cartRoutes.POST("/clear", cartHandler.ClearCart)
		cartRoutes.POST("/toggle", cartHandler.ToggleCart)
		cartRoutes.POST("/close", cartHandler.CloseCart)
		cartRoutes.POST("/validate-hash", cartHandler.ValidateCatalogHash)
	}

	checkoutRoutes := r.Group("/api/checkout")
	checkoutRoutes.Use(optionalAuth)
	{
		checkoutRoutes.GET("", checkoutHandler.GetCheckout)
		checkoutRoutes.PATCH("/fields", checkoutHandler.UpdateFields)
		checkoutRoutes.POST("/validate", checkoutHandler.ValidateCheckout)
		checkoutRoutes.POST("/submit", checkoutHandler.SubmitOrder)
		checkoutRoutes.GET("/quote", checkoutHandler.GetQuote)
	}

	authRoutes := r.Group("/api/auth")
	{
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/login", authHandler.Login)
		authRoutes.POST("/refresh", authHandler.RefreshToken)
		authRoutes.GET("/profile", middleware.AuthMiddleware(cfg.JWTSecret), authHandler.Profile)
	}

	profileRoutes := r.Group("/api/profile")
	profileRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	{
		profileRoutes.GET("", profileHandler.GetProfile)
		profileRoutes.PUT("", profileHandler.UpdateProfile)
	}

	orderRoutes := r.Group("/api/orders")
	orderRoutes.Use(optionalAuth)
	{
		orderRoutes.GET("", orderHandler.GetUserOrders)
		orderRoutes.GET("/:id", orderHandler.GetOrder)
	}

	admin := r.Group("/api/admin")
	admin.Use(middleware.AdminMiddleware(cfg.JWTSecret))
	{
		admin.GET("/orders", adminHandler.ListOrders)
		admin.PUT("/orders/:id/status", adminHandler.UpdateOrderStatus)
		admin.GET("/settings", adminHandler.GetSettings)
		admin.PUT("/settings/:key", adminHandler.UpdateSetting)
		admin.POST("/catalog/bump", adminHandler.BumpCatalogHash)
	}

	return r
}
