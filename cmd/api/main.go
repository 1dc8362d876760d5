package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/daffodils/florist-api/internal/config"
	"github.com/daffodils/florist-api/internal/handler"
	"github.com/daffodils/florist-api/internal/mailer"
	"github.com/daffodils/florist-api/internal/middleware"
	"github.com/daffodils/florist-api/internal/model"
	"github.com/daffodils/florist-api/internal/repository"
	"github.com/daffodils/florist-api/internal/service"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		log.Error("load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		dbPool      *pgxpool.Pool
		redisClient *redis.Client

		productRepo repository.ProductRepository
		orderRepo   repository.OrderRepository
		adminRepo   repository.AdminRepository
		contactRepo repository.ContactRepository
		txm         repository.TxManager
	)

	if cfg.DemoMode {
		store := repository.NewMemoryStore()
		productRepo = store
		orderRepo = store.Orders()
		adminRepo = store.Admins()
		contactRepo = store.Contacts()
		txm = store
		log.Info("running in demo mode with in-memory store")
	} else {
		// PostgreSQL
		poolCfg, err := pgxpool.ParseConfig(cfg.DB.URL)
		if err != nil {
			log.Error("parse db config", "error", err)
			os.Exit(1)
		}
		poolCfg.MaxConns = cfg.DB.MaxConns

		dbPool, err = pgxpool.NewWithConfig(ctx, poolCfg)
		if err != nil {
			log.Error("connect to database", "error", err)
			os.Exit(1)
		}
		defer dbPool.Close()

		if err := dbPool.Ping(ctx); err != nil {
			log.Error("ping database", "error", err)
			os.Exit(1)
		}
		log.Info("connected to PostgreSQL")

		// Redis
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Error("connect to Redis", "error", err)
			os.Exit(1)
		}
		log.Info("connected to Redis")

		productRepo = repository.NewProductRepository(dbPool)
		orderRepo = repository.NewOrderRepository(dbPool)
		adminRepo = repository.NewAdminRepository(dbPool)
		contactRepo = repository.NewContactRepository(dbPool)
		txm = repository.NewTxManager(dbPool)
	}

	mail := mailer.New(cfg.Email, log)

	// Services
	authSvc := service.NewAuthService(adminRepo, cfg.JWT, log)
	productSvc := service.NewProductService(productRepo, redisClient, log)
	orderSvc := service.NewOrderService(orderRepo, productRepo, txm, log, cfg.Orders.StrictStatusFlow)
	contactSvc := service.NewContactService(contactRepo, mail, log)
	statsSvc := service.NewStatsService(orderRepo, productRepo)

	if err := authSvc.EnsureDefaultAdmin(ctx, cfg.Admin); err != nil {
		log.Error("seed default admin", "error", err)
		os.Exit(1)
	}

	// Handlers
	authH := handler.NewAuthHandler(authSvc)
	productH := handler.NewProductHandler(productSvc)
	orderH := handler.NewOrderHandler(orderSvc, statsSvc)
	contactH := handler.NewContactHandler(contactSvc)
	adminH := handler.NewAdminHandler(statsSvc)
	healthH := handler.NewHealthHandler(dbPool, redisClient)

	// Router
	router := gin.Default()
	router.Use(middleware.CORS(cfg.Server.FrontendURL))
	router.Use(middleware.Timeout(cfg.Server))

	router.GET("/healthz", healthH.Healthz)
	router.GET("/readyz", healthH.Readyz)

	auth := middleware.Auth(cfg.JWT.Secret, adminRepo)

	api := router.Group("/api")
	{
		products := api.Group("/products")
		products.GET("", productH.List)
		products.GET("/:id", productH.Get)
		products.POST("", auth, middleware.RequirePermission(model.ResourceProducts, model.ActionCreate), productH.Create)
		products.PUT("/:id", auth, middleware.RequirePermission(model.ResourceProducts, model.ActionUpdate), productH.Update)
		products.DELETE("/:id", auth, middleware.RequirePermission(model.ResourceProducts, model.ActionDelete), productH.Delete)

		orders := api.Group("/orders")
		orders.POST("", orderH.Create)
		orders.GET("", auth, middleware.RequirePermission(model.ResourceOrders, model.ActionRead), orderH.List)
		orders.GET("/admin/stats", auth, middleware.RequirePermission(model.ResourceOrders, model.ActionRead), orderH.Stats)
		orders.GET("/:id", auth, middleware.RequirePermission(model.ResourceOrders, model.ActionRead), orderH.Get)
		orders.PATCH("/:id/status", auth, middleware.RequirePermission(model.ResourceOrders, model.ActionUpdate), orderH.UpdateStatus)
		orders.PATCH("/:id/payment", auth, middleware.RequirePermission(model.ResourceOrders, model.ActionUpdate), orderH.UpdatePaymentStatus)
		orders.DELETE("/:id", auth, middleware.RequirePermission(model.ResourceOrders, model.ActionDelete), orderH.Delete)

		authRoutes := api.Group("/auth/admin")
		authRoutes.POST("/login", authH.Login)
		authRoutes.GET("/me", auth, authH.Me)
		authRoutes.POST("/logout", auth, authH.Logout)

		contact := api.Group("/contact")
		contact.POST("/submit", contactH.Submit)
		contact.GET("", auth, middleware.RequirePermission(model.ResourceContacts, model.ActionRead), contactH.List)
		contact.PATCH("/:id", auth, middleware.RequirePermission(model.ResourceContacts, model.ActionUpdate), contactH.UpdateStatus)
		contact.DELETE("/:id", auth, middleware.RequirePermission(model.ResourceContacts, model.ActionDelete), contactH.Delete)

		api.GET("/admin/dashboard", auth, adminH.Dashboard)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("starting HTTP server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", "error", err)
	}
	log.Info("server stopped")
}
