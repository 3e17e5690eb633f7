package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/interacaodigitall-rgb/juridico/config"
	"github.com/interacaodigitall-rgb/juridico/handler"
	"github.com/interacaodigitall-rgb/juridico/middleware"
	"github.com/interacaodigitall-rgb/juridico/pkg/logger"
	"github.com/interacaodigitall-rgb/juridico/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.Init(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	slog.Info("configuration loaded successfully")

	// Open database and provision schema
	db, err := service.OpenDB(&cfg.DB)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	if err := service.AutoMigrate(db); err != nil {
		slog.Error("failed to migrate database schema", "error", err)
		os.Exit(1)
	}

	// Initialize services
	archiveSvc, err := service.NewArchiveService(&cfg.Minio)
	if err != nil {
		slog.Error("failed to initialize archive service", "error", err)
		os.Exit(1)
	}
	if err := archiveSvc.EnsureBucket(context.Background()); err != nil {
		slog.Error("failed to ensure archive bucket", "error", err)
		os.Exit(1)
	}

	compositorSvc := service.NewCompositorService(&cfg.Compositor)
	contractStore := service.NewContractStore(db)
	requestStore := service.NewSignatureRequestStore(db, &cfg.Signing)

	// Sweep expired signature requests in the background
	purgeCtx, stopPurge := context.WithCancel(context.Background())
	defer stopPurge()
	go purgeLoop(purgeCtx, requestStore)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(cfg)
	contractHandler := handler.NewContractHandler(contractStore, requestStore, compositorSvc, archiveSvc)
	requestHandler := handler.NewRequestHandler(requestStore, &cfg.Signing)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.Use(middleware.RequestID())                 // Request ID for tracing
	router.Use(middleware.Recovery())                  // Panic recovery
	router.Use(middleware.RequestLogger())             // Access logging
	router.Use(corsMiddleware())                       // CORS
	router.Use(middleware.RateLimit(100, time.Minute)) // Rate limiting: 100 requests per minute

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	// Public routes. The anonymous signing surface gets its own, tighter
	// rate limit since tokens are guessable in principle.
	api := router.Group("/api")
	{
		api.POST("/auth/login", authHandler.Login)

		signing := api.Group("/requests")
		signing.Use(middleware.RateLimit(20, time.Minute))
		{
			signing.GET("/:token", requestHandler.Get)
			signing.POST("/:token/signatures", requestHandler.Sign)
			signing.GET("/:token/events", requestHandler.Events)
		}
	}

	// Protected routes
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(&cfg.Auth))
	{
		protected.GET("/auth/me", authHandler.GetCurrentUser)

		protected.GET("/contracts", contractHandler.List)
		protected.GET("/contracts/:id", contractHandler.Get)
		protected.GET("/contracts/:id/roles", contractHandler.Roles)
		protected.POST("/contracts/:id/signatures", contractHandler.Sign)

		admin := protected.Group("/")
		admin.Use(middleware.AdminOnly())
		{
			admin.POST("/contracts", contractHandler.Create)
			admin.DELETE("/contracts/:id", contractHandler.Delete)
			admin.POST("/contracts/:id/merge-request", contractHandler.MergeRequest)
			admin.POST("/contracts/:id/finalize", contractHandler.Finalize)
			admin.POST("/requests", requestHandler.Create)
		}
	}

	// Create server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down server...")

	stopPurge()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server exited gracefully")
}

// purgeLoop drops expired signature requests once an hour so dead tokens
// do not pile up and watchers get told their request is gone.
func purgeLoop(ctx context.Context, requests *service.SignatureRequestStore) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := requests.PurgeExpired(ctx)
			if err != nil {
				slog.Error("failed to purge expired signature requests", "error", err)
				continue
			}
			if n > 0 {
				slog.Info("purged expired signature requests", "count", n)
			}
		}
	}
}

// corsMiddleware handles CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
