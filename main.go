package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kendall-kelly/restaurant-floor-api/config"
	"github.com/kendall-kelly/restaurant-floor-api/controllers"
	"github.com/kendall-kelly/restaurant-floor-api/events"
	"github.com/kendall-kelly/restaurant-floor-api/logger"
	"github.com/kendall-kelly/restaurant-floor-api/middleware"
	"github.com/kendall-kelly/restaurant-floor-api/models"
	"github.com/kendall-kelly/restaurant-floor-api/printing"
	"github.com/kendall-kelly/restaurant-floor-api/services"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.Setup(cfg.LogLevel)
	slog.Info("starting restaurant floor API", slog.String("env", cfg.GoEnv))

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to database
	if err := config.ConnectDatabase(cfg.DatabaseURL); err != nil {
		return err
	}
	if err := config.GetDB().AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	slog.Info("database migration completed")

	publisher, err := events.NewPublisher(cfg)
	if err != nil {
		return fmt.Errorf("failed to create event publisher: %w", err)
	}
	defer publisher.Close()

	opts := services.FloorOptions{
		DB:               config.GetDB(),
		Printer:          printing.NewClient(cfg),
		Endpoints:        cfg.Printers,
		PrintConcurrency: cfg.PrintConcurrency,
		ReceiptPrinter:   cfg.ReceiptPrinter,
		ReceiptTitle:     cfg.ReceiptTitle,
		Publisher:        publisher,
		StrictPrinting:   cfg.StrictPrinting(),
	}
	if cfg.AWSS3Bucket != "" {
		archive, err := services.NewS3ReceiptArchive(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to create receipt archive: %w", err)
		}
		opts.Archive = archive
	} else {
		slog.Warn("AWS_S3_BUCKET not set, receipts will not be archived")
	}
	services.InitFloorService(opts)

	auth, err := authMiddleware(cfg)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           setupRouter(cfg, auth...),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server is running", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// authMiddleware builds the token check, plus a scope check when one is configured
func authMiddleware(cfg *config.Config) ([]gin.HandlerFunc, error) {
	ensure, err := middleware.EnsureValidToken(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to set up authentication: %w", err)
	}
	chain := []gin.HandlerFunc{ensure}
	if cfg.AuthRequiredScope != "" {
		chain = append(chain, middleware.RequireScope(cfg.AuthRequiredScope))
	}
	return chain, nil
}

// setupRouter registers every route. auth runs in front of the worker routes.
func setupRouter(cfg *config.Config, auth ...gin.HandlerFunc) *gin.Engine {
	router := gin.Default()

	if len(cfg.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	router.Use(middleware.Metrics())

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", controllers.HealthCheck)
		v1.GET("/database/status", controllers.DatabaseStatus)

		floor := v1.Group("")
		floor.Use(auth...)
		{
			floor.GET("/me", controllers.GetMe)

			floor.POST("/orders", controllers.CreateOrder)
			floor.GET("/orders/open", controllers.ListOpenOrders)
			floor.GET("/orders/:id", controllers.GetOrder)
			floor.POST("/orders/:id/close", controllers.CloseOrder)

			floor.GET("/tables/:id/orders", controllers.ListTableOrders)
			floor.POST("/tables/:id/bill", controllers.SettleTable)

			floor.GET("/chef/dishes", controllers.ListDishes)
			floor.PUT("/chef/dishes/:id/quantity", controllers.SetDishQuantity)

			floor.POST("/receipts/print", controllers.PrintReceipt)
		}
	}

	return router
}
