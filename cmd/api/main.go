package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/harentsoaR/esannidhi-api/internal/auth"
	"github.com/harentsoaR/esannidhi-api/internal/config"
	"github.com/harentsoaR/esannidhi-api/internal/handlers"
	"github.com/harentsoaR/esannidhi-api/internal/kv"
	"github.com/harentsoaR/esannidhi-api/internal/logging"
	"github.com/harentsoaR/esannidhi-api/internal/middleware"
	"github.com/harentsoaR/esannidhi-api/internal/otp"
	"github.com/harentsoaR/esannidhi-api/internal/services"
	"github.com/harentsoaR/esannidhi-api/internal/storage"
	"github.com/harentsoaR/esannidhi-api/internal/utils"
)

// demoPassword is given to every seeded demo account.
const demoPassword = "demo1234"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables.")
	}
	cfg := config.Load()

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, "esannidhi-api")
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	if cfg.JWTSecret == "" {
		logger.Warn("JWT_SECRET is NOT SET; bearer tokens cannot be issued")
	}

	// --- Key-value store ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	rawStore, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	store := storage.New(kv.Instrument(rawStore, kv.NewMetrics(registry)), logger)

	if cfg.SeedDemo {
		hash, err := utils.HashPassword(demoPassword, cfg.BcryptCost)
		if err != nil {
			return err
		}
		if _, err := store.Seed(ctx, hash); err != nil {
			return err
		}
	}

	// --- Services ---
	notifier, err := services.NewNotificationService(services.NotificationConfig{
		Mode:        cfg.SMSMode,
		TextbeltURL: cfg.TextbeltURL,
		TextbeltKey: cfg.TextbeltAPIKey,
	}, logger)
	if err != nil {
		return err
	}
	otpSvc := otp.NewService(store, notifier, cfg.OTPTTL, logger, otp.NewMetrics(registry))
	scheduler, err := otpSvc.StartPurgeJob(cfg.OTPPurgeInterval)
	if err != nil {
		return err
	}
	defer scheduler.Stop()

	authSvc := auth.NewService(store, otpSvc, utils.NewTokenIssuer(cfg.JWTSecret, 24*time.Hour), auth.Options{
		BcryptCost: cfg.BcryptCost,
	}, logger)

	h := handlers.NewHandler(store, authSvc, otpSvc, notifier, logger)

	// --- Gin Router ---
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(logger))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Disposition", "X-Request-ID"},
		AllowCredentials: true,
	}))
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	h.RegisterRoutes(r)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server", zap.String("port", cfg.Port), zap.String("store", cfg.StoreBackend), zap.String("sms_mode", notifier.Mode()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	return srv.Shutdown(shutdownCtx)
}
