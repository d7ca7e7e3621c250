package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"campus-map/internal/campus/handlers"
	"campus-map/internal/campus/pathedit"
	"campus-map/internal/common/config"
	"campus-map/internal/common/logging"
	"campus-map/internal/common/middleware"
	"campus-map/internal/offline/cache"
	"campus-map/internal/offline/connectivity"
	"campus-map/internal/offline/storage"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"go.uber.org/zap"
)

// ============================================================
// Campus Map Service
// ============================================================

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(cfg.IsProduction(), cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := storage.Open(ctx, storage.Backend(cfg.Cache.Backend), cfg.Cache.Path)
	if err != nil {
		logger.Fatal("open cache storage", zap.String("backend", cfg.Cache.Backend), zap.Error(err))
	}
	defer closeStore()

	// ============================================================
	// Offline Cache & Connectivity
	// ============================================================

	monitor := connectivity.NewMonitor(cfg.Connectivity.InitialOnline)
	if cfg.Connectivity.ProbeURL != "" {
		prober := connectivity.NewProber(cfg.Connectivity.ProbeURL, cfg.Connectivity.ProbeInterval, monitor, logger.Named("connectivity"))
		go prober.Run(ctx)
	}

	campusCache := cache.New(ctx, store, monitor,
		cache.WithKey(cfg.Cache.Key),
		cache.WithLogger(logger.Named("cache")),
	)
	defer campusCache.Close()

	if _, err := campusCache.Seed(ctx, cfg.Cache.SeedPath); err != nil {
		logger.Warn("seed cache", zap.String("path", cfg.Cache.SeedPath), zap.Error(err))
	}

	campusHandler := handlers.NewCampusHandler(campusCache, monitor, pathedit.NewDrafts(cfg.Cache.DraftTTL), logger.Named("http"), handlers.Options{
		MapImageURL: cfg.Map.ImageURL,
		Measure:     pathedit.Measure{Scale: cfg.Map.Scale, WalkingSpeed: cfg.Map.WalkingSpeed},
	})

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		AppName:      "Campus Map Service",
	})

	// ============================================================
	// Global Middleware
	// ============================================================

	app.Use(recover.New())
	app.Use(middleware.Logger(logger.Named("access")))
	app.Use(middleware.CORS(cfg.CORSOrigins))

	// ============================================================
	// Routes
	// ============================================================

	campusHandler.Register(app)

	// ============================================================
	// Server Start
	// ============================================================

	go func() {
		<-ctx.Done()
		if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
			logger.Warn("shutdown", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Port)
	logger.Info("starting campus map service", zap.String("addr", addr), zap.String("env", cfg.Environment), zap.String("cache_backend", cfg.Cache.Backend))

	if err := app.Listen(addr); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}
}
