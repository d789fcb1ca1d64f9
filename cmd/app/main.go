package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "raffle-sales-backend/docs"
	"raffle-sales-backend/internal/common/cache"
	"raffle-sales-backend/internal/common/config"
	"raffle-sales-backend/internal/common/logger"
	"raffle-sales-backend/internal/common/middleware"
	raffleHTTP "raffle-sales-backend/internal/features/raffle/delivery/http"
	rafflePostgres "raffle-sales-backend/internal/features/raffle/repository/postgres"
	raffleRedis "raffle-sales-backend/internal/features/raffle/repository/redis"
	"raffle-sales-backend/internal/features/raffle/service"
	"raffle-sales-backend/internal/platform/objectstore"
	"raffle-sales-backend/internal/platform/postgres"
	"raffle-sales-backend/internal/platform/redis"
	"raffle-sales-backend/internal/platform/telegram"
	"raffle-sales-backend/internal/workers"
)

// @title           Raffle Sales API
// @version         1.0
// @description     Number selection, reservation and payment for raffle sellers.

// @host      localhost:8080
// @BasePath  /api/v1

// @tag.name numbers
// @tag.description Raffle number pool

// @tag.name selection
// @tag.description Seller selections bounded by quota

// @tag.name reservations
// @tag.description Time-limited holds for buyers

// @tag.name payments
// @tag.description Availability checks and payment completion

// @tag.name fraud
// @tag.description Deduplicated fraud reports

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger.Init("raffle-sales-backend", cfg.Debug)
	log := logger.Component("main")
	log.Info().Bool("debug", cfg.Debug).Msg("Starting Raffle Sales Backend")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Postgres
	pg, err := postgres.NewClient(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pg.Close()

	if cfg.Postgres.AutoMigrate {
		if err := pg.Migrate(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to apply schema")
		}
		log.Info().Msg("Schema applied")
	}

	// Redis
	rdb, err := redis.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	cacheService := cache.NewCacheService(rdb)
	poolCache := raffleRedis.NewPoolCache(cacheService, cfg.Raffle.PoolCacheTTL)
	selections := raffleRedis.NewSelectionStore(rdb, cfg.Raffle.SelectionTTL)
	events := raffleRedis.NewEventPublisher(rdb)

	proofs, err := objectstore.NewLocalObjectStore(cfg.Storage.Dir, cfg.Storage.PublicBaseURL, cfg.Storage.MaxProofBytes)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to prepare proof storage")
	}

	store := rafflePostgres.NewStore(pg.GetDB())
	svc := service.NewSalesService(service.Dependencies{
		Store:      store,
		Cache:      poolCache,
		Selections: selections,
		Events:     events,
		Proofs:     proofs,
		Now:        time.Now,
		Logger:     logger.Component("raffle"),
	})

	// Фоновые задачи
	reconciler := service.NewReservationReconciler(store.Numbers(), cfg.Raffle.ReconcileInterval, time.Now, logger.Component("reconciler"))
	reconciler.Start()
	defer reconciler.Stop()

	var notifier workers.Notifier
	if cfg.Telegram.BotToken != "" {
		n, err := telegram.NewNotifier(cfg.Telegram.BotToken, cfg.Telegram.AdminChatID, logger.Component("telegram"))
		if err != nil {
			log.Error().Err(err).Msg("Telegram notifier disabled")
		} else {
			notifier = n
		}
	}

	hostname, _ := os.Hostname()
	streamWorker := workers.NewRedisStreamWorker(rdb, poolCache, notifier, hostname, logger.Component("stream_worker"))
	go streamWorker.Start(ctx)

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger.Component("http")))
	router.Use(middleware.ErrorHandler(logger.Component("http")))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.Origin}
	corsConfig.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Accept", "X-Request-ID"}
	router.Use(cors.New(corsConfig))

	handler := raffleHTTP.NewRaffleHandler(svc, cfg.Raffle.ReservationTTLDays, cfg.Storage.MaxProofBytes, logger.Component("raffle_http"))
	setupRoutes(router, handler, cfg, pg, rdb)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Ждем сигнала для graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

func setupRoutes(router *gin.Engine, handler *raffleHTTP.RaffleHandler, cfg *config.Config, pg *postgres.Client, rdb *redis.Client) {
	handler.RegisterRoutes(router.Group("/api/v1"))

	router.Static("/proofs", cfg.Storage.Dir)
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC(),
			"service":   "raffle-sales-backend",
		})
	})

	router.GET("/live", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	router.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := pg.HealthCheck(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unready",
				"error":   "postgres unavailable",
				"details": err.Error(),
			})
			return
		}

		if err := rdb.Ping(ctx).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unready",
				"error":   "redis unavailable",
				"details": err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "ready",
			"timestamp": time.Now().UTC(),
			"service":   "raffle-sales-backend",
		})
	})
}
