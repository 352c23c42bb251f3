package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GoPolymarket/hudgate/internal/config"
	"github.com/GoPolymarket/hudgate/internal/exchange"
	"github.com/GoPolymarket/hudgate/internal/handler"
	"github.com/GoPolymarket/hudgate/internal/market"
	"github.com/GoPolymarket/hudgate/internal/middleware"
	"github.com/GoPolymarket/hudgate/internal/pkg/logger"
	"github.com/GoPolymarket/hudgate/internal/repository"
	"github.com/GoPolymarket/hudgate/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.Log.Level)

	// 2. Initialize Audit Persistence (Postgres and Redis are both optional,
	// the JSONL file sink is always on)
	var sinks []service.AuditSink
	if cfg.Database.DSN != "" {
		db, err := repository.NewDB(cfg)
		if err == nil {
			logger.Info("✅ Connected to PostgreSQL")
			sinks = append(sinks, repository.NewPostgresAuditSink(db))
		} else {
			logger.Error("⚠️ Failed to connect to DB, audit logs will not reach Postgres", "error", err)
		}
	}
	if cfg.Redis.Addr != "" {
		redisClient, err := repository.NewRedisClient(cfg)
		if err == nil {
			logger.Info("✅ Connected to Redis")
			sinks = append(sinks, repository.NewRedisAuditSink(redisClient, cfg.Redis.AuditListKey, cfg.Redis.AuditListMax))
		} else {
			logger.Error("⚠️ Failed to connect to Redis, audit logs will not reach Redis", "error", err)
		}
	}

	auditSvc, err := service.NewAuditService("./logs", sinks...)
	if err != nil {
		log.Fatalf("Failed to initialize audit service: %v", err)
	}

	// 3. Initialize Core Services
	gamma := market.NewGammaClient(
		cfg.Gamma.BaseURL,
		time.Duration(cfg.Gamma.CacheSeconds)*time.Second,
		time.Duration(cfg.Gamma.TimeoutMs)*time.Millisecond,
	)
	resolver := market.NewResolver(gamma)

	clobClient, err := exchange.NewCLOB(cfg.Exchange.Host, cfg.Exchange.ChainID, cfg.Exchange.PrivateKey)
	if err != nil {
		log.Fatalf("Failed to initialize exchange client: %v", err)
	}

	tradeSvc := service.NewTradeService(cfg, resolver, clobClient)

	// 4. Initialize Handlers
	tradeHandler := handler.NewTradeHandler(tradeSvc)

	// 5. Setup Router
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(middleware.Recovery())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.MetricsMiddleware())
	r.Use(middleware.AuditMiddleware(auditSvc))

	r.GET("/health", handler.Health(cfg.Server.Name))

	if cfg.Metrics.Enabled {
		r.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	trade := r.Group("/")
	trade.Use(middleware.HMACAuth(cfg.Auth.HUDSecret))
	{
		trade.POST("/trade", tradeHandler.Execute)
	}

	r.NoRoute(handler.NotFound)

	// 6. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	go func() {
		logger.Info("🚀 HudGate started", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server listen failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	auditSvc.Close()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown: ", err)
	}

	logger.Info("Server exiting")
}
