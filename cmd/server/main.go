// Package main runs the membership HTTP server with graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/teamgrid/backend/config"
	"github.com/teamgrid/backend/internal/groups"
	"github.com/teamgrid/backend/internal/middleware"
	"github.com/teamgrid/backend/internal/projects"
	"github.com/teamgrid/backend/pkg/database"
	"github.com/teamgrid/backend/pkg/redis"
	"github.com/teamgrid/backend/pkg/response"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), int32(cfg.Database.MaxConns), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}
	if cfg.Database.Seed {
		if err := database.Seed(ctx, pool); err != nil {
			logger.Fatal("seed", zap.Error(err))
		}
		logger.Info("demo fixtures loaded")
	}

	// Member-overview cache is optional; the API works without Redis.
	var overviewCache *projects.Cache
	if cfg.Redis.Addr != "" {
		rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
		if err != nil {
			logger.Warn("overview cache disabled", zap.Error(err))
		} else {
			defer rdb.Close()
			ttl := time.Duration(cfg.Redis.CacheTTLSec) * time.Second
			overviewCache = projects.NewCache(rdb.Client, ttl, logger)
		}
	}

	// Groups
	groupRepo := groups.NewRepository(pool)
	groupService := groups.NewService(groupRepo)
	groupHandler := groups.NewHandler(groupService, logger)

	// Projects
	projectRepo := projects.NewRepository(pool)
	projectService := projects.NewService(projectRepo)
	projectHandler := projects.NewHandler(projectService, overviewCache, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Group membership
	groupRoutes := router.Group("/groups")
	{
		groupRoutes.POST("/:id/members", groupHandler.AddUsers)
		groupRoutes.POST("/:id/subgroups", groupHandler.AddSubGroups)
		groupRoutes.DELETE("/:id/members/:userId", groupHandler.RemoveUser)
	}

	// Project membership
	projectRoutes := router.Group("/projects")
	{
		projectRoutes.GET("/:id/members", projectHandler.ListMembers)
		projectRoutes.POST("/:id/members", projectHandler.AddUsers)
		projectRoutes.POST("/:id/groups", projectHandler.AddGroups)
		projectRoutes.DELETE("/:id/members/:userId", projectHandler.RemoveUser)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
