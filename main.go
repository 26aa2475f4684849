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

	"chatbot/app"
	"chatbot/middleware"
	"chatbot/pkg/config"
	"chatbot/pkg/database"
	"chatbot/pkg/logger"
	"chatbot/pkg/token"
	"chatbot/routes"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	config.Load()
	if err := logger.Init(config.IsProduction, config.LogLevel); err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()
	lg := logger.L()

	db, err := database.Open(config.DBDriver, config.DBDSN)
	if err != nil {
		lg.Fatal("database", zap.Error(err))
	}

	startCtx, cancelStart := context.WithTimeout(context.Background(), 10*time.Second)
	revocations, err := token.NewStore(startCtx, config.RedisAddr)
	if err != nil {
		lg.Fatal("redis", zap.String("addr", config.RedisAddr), zap.Error(err))
	}

	opts := app.OptionsFromConfig()
	opts.Revocations = revocations
	a := app.New(db, opts)
	defer a.Close()
	if err := a.Users.EnsureAdmin(startCtx, config.AdminEmail, config.AdminName, config.AdminPassword); err != nil {
		lg.Fatal("admin bootstrap", zap.Error(err))
	}
	cancelStart()

	middleware.SetRateLimitConfig(
		time.Duration(config.RateLimitWindowSeconds)*time.Second,
		config.RateLimitCapacity,
		config.UserConcurrencyLimit,
	)

	if config.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     config.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	routes.RegisterRoutes(r, a)

	srv := &http.Server{
		Addr:              ":" + config.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		lg.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", config.AppEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal("listen", zap.String("addr", srv.Addr), zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	lg.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		lg.Error("forced shutdown", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	lg.Info("server exited")
}
