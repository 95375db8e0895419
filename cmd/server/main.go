// backend-go/cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andresuchdata/doccover/backend-go/internal/api"
	"github.com/andresuchdata/doccover/backend-go/internal/cache"
	"github.com/andresuchdata/doccover/backend-go/internal/config"
	"github.com/andresuchdata/doccover/backend-go/internal/service"
	"github.com/andresuchdata/doccover/backend-go/internal/storage"
	"github.com/andresuchdata/doccover/backend-go/pkg/logger"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()

	logger.SetOutput(os.Stderr, cfg.App.LogFormat)
	logger.SetLevel(cfg.App.LogLevel)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	startCtx, cancelStart := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelStart()

	resultCache, err := cache.NewResultCache(startCtx, cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Result cache unavailable, continuing without it")
		resultCache = cache.NewNoopResultCache()
	}
	defer resultCache.Close()

	var opts []service.Option
	if cfg.Storage.Enabled {
		store, err := storage.NewMinioClient(cfg.Storage)
		if err != nil {
			logger.Log.Fatal().Err(err).Msg("Failed to create object storage client")
		}
		if err := store.EnsureBucket(startCtx); err != nil {
			logger.Log.Fatal().Err(err).Msg("Failed to prepare object storage bucket")
		}
		opts = append(opts, service.WithStorage(store, cfg.Storage.Prefix))
		logger.Log.Info().Str("bucket", store.Bucket()).Msg("Summary export storage enabled")
	}

	coverageService := service.NewCoverageService(cfg.CoverageOptions(), resultCache, opts...)

	router := api.NewRouter(&api.Services{
		CoverageService: coverageService,
		MaxUploadBytes:  cfg.Server.MaxUploadMB << 20,
	}, cfg.Server.AllowedOrigins)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	// In-flight requests get 5 seconds to finish.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
