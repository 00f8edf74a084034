// cmd/server/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/voxalab/pitchvillage/internal/api"
	"github.com/voxalab/pitchvillage/internal/app"
	"github.com/voxalab/pitchvillage/internal/config"
	"github.com/voxalab/pitchvillage/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := logging.New(cfg.DebugMode)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	logger.Info("starting pitchvillage server", zap.String("port", cfg.Port))

	application, err := app.InitServices(cfg, logger)
	if err != nil {
		logger.Fatal("service initialization failed", zap.Error(err))
	}

	router, err := api.SetupRouter(application.Container, logger, cfg.DebugMode)
	if err != nil {
		logger.Fatal("router setup failed", zap.Error(err))
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()
	logger.Info("server listening", zap.String("addr", srv.Addr))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", zap.Error(err))
	}
	application.Shutdown()
}
