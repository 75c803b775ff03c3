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

	"go.uber.org/zap"

	"github.com/yourname/webp_lite/internal/app/resthttp"
	"github.com/yourname/webp_lite/internal/config"
	"github.com/yourname/webp_lite/pkg/logger"
)

// main инициализирует REST-сервис конвертации и обеспечивает корректное завершение по сигналу.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	lg, err := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = lg.Sync() }()

	handler, _, err := resthttp.NewServer(cfg, lg)
	if err != nil {
		lg.Fatal("build server", zap.Error(err))
	}

	// WriteTimeout покрывает и ожидание слота, и само перекодирование.
	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       time.Minute,
		WriteTimeout:      cfg.ConvertTimeout + time.Minute,
		IdleTimeout:       2 * time.Minute,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Сценарий graceful shutdown при получении SIGTERM/SIGINT.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Warn("shutdown error", zap.Error(err))
		}
	}()

	lg.Info("REST listening",
		zap.String("addr", cfg.ListenAddr),
		zap.String("route", cfg.RoutePath),
		zap.String("backend", cfg.Encoder.Backend),
		zap.Int("max_concurrent", cfg.MaxConcurrent))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		lg.Fatal("listen", zap.Error(err))
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		lg.Warn("final shutdown error", zap.Error(err))
	}
}
