package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"coldchain/internal/platform/config"
	"coldchain/internal/platform/httpserver"
	"coldchain/internal/platform/logger"
	httpmetrics "coldchain/internal/platform/metrics"
	"coldchain/internal/platform/middleware"
	"coldchain/internal/supplychain/handler"
	"coldchain/internal/supplychain/metrics"
	"coldchain/internal/supplychain/service"
	"coldchain/pkg/platform/httputil"
)

// main wires the engine to its backends and keeps the server lifecycle
// small. Every backend is optional: without DATABASE_URL, REDIS_URL and
// KAFKA_BROKERS the engine runs fully in memory.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engineMetrics := metrics.New(prometheus.DefaultRegisterer)
	infra, err := buildInfra(ctx, cfg, log, engineMetrics)
	if err != nil {
		log.Error("failed to initialise backends", "error", err)
		os.Exit(1)
	}
	defer infra.Close()

	if cfg.SeedFile != "" {
		if err := infra.seed(ctx, cfg.SeedFile); err != nil {
			log.Error("failed to load seed file", "path", cfg.SeedFile, "error", err)
			os.Exit(1)
		}
	}

	svc := service.New(infra.store,
		service.WithLocker(infra.locker),
		service.WithPublisher(infra.publisher),
		service.WithLogger(log),
		service.WithMetrics(engineMetrics),
		service.WithTxTimeout(cfg.Engine.TxTimeout),
		service.WithBatchConcurrency(cfg.Engine.BatchConcurrency),
	)

	r := chi.NewRouter()
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(log))
	r.Use(middleware.LatencyMiddleware(httpmetrics.New(prometheus.DefaultRegisterer)))
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := infra.health(r.Context()); err != nil {
			httputil.WriteError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))
		r.Use(middleware.ContentTypeJSON)
		handler.New(svc, log).Register(r)
	})

	srv := httpserver.New(cfg.Addr, r)
	go func() {
		log.Info("starting coldchain settlement engine", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}
