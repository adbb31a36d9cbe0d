// Package main implements clipforged, the development host for the editor's
// background task pool. It wires configuration, logging, the media handler
// registry, metrics, and the pool itself behind a local diagnostics HTTP
// server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/clipforge/clipforge/internal/api"
	"github.com/clipforge/clipforge/internal/config"
	"github.com/clipforge/clipforge/internal/events"
	"github.com/clipforge/clipforge/internal/media"
	"github.com/clipforge/clipforge/internal/platform/logger"
	"github.com/clipforge/clipforge/internal/taskpool"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("clipforged: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger := logger.Setup(cfg.Server)
	appLogger.Info("configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"pool_workers", cfg.Pool.Workers,
		"pool_queue_size", cfg.Pool.QueueSize)

	registry := taskpool.NewRegistry()
	if err := media.RegisterAll(registry); err != nil {
		return fmt.Errorf("failed to register media handlers: %w", err)
	}

	promRegistry := prom.NewRegistry()
	promRegistry.MustRegister(collectors.NewGoCollector())
	poolMetrics, err := taskpool.NewPrometheusMetrics("clipforge", promRegistry)
	if err != nil {
		return fmt.Errorf("failed to register pool metrics: %w", err)
	}

	emitter := events.NewInMemoryEmitter(appLogger)
	emitter.RegisterObserver(events.ObserverFunc(func(event events.ProgressEvent) {
		appLogger.Debug("task progress",
			"task_id", event.TaskID,
			"task_type", event.TaskType,
			"stage", event.Stage,
			"fraction", event.Fraction)
	}))

	pool := taskpool.New(registry, taskpool.Options{
		Config: taskpool.Config{
			Workers:   cfg.Pool.Workers,
			QueueSize: cfg.Pool.QueueSize,
		},
		Metrics: poolMetrics,
		Emitter: emitter,
	}, appLogger)

	router := api.NewRouter(api.RouterConfig{
		Pool:    pool,
		Decode:  media.DecodePayload,
		Metrics: promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{}),
		Logger:  appLogger,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf("127.0.0.1:%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		appLogger.Info("diagnostics server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stop:
		appLogger.Info("shutting down", "signal", sig.String())
	case err := <-serverErr:
		appLogger.Error("diagnostics server failed", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("server shutdown failed", "error", err)
	}

	// The pool is shut down exactly once, at exit.
	pool.Shutdown()
	appLogger.Info("clipforged stopped")
	return nil
}
