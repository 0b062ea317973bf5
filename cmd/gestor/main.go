package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"gestor-pelada/gestor/internal/api"
	"gestor-pelada/gestor/internal/app"
	"gestor-pelada/gestor/internal/config"
	"gestor-pelada/gestor/internal/logging"
	"gestor-pelada/gestor/internal/metrics"
	"gestor-pelada/gestor/internal/routes"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	var entryURL string
	flag.StringVar(&entryURL, "entry", "", "URL the client was opened with, e.g. a password recovery link")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logging.Init(cfg.AppEnv); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logging.Close()

	if entryURL == "" {
		entryURL = strings.TrimSuffix(cfg.BaseURL, "/") + "/"
	}

	logging.Info("Gestor starting up",
		"environment", cfg.AppEnv,
		"backend", cfg.Backend,
		"prefs_backend", cfg.Prefs.Backend,
		"timestamp", time.Now().Format(time.RFC3339),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metricsReg := metrics.NewMetricsRegistry(prometheus.DefaultRegisterer)

	client, cleanup, err := app.Build(ctx, cfg, metricsReg, entryURL)
	if err != nil {
		logging.Fatal("Failed to build client", "error", err.Error())
	}
	defer cleanup()
	defer client.Close()

	if err := client.Start(ctx); err != nil {
		logging.Fatal("Failed to start client", "error", err.Error())
	}

	handlers := api.NewHandlers(client, cfg.Backend, cfg.BaseURL, time.Now())
	router := routes.RegisterRoutes(cfg, handlers, client.Sessions, metricsReg)

	// Metrics live outside the chi router so scrapes skip its middleware
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", router)

	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logging.Info("Server listening", "addr", cfg.ListenAddr, "base_url", cfg.BaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal("Server error", "error", err.Error())
		}
	}()

	<-ctx.Done()
	logging.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Warn("Graceful shutdown failed", "error", err.Error())
	}
}
