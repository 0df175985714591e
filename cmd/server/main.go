package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"speedrun-tracker/internal/platform/config"
	"speedrun-tracker/internal/platform/logger"
	"speedrun-tracker/internal/platform/metrics"
	"speedrun-tracker/internal/tracker"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const shutdownTimeout = 10 * time.Second

func main() {
	_ = config.Load()
	cfg := config.LoadServer()

	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	catalog, err := tracker.LoadCatalog(cfg.DefinitionsDir)
	if err != nil {
		log.Error("load definitions", "dir", cfg.DefinitionsDir, "error", err)
		os.Exit(1)
	}
	for _, sum := range catalog.List() {
		def, _ := catalog.Get(sum.ID)
		for _, w := range tracker.Validate(def) {
			log.Warn("definition warning", "definition_id", string(sum.ID), "warning", w)
		}
	}

	met := metrics.New()
	registry := tracker.NewInMemoryRegistry()
	svc := tracker.NewService(registry, catalog, log, met.RunListener())
	h := tracker.NewHandler(svc, log, met)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(logger.RequestLogger(log))
	r.Use(metrics.RequestMiddleware(met, "/metrics"))
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		met.Handler(func() { met.SetActiveRuns(svc.ActiveRunCount()) }).ServeHTTP(w, r)
	})
	h.Routes(r)

	addr := ":" + cfg.Port
	srv := &http.Server{Addr: addr, Handler: r}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	go drive(ctx, svc, met, cfg.TickInterval)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	log.Info("server starting",
		"port", cfg.Port,
		"definitions", catalog.Len(),
		"tick_interval", cfg.TickInterval.String(),
		"log_level", cfg.LogLevel,
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info("shutdown signal received, draining connections")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}

// drive ticks every registered run once per interval with the real time
// elapsed since the previous tick, until ctx is done.
func drive(ctx context.Context, svc *tracker.Service, met *metrics.Metrics, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			svc.Tick(now.Sub(last))
			met.IncTicks()
			last = now
		}
	}
}
