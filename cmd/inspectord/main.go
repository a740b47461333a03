package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/onkernel/frame-inspector/cmd/config"
	"github.com/onkernel/frame-inspector/lib/inspector"
	"github.com/onkernel/frame-inspector/lib/logger"
	"github.com/onkernel/frame-inspector/lib/page"
)

func main() {
	// Load configuration from environment variables
	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewTextHandler(os.Stdout, nil)).Error("failed to load configuration", "err", err)
		os.Exit(1)
	}

	slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slogger.Info("inspectord configuration", "config", cfg)

	// context cancellation on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mirror := page.NewPage()
	feed := page.NewFeed(mirror, slogger)
	ctrl := inspector.NewController(mirror, feed, time.Duration(cfg.ScrollThrottleMS)*time.Millisecond, slogger)
	feed.SetSink(ctrl)
	hub := inspector.NewHub(cfg.PanelChannelPrefix, ctrl, slogger)

	r := chi.NewRouter()
	r.Use(
		chiMiddleware.Logger,
		chiMiddleware.Recoverer,
		func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				ctxWithLogger := logger.AddToContext(r.Context(), slogger)
				next.ServeHTTP(w, r.WithContext(ctxWithLogger))
			})
		},
	)

	r.Get("/ws/page", feed.HandleWebSocket)
	r.Get("/ws/panel", hub.HandleWebSocket)
	r.Handle("/agent.js", feed.ScriptHandler())
	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(ctrl.Status()); err != nil {
			logger.FromContext(r.Context()).Error("failed to encode status", "err", err)
		}
	})
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		slogger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slogger.Error("http server failed", "err", err)
			stop()
		}
	}()

	go func() {
		if err := ctrl.Run(ctx); err != nil && ctx.Err() == nil {
			slogger.Error("controller stopped", "err", err)
			stop()
		}
	}()

	go inspector.AnnouncePresence(ctx, cfg.AnnounceURL, slogger)

	// graceful shutdown
	<-ctx.Done()
	slogger.Info("shutdown signal received")

	g, _ := errgroup.WithContext(ctx)

	g.Go(func() error {
		return srv.Shutdown(context.Background())
	})

	if err := g.Wait(); err != nil {
		slogger.Error("server failed to shutdown", "err", err)
	}
}
