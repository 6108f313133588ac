package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/SachiraChin/workflowmanager-showcase-sub003/internal/api"
	"github.com/SachiraChin/workflowmanager-showcase-sub003/internal/config"
	"github.com/SachiraChin/workflowmanager-showcase-sub003/internal/engine"
	"github.com/SachiraChin/workflowmanager-showcase-sub003/internal/live"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config load failed: ", err)
	}

	logger := cfg.Log.Logger(os.Stderr)
	logger.Info(
		"uxrender starting",
		"addr", cfg.Server.Addr(),
		"env", cfg.Env(),
		"dialect", cfg.Template.Dialect,
	)

	e, err := engine.New(cfg, logger)
	if err != nil {
		log.Fatal("engine init failed: ", err)
	}

	handler := api.NewHandler(e,
		api.WithLogger(logger),
		api.WithMaxBodyBytes(cfg.Server.MaxBodyBytes),
		api.WithLive(live.NewHandler(e,
			live.WithLogger(logger),
			live.WithOriginPatterns(cfg.Server.LiveOrigins...),
		)),
	)

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      handler.Routes(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeoutDuration())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
		return
	}
	logger.Info("uxrender stopped")
}
