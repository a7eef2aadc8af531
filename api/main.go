package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joost-contentoo/korsit-portal/internal/config"
	"github.com/joost-contentoo/korsit-portal/internal/localize"
	"github.com/joost-contentoo/korsit-portal/internal/logger"
	"github.com/joost-contentoo/korsit-portal/internal/refdocs"
	"github.com/joost-contentoo/korsit-portal/internal/upstream"
)

func main() {
	log := logger.New("api")
	if err := config.LoadDotEnv(); err != nil {
		log.Warn("load .env", slog.Any("err", err))
	}

	cfg, err := config.LoadAPI()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	var fwd localize.Forwarder
	client, upstreamErr := upstream.New(cfg.Upstream, log)
	if upstreamErr != nil {
		log.Error("webhook not configured, localization disabled", slog.Any("err", upstreamErr))
		fwd = upstream.Disabled{Err: upstreamErr}
	} else {
		fwd = client
	}

	srv := &server{
		log:         log,
		cfg:         cfg,
		localizer:   localize.NewService(fwd, log, cfg.VerboseLogging),
		docs:        refdocs.NewLibrary(cfg.StyleGuidePath, cfg.GlossaryPath),
		upstreamErr: upstreamErr,
	}

	httpServer := &http.Server{
		Addr:              cfg.BindAddr,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 10*time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	go func() {
		log.Info("api server starting",
			slog.String("addr", cfg.BindAddr),
			slog.Duration("upstream_timeout", cfg.Timeout),
			slog.Bool("verbose", cfg.VerboseLogging),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", slog.Any("err", err))
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", slog.Any("err", err))
	}
}
