package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cysense/sensor-dashboard/internal/alert"
	"github.com/cysense/sensor-dashboard/internal/config"
	"github.com/cysense/sensor-dashboard/internal/httpapi"
	"github.com/cysense/sensor-dashboard/internal/logging"
	"github.com/cysense/sensor-dashboard/internal/poller"
	"github.com/cysense/sensor-dashboard/internal/source"
	"github.com/cysense/sensor-dashboard/internal/state"
	"github.com/cysense/sensor-dashboard/internal/view"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "configuration error:", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel)
	if cfg.DefaultCredentials() {
		logger.Warn("using insecure default dashboard credentials; set DASHBOARD_USER and DASHBOARD_PASS")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	src := source.Select(cfg, alert.DefaultPolicy(), logger)
	holder := state.NewHolder()

	devicePoller := poller.New(src, holder, cfg.RefreshInterval, cfg.QueryTimeout, logger)
	devicePoller.RefreshOnce(ctx)
	go devicePoller.Run(ctx)

	renderer, err := view.NewRenderer()
	if err != nil {
		logger.Error("failed to load templates", "err", err)
		os.Exit(1)
	}

	api := httpapi.New(holder, devicePoller, src, httpapi.NewSessions(), renderer, logger, httpapi.Options{
		Mode:     src.Mode(),
		Window:   cfg.ActiveWindow,
		Username: cfg.DashboardUser,
		Password: cfg.DashboardPass,
	})

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	logger.Info("server starting", "addr", server.Addr, "mode", src.Mode())
	if err := httpapi.RunServer(ctx, server, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server terminated with error", "err", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
