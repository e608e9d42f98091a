package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vovakirdan/tui-2048/internal/config"
	"github.com/vovakirdan/tui-2048/internal/logging"
	"github.com/vovakirdan/tui-2048/internal/metrics"
	"github.com/vovakirdan/tui-2048/internal/spectate"
	"github.com/vovakirdan/tui-2048/internal/storage"
)

// runtime holds the collaborators shared by play and serve.
type runtime struct {
	cfg        config.Config
	logger     *log.Logger
	logCloser  io.Closer
	store      *storage.Store
	collectors *metrics.Collectors
	hub        *spectate.Hub
	exporter   *metrics.Exporter
}

// setupRuntime loads config and opens the store, logger and metrics
// server from the global flags. logOut receives logs when --log-file is
// not set; nil discards them.
func setupRuntime(logOut io.Writer, prefix string) (*runtime, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}

	logger, logCloser, err := logging.New(logging.Options{
		Level:    flagLogLevel,
		File:     flagLogFile,
		Fallback: logOut,
		Prefix:   prefix,
	})
	if err != nil {
		return nil, err
	}

	rt := &runtime{cfg: cfg, logger: logger, logCloser: logCloser}

	// Continue without storage - the game still works
	store, err := storage.Open(flagDBPath)
	if err != nil {
		logger.Warn("could not open scores database", "error", err)
	} else {
		rt.store = store
	}

	if flagMetricsPort > 0 {
		reg := prometheus.NewRegistry()
		collectors, err := metrics.NewCollectors(reg)
		if err != nil {
			rt.Close()
			return nil, err
		}
		rt.collectors = collectors
		rt.hub = spectate.NewHub(logger)

		exporter := metrics.NewExporter(fmt.Sprintf(":%d", flagMetricsPort), reg, logger,
			map[string]http.Handler{"/live": rt.hub})
		if err := exporter.Start(); err != nil {
			logger.Warn("metrics server disabled", "error", err)
		} else {
			rt.exporter = exporter
		}
	}

	return rt, nil
}

// Close releases everything setupRuntime opened.
func (rt *runtime) Close() {
	if rt.exporter != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := rt.exporter.Shutdown(ctx); err != nil {
			rt.logger.Warn("metrics server shutdown", "error", err)
		}
		cancel()
	}
	if rt.hub != nil {
		rt.hub.Close()
	}
	if rt.store != nil {
		rt.store.Close()
	}
	rt.logCloser.Close()
}
