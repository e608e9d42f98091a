package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Exporter serves /metrics and any extra handlers over HTTP.
type Exporter struct {
	srv    *http.Server
	ln     net.Listener
	logger *log.Logger
}

// NewExporter builds an exporter for gatherer on addr. Extra handlers are
// mounted next to /metrics (the spectator stream uses this).
func NewExporter(addr string, gatherer prometheus.Gatherer, logger *log.Logger, extra map[string]http.Handler) *Exporter {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	for pattern, h := range extra {
		mux.Handle(pattern, h)
	}

	return &Exporter{
		srv: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger,
	}
}

// Handler returns the exporter's HTTP handler.
func (e *Exporter) Handler() http.Handler {
	return e.srv.Handler
}

// Start binds the listener and serves in the background.
func (e *Exporter) Start() error {
	ln, err := net.Listen("tcp", e.srv.Addr)
	if err != nil {
		return fmt.Errorf("metrics: cannot listen on %s: %w", e.srv.Addr, err)
	}
	e.ln = ln
	e.logger.Info("Metrics server listening", "addr", ln.Addr().String())

	go func() {
		if err := e.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.logger.Error("Metrics server stopped", "error", err)
		}
	}()
	return nil
}

// Addr returns the bound address, or the configured one before Start.
func (e *Exporter) Addr() string {
	if e.ln != nil {
		return e.ln.Addr().String()
	}
	return e.srv.Addr
}

// Shutdown stops the server gracefully.
func (e *Exporter) Shutdown(ctx context.Context) error {
	return e.srv.Shutdown(ctx)
}
