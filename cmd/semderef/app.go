package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/c360studio/semderef/authority"
	"github.com/c360studio/semderef/authority/providers"
	"github.com/c360studio/semderef/config"
	"github.com/c360studio/semderef/dereference"
	"github.com/c360studio/semderef/gateway"
	"github.com/c360studio/semderef/weburl"
)

const (
	defaultGracefulTimeout   = 10 * time.Second
	serverReadHeaderTimeout  = 10 * time.Second
	serverIdleTimeout        = 60 * time.Second
	serverWriteTimeoutMargin = 10 * time.Second
)

// App wires the configured registry, dereferencer and gateway together.
type App struct {
	cfg    *config.Config
	logger *slog.Logger

	// nil when metrics are disabled
	metrics *prometheus.Registry

	registry *authority.Registry
	deref    *dereference.Dereferencer
}

// NewApp creates a new application instance.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	app := &App{cfg: cfg, logger: logger, registry: authority.NewRegistry()}

	if cfg.Metrics.Enabled {
		app.metrics = prometheus.NewRegistry()
		app.metrics.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	added := providers.Register(app.registry, cfg.Dereferencer.Disabled...)
	logger.Debug("Registered authorities",
		"count", added,
		"disabled", cfg.Dereferencer.Disabled)

	d := cfg.Dereferencer
	deref, err := dereference.New(app.registry,
		dereference.WithProxyURL(d.ProxyURL),
		dereference.WithLanguage(d.Language),
		dereference.WithUserAgent(d.UserAgent),
		dereference.WithMaxBodySize(d.MaxBodySize),
		dereference.WithHTTPClient(&http.Client{Timeout: d.Timeout}),
		dereference.WithLogger(logger),
		dereference.WithMetrics(app.registerer()),
	)
	if err != nil {
		return nil, fmt.Errorf("create dereferencer: %w", err)
	}
	app.deref = deref
	return app, nil
}

func (a *App) registerer() prometheus.Registerer {
	if a.metrics == nil {
		return nil
	}
	return a.metrics
}

// Outcome is the result of dereferencing one URI.
type Outcome struct {
	URI    string
	Result *dereference.Result
	Err    error
}

// DereferenceAll dereferences uris with at most concurrency requests in
// flight. Outcomes are returned in the order of uris.
func (a *App) DereferenceAll(ctx context.Context, uris []string, concurrency int) []Outcome {
	if concurrency < 1 {
		concurrency = 1
	}
	outcomes := make([]Outcome, len(uris))

	var g errgroup.Group
	g.SetLimit(concurrency)
	for i, uri := range uris {
		g.Go(func() error {
			res, err := a.deref.Dereference(ctx, uri)
			outcomes[i] = Outcome{URI: uri, Result: res, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

// GatewayConfig maps the gateway section onto gateway.Config.
func (a *App) GatewayConfig() gateway.Config {
	gc := gateway.DefaultConfig()
	c := a.cfg.Gateway
	gc.Path = c.Path
	gc.Timeout = c.Timeout
	gc.MaxBodySize = c.MaxBodySize
	if c.UserAgent != "" {
		gc.UserAgent = c.UserAgent
	}
	gc.Policy = weburl.Policy{
		AllowHTTP:    c.AllowHTTP,
		AllowPrivate: c.AllowPrivateNetworks,
		AllowedHosts: c.AllowedHosts,
	}
	return gc
}

// Handler builds the gateway router.
func (a *App) Handler() (http.Handler, error) {
	gw, err := gateway.New(a.GatewayConfig(),
		gateway.WithLogger(a.logger),
		gateway.WithMetrics(a.registerer()),
	)
	if err != nil {
		return nil, fmt.Errorf("create gateway: %w", err)
	}

	var opts []gateway.RouterOption
	if a.metrics != nil {
		opts = append(opts, gateway.WithMetricsHandler(a.cfg.Metrics.Path,
			promhttp.HandlerFor(a.metrics, promhttp.HandlerOpts{Registry: a.metrics})))
	}
	return gateway.NewRouter(gw, opts...), nil
}

// Serve runs the gateway on ln until ctx is done, then shuts down gracefully.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	handler, err := a.Handler()
	if err != nil {
		return err
	}

	server := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: serverReadHeaderTimeout,
		WriteTimeout:      a.cfg.Gateway.Timeout + serverWriteTimeoutMargin,
		IdleTimeout:       serverIdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("Gateway listening",
			"addr", ln.Addr().String(),
			"path", a.cfg.Gateway.Path,
			"metrics", a.metrics != nil)
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	a.logger.Info("Shutting down gateway...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultGracefulTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("gateway forced to shutdown: %w", err)
	}

	a.logger.Info("Gateway shutdown complete")
	return nil
}
