package gateway

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360studio/semderef/authority"
	"github.com/c360studio/semderef/dereference"
	"github.com/c360studio/semderef/weburl"
)

// Response texts.
const (
	MsgMissingResourceURL = "The query must include the resource-url parameter."
	msgServiceError       = "Error during service request: %s"
)

// Defaults applied by DefaultConfig.
const (
	DefaultPath          = "/uri-dereferencer/proxy"
	DefaultTimeout       = 30 * time.Second
	DefaultMaxBodySize   = 10 * 1024 * 1024 // 10MB
	DefaultUserAgent     = "semderef-gateway/1.0"
	DefaultCurlUserAgent = "curl/8.5.0"
	DefaultMaxRedirects  = 5
)

// Config configures a Gateway.
type Config struct {
	// Path is the route the proxy is served on.
	Path string

	// Timeout bounds each upstream request.
	Timeout time.Duration

	// MaxBodySize limits relayed upstream bodies.
	MaxBodySize int64

	// UserAgent is sent by the default client.
	UserAgent string

	// CurlUserAgent is sent by the curl client.
	CurlUserAgent string

	// MaxRedirects is the number of redirects followed per request.
	MaxRedirects int

	// Policy decides which resource URLs may be fetched.
	Policy weburl.Policy
}

// DefaultConfig returns the default gateway configuration.
func DefaultConfig() Config {
	return Config{
		Path:          DefaultPath,
		Timeout:       DefaultTimeout,
		MaxBodySize:   DefaultMaxBodySize,
		UserAgent:     DefaultUserAgent,
		CurlUserAgent: DefaultCurlUserAgent,
		MaxRedirects:  DefaultMaxRedirects,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if !strings.HasPrefix(c.Path, "/") {
		return fmt.Errorf("path must start with /: %q", c.Path)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxBodySize <= 0 {
		return fmt.Errorf("max body size must be positive")
	}
	if c.MaxRedirects < 0 {
		return fmt.Errorf("max redirects must not be negative")
	}
	return nil
}

// Gateway relays GET requests to authorities that cannot be fetched
// directly by the dereferencer's clients.
type Gateway struct {
	cfg     Config
	clients map[authority.ProxyClient]*http.Client
	logger  *slog.Logger
	metrics *gatewayMetrics
}

// Option configures a Gateway.
type Option func(*Gateway) error

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gateway) error {
		if logger != nil {
			g.logger = logger
		}
		return nil
	}
}

// WithHTTPClient replaces the client used for a proxy client name.
func WithHTTPClient(name authority.ProxyClient, c *http.Client) Option {
	return func(g *Gateway) error {
		g.clients[name] = c
		return nil
	}
}

// WithMetrics registers gateway metrics with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(g *Gateway) error {
		m, err := newGatewayMetrics(reg)
		if err != nil {
			return fmt.Errorf("register metrics: %w", err)
		}
		g.metrics = m
		return nil
	}
}

// New creates a Gateway.
func New(cfg Config, opts ...Option) (*Gateway, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid gateway config: %w", err)
	}

	g := &Gateway{
		cfg: cfg,
		clients: map[authority.ProxyClient]*http.Client{
			authority.ProxyClientDefault: newClient(cfg, false),
			authority.ProxyClientCurl:    newClient(cfg, true),
		},
		logger: slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(g); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// Path returns the route the proxy is served on.
func (g *Gateway) Path() string { return g.cfg.Path }

// ServeHTTP handles a proxy request.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	q := r.URL.Query()
	resourceURL := strings.TrimSpace(q.Get(dereference.ParamResourceURL))
	clientName := authority.ProxyClient(q.Get(dereference.ParamAdapter))
	if clientName != authority.ProxyClientCurl {
		clientName = authority.ProxyClientDefault
	}
	logger := g.logger.With(
		"request_id", RequestIDFromContext(r.Context()),
		"resource_url", resourceURL,
		"client", string(clientName))

	status := g.proxy(w, r, resourceURL, clientName, q.Get(dereference.ParamAcceptHeader), logger)
	g.metrics.record(clientName, status, time.Since(start))
}

// proxy serves one request and returns the status written.
func (g *Gateway) proxy(w http.ResponseWriter, r *http.Request, resourceURL string,
	clientName authority.ProxyClient, accept string, logger *slog.Logger) int {
	if resourceURL == "" {
		writeText(w, http.StatusBadRequest, MsgMissingResourceURL)
		return http.StatusBadRequest
	}
	if err := g.cfg.Policy.Validate(resourceURL); err != nil {
		logger.Warn("Rejected resource url", "error", err)
		writeText(w, http.StatusBadRequest, fmt.Sprintf(msgServiceError, err))
		return http.StatusBadRequest
	}

	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, resourceURL, nil)
	if err != nil {
		writeText(w, http.StatusBadRequest, fmt.Sprintf(msgServiceError, err))
		return http.StatusBadRequest
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	if clientName == authority.ProxyClientCurl {
		req.Header.Set("User-Agent", g.cfg.CurlUserAgent)
	} else {
		req.Header.Set("User-Agent", g.cfg.UserAgent)
	}

	resp, err := g.clients[clientName].Do(req)
	if err != nil {
		logger.Warn("Upstream request failed", "error", err)
		writeText(w, http.StatusInternalServerError, fmt.Sprintf(msgServiceError, err))
		return http.StatusInternalServerError
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.Debug("Upstream returned error status", "status", resp.StatusCode)
		writeText(w, resp.StatusCode, fmt.Sprintf(msgServiceError, reasonPhrase(resp)))
		return resp.StatusCode
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, g.cfg.MaxBodySize+1))
	if err == nil && int64(len(body)) > g.cfg.MaxBodySize {
		err = fmt.Errorf("content too large (exceeds %d bytes)", g.cfg.MaxBodySize)
	}
	if err != nil {
		logger.Warn("Reading upstream body failed", "error", err)
		writeText(w, http.StatusInternalServerError, fmt.Sprintf(msgServiceError, err))
		return http.StatusInternalServerError
	}

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(resp.StatusCode)
	if _, err := w.Write(body); err != nil {
		logger.Debug("Writing response failed", "error", err)
	}
	logger.Debug("Proxied resource", "status", resp.StatusCode, "bytes", len(body))
	return resp.StatusCode
}

// reasonPhrase returns the upstream reason phrase, falling back to the
// standard text for the status code.
func reasonPhrase(resp *http.Response) string {
	reason := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if reason == "" {
		reason = http.StatusText(resp.StatusCode)
	}
	return reason
}

func writeText(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, msg)
}
