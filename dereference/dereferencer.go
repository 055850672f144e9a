package dereference

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360studio/semderef/authority"
)

// Defaults applied by New.
const (
	DefaultTimeout     = 30 * time.Second
	DefaultMaxBodySize = 10 * 1024 * 1024 // 10MB
	DefaultUserAgent   = "semderef/1.0"
)

// Proxy gateway query parameters.
const (
	ParamResourceURL  = "resource-url"
	ParamAdapter      = "adapter"
	ParamAcceptHeader = "accept-header"
)

// Result is a successfully dereferenced URI.
type Result struct {
	Authority   string            `json:"authority"`
	URI         string            `json:"uri"`
	ResourceURL string            `json:"resource_url"`
	Fields      *authority.Fields `json:"fields"`
}

// Dereferencer resolves URIs through the adapters of a registry.
// It is safe for concurrent use once constructed.
type Dereferencer struct {
	registry    *authority.Registry
	proxyURL    *url.URL
	httpClient  *http.Client
	language    string
	userAgent   string
	maxBodySize int64
	logger      *slog.Logger

	metricsRegisterer prometheus.Registerer
	metrics           *derefMetrics
}

// Option configures a Dereferencer.
type Option func(*Dereferencer) error

// WithProxyURL sets the proxy gateway base URL. An empty string leaves the
// proxy unconfigured.
func WithProxyURL(raw string) Option {
	return func(d *Dereferencer) error {
		if raw == "" {
			d.proxyURL = nil
			return nil
		}
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("invalid proxy url: %w", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("invalid proxy url %q: scheme must be http or https", raw)
		}
		d.proxyURL = u
		return nil
	}
}

// WithHTTPClient sets the client used for fetches.
func WithHTTPClient(c *http.Client) Option {
	return func(d *Dereferencer) error {
		d.httpClient = c
		return nil
	}
}

// WithLanguage sets the language passed to adapters.
func WithLanguage(lang string) Option {
	return func(d *Dereferencer) error {
		d.language = authority.Language(lang)
		return nil
	}
}

// WithUserAgent sets the User-Agent header of outgoing requests.
func WithUserAgent(ua string) Option {
	return func(d *Dereferencer) error {
		d.userAgent = ua
		return nil
	}
}

// WithMaxBodySize limits how many bytes of a representation are read.
func WithMaxBodySize(n int64) Option {
	return func(d *Dereferencer) error {
		if n <= 0 {
			return fmt.Errorf("max body size must be positive, got %d", n)
		}
		d.maxBodySize = n
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dereferencer) error {
		if logger != nil {
			d.logger = logger
		}
		return nil
	}
}

// WithMetrics registers dereference metrics with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(d *Dereferencer) error {
		d.metricsRegisterer = reg
		return nil
	}
}

// New creates a Dereferencer over registry. A nil registry starts empty.
func New(registry *authority.Registry, opts ...Option) (*Dereferencer, error) {
	if registry == nil {
		registry = authority.NewRegistry()
	}
	d := &Dereferencer{
		registry:    registry,
		httpClient:  &http.Client{Timeout: DefaultTimeout},
		language:    authority.DefaultLanguage,
		userAgent:   DefaultUserAgent,
		maxBodySize: DefaultMaxBodySize,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}

	metrics, err := newDerefMetrics(d.metricsRegisterer)
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}
	d.metrics = metrics

	return d, nil
}

// Registry returns the registry the dereferencer dispatches on.
func (d *Dereferencer) Registry() *authority.Registry { return d.registry }

// Language returns the language passed to adapters.
func (d *Dereferencer) Language() string { return d.language }

// ProxyConfigured reports whether a proxy gateway base URL is set.
func (d *Dereferencer) ProxyConfigured() bool { return d.proxyURL != nil }

// AddAuthority registers an adapter. An adapter with an existing name
// replaces the previous one in its dispatch position.
func (d *Dereferencer) AddAuthority(a authority.Adapter) {
	d.registry.Register(a)
}

// IsDereferenceable reports whether Dereference could attempt a fetch for
// uri: an adapter matches, it can build a resource URL, and any proxy it
// needs is configured. It performs no I/O.
func (d *Dereferencer) IsDereferenceable(uri string) bool {
	a, ok := d.registry.FindMatch(uri)
	if !ok {
		return false
	}
	if _, err := a.ResourceURL(uri, d.language); err != nil {
		return false
	}
	return !a.Options().UsesProxy || d.proxyURL != nil
}

// Dereference resolves uri to the fields its authority publishes about it.
// Failures are returned as *Error.
func (d *Dereferencer) Dereference(ctx context.Context, uri string) (*Result, error) {
	res, derr := d.dereference(ctx, uri)
	if derr != nil {
		d.metrics.recordOutcome(derr.Authority, derr.Kind)
		d.logFailure(derr)
		return nil, derr
	}

	d.metrics.recordOutcome(res.Authority, KindUnknown)
	d.logger.Debug("Dereferenced URI",
		"authority", res.Authority,
		"uri", uri,
		"fields", res.Fields.Len())
	return res, nil
}

func (d *Dereferencer) dereference(ctx context.Context, uri string) (*Result, *Error) {
	a, ok := d.registry.FindMatch(uri)
	if !ok {
		return nil, &Error{Kind: KindNoMatch, URI: uri}
	}

	resourceURL, err := a.ResourceURL(uri, d.language)
	if err != nil {
		return nil, &Error{Kind: KindResourceUnavailable, URI: uri, Authority: a.Name(), Err: err}
	}

	opts := a.Options()
	requestURL := resourceURL
	if opts.UsesProxy {
		if d.proxyURL == nil {
			return nil, &Error{
				Kind:        KindNoProxyConfigured,
				URI:         uri,
				Authority:   a.Name(),
				ResourceURL: resourceURL,
			}
		}
		requestURL = d.proxiedURL(resourceURL, opts)
	}

	body, status, err := d.fetch(ctx, a.Name(), requestURL, opts)
	if err != nil {
		return nil, &Error{
			Kind:        KindResourceUnavailable,
			URI:         uri,
			Authority:   a.Name(),
			ResourceURL: resourceURL,
			StatusCode:  status,
			Err:         err,
		}
	}

	fields, err := extract(a, uri, body, d.language)
	if err != nil {
		return nil, &Error{
			Kind:        KindParseFailure,
			URI:         uri,
			Authority:   a.Name(),
			ResourceURL: resourceURL,
			Fields:      fields,
			Err:         err,
		}
	}
	if fields == nil {
		fields = authority.NewFields()
	}

	return &Result{
		Authority:   a.Name(),
		URI:         uri,
		ResourceURL: resourceURL,
		Fields:      fields,
	}, nil
}

// proxiedURL rewrites resourceURL into a proxy gateway request carrying the
// adapter's client and Accept hints.
func (d *Dereferencer) proxiedURL(resourceURL string, opts authority.Options) string {
	u := *d.proxyURL
	q := u.Query()
	q.Set(ParamResourceURL, resourceURL)
	if opts.ProxyClient != "" {
		q.Set(ParamAdapter, string(opts.ProxyClient))
	}
	if opts.AcceptHeader != "" {
		q.Set(ParamAcceptHeader, opts.AcceptHeader)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// extract runs the adapter's extraction. A panic is reported as an error
// wrapping authority.ErrMalformedBody.
func extract(a authority.Adapter, uri string, body []byte, lang string) (fields *authority.Fields, err error) {
	defer func() {
		if r := recover(); r != nil {
			fields = nil
			err = fmt.Errorf("%w: extraction panicked: %v", authority.ErrMalformedBody, r)
		}
	}()
	return a.ExtractFields(uri, body, lang)
}

func (d *Dereferencer) logFailure(err *Error) {
	attrs := []any{
		"authority", err.Authority,
		"uri", err.URI,
		"kind", err.Kind.label(),
	}
	if err.StatusCode != 0 {
		attrs = append(attrs, "status", err.StatusCode)
	}
	if err.Err != nil {
		attrs = append(attrs, "error", err.Err)
	}

	switch err.Kind {
	case KindNoMatch, KindNoProxyConfigured:
		d.logger.Debug("URI not dereferenceable", attrs...)
	default:
		d.logger.Warn("Dereference failed", attrs...)
	}
}
