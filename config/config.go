// Package config provides configuration loading and management for semderef.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete semderef configuration
type Config struct {
	Dereferencer DereferencerConfig `yaml:"dereferencer"`
	Gateway      GatewayConfig      `yaml:"gateway"`
	Metrics      MetricsConfig      `yaml:"metrics"`
}

// DereferencerConfig configures URI dereferencing
type DereferencerConfig struct {
	// ProxyURL is the proxy gateway endpoint used by adapters that need one
	ProxyURL string `yaml:"proxy_url"`
	// Language is the preferred language for extracted fields (default: en)
	Language string `yaml:"language"`
	// Timeout bounds each authority request
	Timeout time.Duration `yaml:"timeout"`
	// UserAgent is sent with every authority request
	UserAgent string `yaml:"user_agent"`
	// MaxBodySize limits authority response bodies in bytes
	MaxBodySize int64 `yaml:"max_body_size"`
	// Disabled lists authority names that are not registered
	Disabled []string `yaml:"disabled,omitempty"`
}

// GatewayConfig configures the proxy gateway server
type GatewayConfig struct {
	// Listen is the address the server binds to
	Listen string `yaml:"listen"`
	// Path is the route the proxy is served on
	Path string `yaml:"path"`
	// Timeout bounds each upstream request
	Timeout time.Duration `yaml:"timeout"`
	// MaxBodySize limits relayed upstream bodies in bytes
	MaxBodySize int64 `yaml:"max_body_size"`
	// UserAgent is sent by the default client
	UserAgent string `yaml:"user_agent"`
	// AllowHTTP permits plain http resource URLs
	AllowHTTP bool `yaml:"allow_http"`
	// AllowPrivateNetworks permits loopback and private addresses
	AllowPrivateNetworks bool `yaml:"allow_private_networks"`
	// AllowedHosts restricts resource URLs to these hosts and their subdomains (empty = any public host)
	AllowedHosts []string `yaml:"allowed_hosts,omitempty"`
}

// MetricsConfig configures the Prometheus endpoint
type MetricsConfig struct {
	// Enabled exposes metrics on the gateway server
	Enabled bool `yaml:"enabled"`
	// Path is the metrics route
	Path string `yaml:"path"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Dereferencer: DereferencerConfig{
			ProxyURL:    "", // Proxied authorities report no_proxy_configured
			Language:    "en",
			Timeout:     30 * time.Second,
			UserAgent:   "semderef/1.0",
			MaxBodySize: 10 * 1024 * 1024,
		},
		Gateway: GatewayConfig{
			Listen:      "127.0.0.1:8080",
			Path:        "/uri-dereferencer/proxy",
			Timeout:     30 * time.Second,
			MaxBodySize: 10 * 1024 * 1024,
			UserAgent:   "semderef-gateway/1.0",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Path:    "/metrics",
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Dereferencer.ProxyURL != "" {
		u, err := url.Parse(c.Dereferencer.ProxyURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("dereferencer.proxy_url must be an absolute http(s) URL")
		}
	}
	if c.Dereferencer.Language == "" {
		return fmt.Errorf("dereferencer.language is required")
	}
	if c.Dereferencer.Timeout <= 0 {
		return fmt.Errorf("dereferencer.timeout must be positive")
	}
	if c.Dereferencer.MaxBodySize <= 0 {
		return fmt.Errorf("dereferencer.max_body_size must be positive")
	}
	if c.Gateway.Listen == "" {
		return fmt.Errorf("gateway.listen is required")
	}
	if !strings.HasPrefix(c.Gateway.Path, "/") {
		return fmt.Errorf("gateway.path must start with /")
	}
	if c.Gateway.Timeout <= 0 {
		return fmt.Errorf("gateway.timeout must be positive")
	}
	if c.Gateway.MaxBodySize <= 0 {
		return fmt.Errorf("gateway.max_body_size must be positive")
	}
	if c.Metrics.Enabled {
		if !strings.HasPrefix(c.Metrics.Path, "/") {
			return fmt.Errorf("metrics.path must start with /")
		}
		if c.Metrics.Path == c.Gateway.Path {
			return fmt.Errorf("metrics.path must differ from gateway.path")
		}
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file.
// ${VAR} and ${VAR:-default} references are expanded before parsing.
func LoadFromFile(path string) (*Config, error) {
	return readFile(path, DefaultConfig())
}

// loadLayer reads a file without defaults so that only the keys it sets
// survive a Merge.
func loadLayer(path string) (*Config, error) {
	return readFile(path, &Config{})
}

func readFile(path string, config *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal([]byte(ExpandEnv(string(data))), config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// ExpandEnv replaces ${VAR} and ${VAR:-default} with environment values.
// The default is used when VAR is unset or empty.
func ExpandEnv(s string) string {
	return os.Expand(s, func(ref string) string {
		name, def, hasDefault := strings.Cut(ref, ":-")
		if v := os.Getenv(name); v != "" || !hasDefault {
			return v
		}
		return def
	})
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Dereferencer
	d := other.Dereferencer
	if d.ProxyURL != "" {
		c.Dereferencer.ProxyURL = d.ProxyURL
	}
	if d.Language != "" {
		c.Dereferencer.Language = d.Language
	}
	if d.Timeout != 0 {
		c.Dereferencer.Timeout = d.Timeout
	}
	if d.UserAgent != "" {
		c.Dereferencer.UserAgent = d.UserAgent
	}
	if d.MaxBodySize != 0 {
		c.Dereferencer.MaxBodySize = d.MaxBodySize
	}
	if len(d.Disabled) > 0 {
		c.Dereferencer.Disabled = d.Disabled
	}

	// Gateway
	g := other.Gateway
	if g.Listen != "" {
		c.Gateway.Listen = g.Listen
	}
	if g.Path != "" {
		c.Gateway.Path = g.Path
	}
	if g.Timeout != 0 {
		c.Gateway.Timeout = g.Timeout
	}
	if g.MaxBodySize != 0 {
		c.Gateway.MaxBodySize = g.MaxBodySize
	}
	if g.UserAgent != "" {
		c.Gateway.UserAgent = g.UserAgent
	}
	if g.AllowHTTP {
		c.Gateway.AllowHTTP = true
	}
	if g.AllowPrivateNetworks {
		c.Gateway.AllowPrivateNetworks = true
	}
	if len(g.AllowedHosts) > 0 {
		c.Gateway.AllowedHosts = g.AllowedHosts
	}

	// Metrics
	if other.Metrics.Enabled {
		c.Metrics.Enabled = true
	}
	if other.Metrics.Path != "" {
		c.Metrics.Path = other.Metrics.Path
	}
}
