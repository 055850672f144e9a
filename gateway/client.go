package gateway

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"
)

// newClient builds an upstream client that enforces cfg.Policy on every
// connection and redirect. The curl flavour speaks HTTP/1.1 only and does
// not negotiate compression.
func newClient(cfg Config, curl bool) *http.Client {
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		DialContext:           cfg.Policy.DialContext(dialer),
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: cfg.Timeout,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		ForceAttemptHTTP2:     !curl,
	}
	if curl {
		transport.TLSNextProto = map[string]func(string, *tls.Conn) http.RoundTripper{}
		transport.DisableCompression = true
	}

	return &http.Client{
		Transport:     transport,
		Timeout:       cfg.Timeout,
		CheckRedirect: cfg.Policy.CheckRedirect(cfg.MaxRedirects),
	}
}
