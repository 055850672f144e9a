package weburl

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicy_Validate(t *testing.T) {
	strict := Policy{}
	lenient := Policy{AllowHTTP: true, AllowPrivate: true}
	authorities := Policy{AllowedHosts: []string{"viaf.org", "id.worldcat.org"}}

	tests := []struct {
		name    string
		policy  Policy
		url     string
		wantErr bool
	}{
		{"valid https URL", strict, "https://viaf.org/viaf/113230702/viaf.json", false},
		{"http URL rejected", strict, "http://example.com", true},
		{"ftp URL rejected", lenient, "ftp://example.com/file", true},
		{"localhost rejected", strict, "https://localhost:8080", true},
		{"127.0.0.1 rejected", strict, "https://127.0.0.1/path", true},
		{"::1 rejected", strict, "https://[::1]/path", true},
		{".local domain rejected", strict, "https://myserver.local/api", true},
		{".internal domain rejected", strict, "https://app.internal/api", true},
		{"private IP 192.168.x.x rejected", strict, "https://192.168.1.1/path", true},
		{"private IP 10.x.x.x rejected", strict, "https://10.0.0.1/path", true},
		{"private IP 172.16.x.x rejected", strict, "https://172.16.0.1/path", true},
		{"missing host", strict, "https:///path", true},
		{"invalid URL", strict, "not-a-url", true},
		{"lenient allows http loopback", lenient, "http://127.0.0.1:8080/x", false},
		{"allow list exact host", authorities, "https://viaf.org/viaf/1", false},
		{"allow list subdomain", authorities, "https://www.viaf.org/viaf/1", false},
		{"allow list rejects other host", authorities, "https://example.org/", true},
		{"allow list rejects suffix trick", authorities, "https://evilviaf.org/", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.policy.Validate(tt.url)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrBlocked))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestIsPrivateIP(t *testing.T) {
	tests := []struct {
		ip       string
		expected bool
	}{
		// IPv4 private ranges
		{"192.168.1.1", true},
		{"10.0.0.1", true},
		{"172.16.0.1", true},
		{"172.31.255.255", true},
		{"127.0.0.1", true},
		{"169.254.1.1", true}, // IPv4 link-local
		{"0.0.0.0", true},

		// IPv4 public
		{"8.8.8.8", false},
		{"1.1.1.1", false},

		// CGNAT
		{"100.64.0.1", true},
		{"100.127.255.255", true},

		// IPv6
		{"::1", true},                // IPv6 loopback
		{"::ffff:192.168.1.1", true}, // IPv6-mapped private IPv4
		{"::ffff:127.0.0.1", true},   // IPv6-mapped loopback
		{"::ffff:8.8.8.8", false},    // IPv6-mapped public IPv4
		{"fe80::1", true},            // IPv6 link-local
		{"fc00::1", true},            // IPv6 unique local
		{"2606:4700::1111", false},
	}

	for _, tt := range tests {
		t.Run(tt.ip, func(t *testing.T) {
			ip := net.ParseIP(tt.ip)
			require.NotNil(t, ip, "failed to parse IP: %s", tt.ip)
			assert.Equal(t, tt.expected, IsPrivateIP(ip))
		})
	}
}

func TestPolicy_DialContext_BlocksPrivateAddress(t *testing.T) {
	dial := Policy{}.DialContext(&net.Dialer{Timeout: time.Second})

	_, err := dial(context.Background(), "tcp", "127.0.0.1:1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBlocked))
}

func TestPolicy_CheckRedirect(t *testing.T) {
	check := Policy{}.CheckRedirect(2)

	req := func(raw string) *http.Request {
		u, err := url.Parse(raw)
		require.NoError(t, err)
		return &http.Request{URL: u}
	}

	assert.NoError(t, check(req("https://viaf.org/viaf/1"), nil))

	err := check(req("https://10.0.0.1/"), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBlocked))

	err = check(req("https://viaf.org/viaf/1"), []*http.Request{{}, {}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too many redirects")
}
