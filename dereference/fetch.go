package dereference

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/c360studio/semderef/authority"
)

// fetch GETs target and returns its body. The status code is returned
// alongside an error for non-2xx responses. Direct requests carry the
// adapter's Accept header; proxied requests pass it as a query hint instead.
func (d *Dereferencer) fetch(ctx context.Context, authorityName, target string, opts authority.Options) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	if d.userAgent != "" {
		req.Header.Set("User-Agent", d.userAgent)
	}
	if opts.AcceptHeader != "" && !opts.UsesProxy {
		req.Header.Set("Accept", opts.AcceptHeader)
	}

	start := time.Now()
	resp, err := d.httpClient.Do(req)
	d.metrics.recordFetch(authorityName, time.Since(start))
	if err != nil {
		return nil, 0, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little so the connection can be reused.
		_, _ = io.CopyN(io.Discard, resp.Body, 4096)
		return nil, resp.StatusCode, fmt.Errorf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, d.maxBodySize+1))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > d.maxBodySize {
		return nil, resp.StatusCode, fmt.Errorf("content too large (exceeds %d bytes)", d.maxBodySize)
	}
	return body, resp.StatusCode, nil
}
