// internal/common/http/client.go
package http

import (
	"net/http"
	"strconv"
	"time"

	"insurance-agent/internal/common/metrics"
)

// NewClient returns an http.Client for model provider traffic. Every
// round trip is counted and timed under the provider label.
func NewClient(provider string, timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: NewTransport(provider, nil),
	}
}

// NewTransport wraps base (http.DefaultTransport when nil) with request metrics.
func NewTransport(provider string, base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &instrumentedTransport{provider: provider, base: base}
}

type instrumentedTransport struct {
	provider string
	base     http.RoundTripper
}

func (t *instrumentedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.base.RoundTrip(req)
	metrics.ModelRequestDuration.WithLabelValues(t.provider).Observe(time.Since(start).Seconds())

	status := "error"
	if err == nil {
		status = strconv.Itoa(resp.StatusCode)
	}
	metrics.ModelRequests.WithLabelValues(t.provider, status).Inc()
	return resp, err
}
