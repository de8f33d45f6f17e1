package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insurance-agent/internal/common/metrics"
)

func counterValue(t *testing.T, provider, status string) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, metrics.ModelRequests.WithLabelValues(provider, status).Write(&m))
	return m.GetCounter().GetValue()
}

func TestClient_CountsRequests(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient("test-provider", time.Second)
	okBefore := counterValue(t, "test-provider", "200")
	missingBefore := counterValue(t, "test-provider", "404")

	resp, err := c.Get(srv.URL + "/ok")
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = c.Get(srv.URL + "/missing")
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, okBefore+1, counterValue(t, "test-provider", "200"))
	assert.Equal(t, missingBefore+1, counterValue(t, "test-provider", "404"))
}

func TestClient_TransportError(t *testing.T) {
	c := NewClient("unreachable-provider", 200*time.Millisecond)
	before := counterValue(t, "unreachable-provider", "error")

	_, err := c.Get("http://127.0.0.1:1/")
	require.Error(t, err)
	assert.Equal(t, before+1, counterValue(t, "unreachable-provider", "error"))
}
