package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"insurance-agent/internal/common/database"
	"insurance-agent/internal/common/logger"
	"insurance-agent/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAgent struct {
	calls   int
	query   string
	context map[string]interface{}
}

func (a *stubAgent) ProcessAgentQuery(_ context.Context, query string, callerContext map[string]interface{}) models.AgentResponse {
	a.calls++
	a.query = query
	a.context = callerContext
	return models.AgentResponse{
		AgentReply: "reply",
		WhatsApp:   "wa",
		Email:      "mail",
		VoiceText:  "voice",
	}
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func newTestServer(t *testing.T, agent QueryProcessor, backends map[string]database.Pinger) *Server {
	s := NewServer(Config{Version: "1.2.0"}, agent, nil, backends, logger.NewTestLogger(t))
	s.now = func() time.Time { return time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC) }
	return s
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestQuery_Success(t *testing.T) {
	agent := &stubAgent{}
	h := newTestServer(t, agent, nil).Handler()

	rec := do(t, h, http.MethodPost, "/api/agent/query",
		`{"query": "Find Rajesh Kumar", "context": {"customerEmail": "r@k.in"}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	out := decode(t, rec)
	assert.Equal(t, "reply", out["agent_reply"])
	assert.Equal(t, "wa", out["whatsapp"])
	assert.Equal(t, "mail", out["email"])
	assert.Equal(t, "voice", out["voice_text"])
	assert.NotEmpty(t, out["requestId"])
	assert.Equal(t, out["requestId"], rec.Header().Get(requestIDHeader))

	assert.Equal(t, "Find Rajesh Kumar", agent.query)
	assert.Equal(t, "r@k.in", agent.context["customerEmail"])
}

type queryRecord struct{ intent, source string }

type recorderStub struct{ records []queryRecord }

func (r *recorderStub) RecordQuery(_ context.Context, intent, source string) {
	r.records = append(r.records, queryRecord{intent, source})
}

func TestQuery_RecordsIntent(t *testing.T) {
	rec := &recorderStub{}
	s := NewServer(Config{}, &stubAgent{}, nil, nil, logger.NewTestLogger(t), WithQueryRecorder(rec))
	h := s.Handler()

	require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/api/agent/query", `{"query": "How do I file a claim?"}`).Code)
	require.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/api/agent/query", `{"query": ""}`).Code)

	assert.Equal(t, []queryRecord{{intent: "claim_process", source: "http"}}, rec.records)
}

func TestQuery_EchoesInboundRequestID(t *testing.T) {
	h := newTestServer(t, &stubAgent{}, nil).Handler()

	req := httptest.NewRequest(http.MethodPost, "/api/agent/query", strings.NewReader(`{"query": "hi"}`))
	req.Header.Set(requestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "req-123", decode(t, rec)["requestId"])
}

func TestQuery_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty body", ""},
		{"missing query", `{"context": {}}`},
		{"blank query", `{"query": "  "}`},
		{"malformed", `{"query":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agent := &stubAgent{}
			rec := do(t, newTestServer(t, agent, nil).Handler(), http.MethodPost, "/api/agent/query", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, 0, agent.calls)
			assert.NotEmpty(t, decode(t, rec)["error"])
		})
	}
}

func TestQuery_MethodNotAllowed(t *testing.T) {
	rec := do(t, newTestServer(t, &stubAgent{}, nil).Handler(), http.MethodGet, "/api/agent/query", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestComplianceCheck(t *testing.T) {
	h := newTestServer(t, &stubAgent{}, nil).Handler()

	rec := do(t, h, http.MethodPost, "/api/compliance/check", `{"text": "This ULIP is risk-free"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	out := decode(t, rec)
	assert.Equal(t, "2026-05-04T09:00:00Z", out["timestamp"])

	check := out["complianceCheck"].(map[string]interface{})
	assert.Equal(t, false, check["isCompliant"])
	assert.Equal(t, "medium", check["riskLevel"])
	assert.Len(t, check["issues"], 2)

	rec = do(t, h, http.MethodPost, "/api/compliance/check", `{"text": ""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestServer(t, &stubAgent{}, nil).Handler(), http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1.2.0", decode(t, rec)["version"])
}

func TestReady(t *testing.T) {
	ok := pingerFunc(func(context.Context) error { return nil })
	down := pingerFunc(func(context.Context) error { return errors.New("connection refused") })

	rec := do(t, newTestServer(t, &stubAgent{}, map[string]database.Pinger{"postgres": ok, "redis": ok}).Handler(),
		http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, newTestServer(t, &stubAgent{}, map[string]database.Pinger{"postgres": ok, "redis": down}).Handler(),
		http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, []interface{}{"redis"}, decode(t, rec)["failed"])
}

func TestMetrics(t *testing.T) {
	rec := do(t, newTestServer(t, &stubAgent{}, nil).Handler(), http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
